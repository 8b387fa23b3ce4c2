package repository

import (
	"context"
	"fmt"

	"github.com/besttroy123/websubiekt-backend/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// The reporting tables use a fixed legacy schema consumed by the Subiekt-side
// frontend, so DDL is kept as raw SQL rather than derived from the models.
const (
	createInventoryTableSQL = `
		CREATE TABLE IF NOT EXISTS stan_magazynowy (
			id SERIAL PRIMARY KEY,
			id_stock INT UNIQUE,
			id_wariantu INT,
			id_produktu INT,
			reference VARCHAR,
			ean13 VARCHAR,
			cena_wariant DECIMAL,
			opcje TEXT,
			stan_magazynowy INT,
			cena_produktu DECIMAL,
			nazwa_produktu TEXT,
			cena_sprzedazy_brutto DECIMAL,
			cena_zakupu_netto DECIMAL,
			cena_zakupu_brutto DECIMAL,
			data_ostatniej_faktury_zakupu DATE,
			grupa_towarowa TEXT
		)`

	createSalesTableSQL = `
		CREATE TABLE IF NOT EXISTS sales_report (
			reference TEXT,
			unit_price_tax_incl NUMERIC(12,4),
			product_quantity INTEGER,
			total_price_brutto NUMERIC(14,4),
			date_add DATE,
			product_name TEXT,
			stock_quantity INTEGER,
			rabat NUMERIC(7,4)
		)`

	createSalesUnionTableSQL = `
		CREATE TABLE IF NOT EXISTS raport_sprzedazy (
			reference TEXT,
			unit_price_tax_incl NUMERIC(12,4),
			product_quantity INTEGER,
			total_price_brutto NUMERIC(14,4),
			date_add DATE,
			product_name TEXT,
			stock_quantity INTEGER,
			rabat NUMERIC(7,4)
		)`

	selectPurchasePricesSQL = `
		SELECT tw_symbol AS ean13,
		       ob_cenanetto AS cena_zakupu_netto,
		       ob_cenabrutto AS cena_zakupu_brutto,
		       grt_nazwa AS grupa_towarowa
		FROM product_prices`

	// documents_sales is maintained by hand outside this service and is
	// never created or truncated here.
	populateSalesUnionSQL = `
		INSERT INTO raport_sprzedazy (
			reference, unit_price_tax_incl, product_quantity, total_price_brutto,
			date_add, product_name, stock_quantity, rabat
		)
		SELECT reference, unit_price_tax_incl, product_quantity, total_price_brutto,
		       date_add, product_name, stock_quantity, rabat
		FROM documents_sales
		UNION ALL
		SELECT reference, unit_price_tax_incl, product_quantity, total_price_brutto,
		       date_add, product_name, stock_quantity, rabat
		FROM sales_report`

	insertBatchSize = 500
)

// ReportStore owns the reporting tables. It is the only component allowed to
// write them; every replace happens inside one transaction so readers never
// observe a truncated-but-unfilled table.
type ReportStore interface {
	EnsureSchema(ctx context.Context) error
	ReplaceInventory(ctx context.Context, rows []model.InventoryRow) error
	ReadInventory(ctx context.Context) ([]model.InventoryRow, error)
	ReplaceSales(ctx context.Context, rows []model.SalesRow) error
	ReadSales(ctx context.Context) ([]model.SalesRow, error)
}

type reportStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewReportStore(db *gorm.DB, log *logrus.Logger) ReportStore {
	return &reportStore{db: db, log: log}
}

// EnsureSchema creates the sync-owned tables if absent. Also invoked inside
// each write transaction, so a dropped table heals on the next cycle.
func (s *reportStore) EnsureSchema(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	for _, ddl := range []string{createInventoryTableSQL, createSalesTableSQL, createSalesUnionTableSQL} {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("ensure reporting schema: %w", err)
		}
	}
	return nil
}

func (s *reportStore) ReplaceInventory(ctx context.Context, rows []model.InventoryRow) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(createInventoryTableSQL).Error; err != nil {
			return fmt.Errorf("ensure stan_magazynowy table: %w", err)
		}

		var prices []model.PurchasePrice
		if err := tx.Raw(selectPurchasePricesSQL).Scan(&prices).Error; err != nil {
			return fmt.Errorf("load purchase price lookup: %w", err)
		}
		pricesByEAN := make(map[string]model.PurchasePrice, len(prices))
		for _, p := range prices {
			pricesByEAN[p.EAN13] = p
		}

		matched := 0
		for i := range rows {
			if p, ok := pricesByEAN[rows[i].EAN13]; ok {
				rows[i].CenaZakupuNetto = p.CenaZakupuNetto
				rows[i].CenaZakupuBrutto = p.CenaZakupuBrutto
				rows[i].GrupaTowarowa = p.GrupaTowarowa
				matched++
			}
		}

		if err := tx.Exec("TRUNCATE TABLE stan_magazynowy").Error; err != nil {
			return fmt.Errorf("truncate stan_magazynowy: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert inventory rows: %w", err)
			}
		}

		s.log.WithFields(logrus.Fields{
			"rows":            len(rows),
			"purchase_prices": len(prices),
			"price_matches":   matched,
		}).Info("inventory table replaced")
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace inventory: %w", err)
	}
	return nil
}

func (s *reportStore) ReadInventory(ctx context.Context) ([]model.InventoryRow, error) {
	var rows []model.InventoryRow
	if err := s.db.WithContext(ctx).Order("id_stock").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return rows, nil
}

func (s *reportStore) ReplaceSales(ctx context.Context, rows []model.SalesRow) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(createSalesTableSQL).Error; err != nil {
			return fmt.Errorf("ensure sales_report table: %w", err)
		}
		if err := tx.Exec(createSalesUnionTableSQL).Error; err != nil {
			return fmt.Errorf("ensure raport_sprzedazy table: %w", err)
		}

		if err := tx.Exec("TRUNCATE TABLE sales_report").Error; err != nil {
			return fmt.Errorf("truncate sales_report: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert sales rows: %w", err)
			}
		}

		if err := tx.Exec("TRUNCATE TABLE raport_sprzedazy").Error; err != nil {
			return fmt.Errorf("truncate raport_sprzedazy: %w", err)
		}
		if err := tx.Exec(populateSalesUnionSQL).Error; err != nil {
			return fmt.Errorf("populate raport_sprzedazy union: %w", err)
		}

		var total int64
		if err := tx.Table("raport_sprzedazy").Count(&total).Error; err != nil {
			return fmt.Errorf("count raport_sprzedazy: %w", err)
		}

		s.log.WithFields(logrus.Fields{
			"synced_rows": len(rows),
			"union_rows":  total,
		}).Info("sales report tables replaced")
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace sales: %w", err)
	}
	return nil
}

func (s *reportStore) ReadSales(ctx context.Context) ([]model.SalesRow, error) {
	var rows []model.SalesRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read sales report: %w", err)
	}
	return rows, nil
}
