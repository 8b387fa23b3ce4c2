package repository

import (
	"context"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	"github.com/besttroy123/websubiekt-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupStoreTestDB connects to the database named by TEST_DATABASE_URL and
// resets every table the store touches. Skips when the variable is unset to
// protect live databases.
func setupStoreTestDB(t *testing.T) (ReportStore, *gorm.DB, context.Context) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	ctx := context.Background()
	for _, table := range []string{"stan_magazynowy", "sales_report", "raport_sprzedazy", "product_prices", "documents_sales"} {
		if err := db.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
			t.Fatalf("failed to drop %s: %v", table, err)
		}
	}

	// external tables maintained outside the sync path
	if err := db.Exec(`
		CREATE TABLE product_prices (
			tw_symbol VARCHAR,
			ob_cenanetto DECIMAL,
			ob_cenabrutto DECIMAL,
			grt_nazwa TEXT
		)`).Error; err != nil {
		t.Fatalf("failed to create product_prices: %v", err)
	}
	if err := db.Exec(`
		CREATE TABLE documents_sales (
			reference TEXT,
			unit_price_tax_incl NUMERIC(12,4),
			product_quantity INTEGER,
			total_price_brutto NUMERIC(14,4),
			date_add DATE,
			product_name TEXT,
			stock_quantity INTEGER,
			rabat NUMERIC(7,4)
		)`).Error; err != nil {
		t.Fatalf("failed to create documents_sales: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	store := NewReportStore(db, log)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return store, db, ctx
}

func inventoryRow(stockID int64, ean string, qty int) model.InventoryRow {
	return model.InventoryRow{
		IDStock:             stockID,
		IDProduktu:          1,
		Reference:           "W-1",
		EAN13:               ean,
		StanMagazynowy:      qty,
		CenaProduktu:        decimal.RequireFromString("10.00"),
		NazwaProduktu:       "Widget",
		CenaSprzedazyBrutto: decimal.RequireFromString("12.30"),
	}
}

func TestReplaceInventory_IsIdempotent(t *testing.T) {
	store, _, ctx := setupStoreTestDB(t)

	rows := []model.InventoryRow{inventoryRow(5, "111", 7), inventoryRow(6, "222", 3)}
	if err := store.ReplaceInventory(ctx, rows); err != nil {
		t.Fatalf("first ReplaceInventory failed: %v", err)
	}
	if err := store.ReplaceInventory(ctx, rows); err != nil {
		t.Fatalf("second ReplaceInventory failed: %v", err)
	}

	persisted, err := store.ReadInventory(ctx)
	if err != nil {
		t.Fatalf("ReadInventory failed: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 rows after repeated replace, got %d", len(persisted))
	}
	if persisted[0].IDStock != 5 || persisted[0].StanMagazynowy != 7 {
		t.Errorf("unexpected first row: %+v", persisted[0])
	}
}

func TestReplaceInventory_EnrichesFromPurchasePrices(t *testing.T) {
	store, db, ctx := setupStoreTestDB(t)

	if err := db.Exec(`INSERT INTO product_prices (tw_symbol, ob_cenanetto, ob_cenabrutto, grt_nazwa)
		VALUES ('111', 4.00, 4.92, 'Akcesoria')`).Error; err != nil {
		t.Fatalf("failed to seed product_prices: %v", err)
	}

	rows := []model.InventoryRow{inventoryRow(5, "111", 7), inventoryRow(6, "999", 1)}
	if err := store.ReplaceInventory(ctx, rows); err != nil {
		t.Fatalf("ReplaceInventory failed: %v", err)
	}

	persisted, err := store.ReadInventory(ctx)
	if err != nil {
		t.Fatalf("ReadInventory failed: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(persisted))
	}

	matched := persisted[0]
	if !matched.CenaZakupuNetto.Valid || matched.CenaZakupuNetto.Decimal.StringFixed(2) != "4.00" {
		t.Errorf("expected net purchase price 4.00, got %+v", matched.CenaZakupuNetto)
	}
	if matched.GrupaTowarowa == nil || *matched.GrupaTowarowa != "Akcesoria" {
		t.Errorf("expected product group Akcesoria, got %v", matched.GrupaTowarowa)
	}

	unmatched := persisted[1]
	if unmatched.CenaZakupuNetto.Valid || unmatched.CenaZakupuBrutto.Valid || unmatched.GrupaTowarowa != nil {
		t.Errorf("expected NULL purchase data for unmatched ean13, got %+v", unmatched)
	}
}

func TestReplaceSales_UnionWithManualDocuments(t *testing.T) {
	store, db, ctx := setupStoreTestDB(t)

	if err := db.Exec(`INSERT INTO documents_sales
		(reference, unit_price_tax_incl, product_quantity, total_price_brutto, date_add, product_name, stock_quantity, rabat)
		VALUES ('A', 10.00, 1, 10.00, '2024-01-01', 'Manual item', 0, 2.50)`).Error; err != nil {
		t.Fatalf("failed to seed documents_sales: %v", err)
	}

	dateAdd := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []model.SalesRow{{
		Reference:        "B",
		UnitPriceTaxIncl: decimal.RequireFromString("9.99"),
		ProductQuantity:  3,
		TotalPriceBrutto: decimal.RequireFromString("29.97"),
		DateAdd:          &dateAdd,
		ProductName:      "Synced item",
		StockQuantity:    12,
	}}
	if err := store.ReplaceSales(ctx, rows); err != nil {
		t.Fatalf("ReplaceSales failed: %v", err)
	}

	var total int64
	if err := db.Table("raport_sprzedazy").Count(&total).Error; err != nil {
		t.Fatalf("failed to count union table: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected union of 2 rows, got %d", total)
	}

	var syncedRabat sql.NullString
	if err := db.Raw("SELECT rabat::text FROM raport_sprzedazy WHERE reference = 'B'").Scan(&syncedRabat).Error; err != nil {
		t.Fatalf("failed to read synced rabat: %v", err)
	}
	if syncedRabat.Valid {
		t.Errorf("expected NULL rabat on synced row, got %v", syncedRabat.String)
	}

	var manualRabat sql.NullString
	if err := db.Raw("SELECT rabat::text FROM raport_sprzedazy WHERE reference = 'A'").Scan(&manualRabat).Error; err != nil {
		t.Fatalf("failed to read manual rabat: %v", err)
	}
	if !manualRabat.Valid {
		t.Error("expected manual row to keep its rabat value")
	}
}

func TestReplaceSales_ReplacesPreviousCycle(t *testing.T) {
	store, db, ctx := setupStoreTestDB(t)

	first := []model.SalesRow{{Reference: "OLD", UnitPriceTaxIncl: decimal.RequireFromString("1.00"), ProductQuantity: 1, TotalPriceBrutto: decimal.RequireFromString("1.00"), ProductName: "Old"}}
	if err := store.ReplaceSales(ctx, first); err != nil {
		t.Fatalf("first ReplaceSales failed: %v", err)
	}

	second := []model.SalesRow{{Reference: "NEW", UnitPriceTaxIncl: decimal.RequireFromString("2.00"), ProductQuantity: 2, TotalPriceBrutto: decimal.RequireFromString("4.00"), ProductName: "New"}}
	if err := store.ReplaceSales(ctx, second); err != nil {
		t.Fatalf("second ReplaceSales failed: %v", err)
	}

	persisted, err := store.ReadSales(ctx)
	if err != nil {
		t.Fatalf("ReadSales failed: %v", err)
	}
	if len(persisted) != 1 || persisted[0].Reference != "NEW" {
		t.Fatalf("expected only the new cycle's row, got %+v", persisted)
	}

	var unionCount int64
	if err := db.Table("raport_sprzedazy").Count(&unionCount).Error; err != nil {
		t.Fatalf("failed to count union table: %v", err)
	}
	if unionCount != 1 {
		t.Errorf("expected union table rebuilt with 1 row, got %d", unionCount)
	}
}
