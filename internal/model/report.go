package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRow is one row of the stan_magazynowy reporting table: a stock
// keeping unit joined with its product, variant and purchase-price data.
// The table is fully replaced on every sync cycle.
type InventoryRow struct {
	ID                  int64               `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	IDStock             int64               `gorm:"column:id_stock" json:"id_stock"`
	IDWariantu          *int64              `gorm:"column:id_wariantu" json:"id_wariantu,omitempty"`
	IDProduktu          int64               `gorm:"column:id_produktu" json:"id_produktu"`
	Reference           string              `gorm:"column:reference" json:"reference"`
	EAN13               string              `gorm:"column:ean13" json:"ean13"`
	CenaWariant         decimal.NullDecimal `gorm:"column:cena_wariant" json:"cena_wariant"`
	Opcje               string              `gorm:"column:opcje" json:"opcje"`
	StanMagazynowy      int                 `gorm:"column:stan_magazynowy" json:"stan_magazynowy"`
	CenaProduktu        decimal.Decimal     `gorm:"column:cena_produktu" json:"cena_produktu"`
	NazwaProduktu       string              `gorm:"column:nazwa_produktu" json:"nazwa_produktu"`
	CenaSprzedazyBrutto decimal.Decimal     `gorm:"column:cena_sprzedazy_brutto" json:"cena_sprzedazy_brutto"`
	CenaZakupuNetto     decimal.NullDecimal `gorm:"column:cena_zakupu_netto" json:"cena_zakupu_netto"`
	CenaZakupuBrutto    decimal.NullDecimal `gorm:"column:cena_zakupu_brutto" json:"cena_zakupu_brutto"`
	// Present in the legacy schema; the purchase-price lookup does not
	// project an invoice date, so the column stays NULL.
	DataOstatniejFakturyZakupu *time.Time `gorm:"column:data_ostatniej_faktury_zakupu" json:"data_ostatniej_faktury_zakupu"`
	GrupaTowarowa              *string    `gorm:"column:grupa_towarowa" json:"grupa_towarowa"`
}

func (InventoryRow) TableName() string { return "stan_magazynowy" }

// SalesRow is one order line item as persisted in the sync-owned sales_report
// table. Rabat is never written by the sync path; it exists so the row set is
// schema-compatible with the manually maintained documents_sales table.
type SalesRow struct {
	Reference        string              `gorm:"column:reference" json:"reference"`
	UnitPriceTaxIncl decimal.Decimal     `gorm:"column:unit_price_tax_incl" json:"unit_price_tax_incl"`
	ProductQuantity  int                 `gorm:"column:product_quantity" json:"product_quantity"`
	TotalPriceBrutto decimal.Decimal     `gorm:"column:total_price_brutto" json:"total_price_brutto"`
	DateAdd          *time.Time          `gorm:"column:date_add" json:"date_add"`
	ProductName      string              `gorm:"column:product_name" json:"product_name"`
	StockQuantity    int                 `gorm:"column:stock_quantity" json:"stock_quantity"`
	Rabat            decimal.NullDecimal `gorm:"column:rabat" json:"rabat"`
}

func (SalesRow) TableName() string { return "sales_report" }

// PurchasePrice is a read-only projection of the externally loaded
// product_prices table, keyed by ean13 (tw_symbol on the Subiekt side).
type PurchasePrice struct {
	EAN13            string              `gorm:"column:ean13"`
	CenaZakupuNetto  decimal.NullDecimal `gorm:"column:cena_zakupu_netto"`
	CenaZakupuBrutto decimal.NullDecimal `gorm:"column:cena_zakupu_brutto"`
	GrupaTowarowa    *string             `gorm:"column:grupa_towarowa"`
}
