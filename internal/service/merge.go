package service

import (
	"strings"
	"time"

	"github.com/besttroy123/websubiekt-backend/internal/model"
	"github.com/besttroy123/websubiekt-backend/internal/prestashop"

	"github.com/shopspring/decimal"
)

// vatMultiplier is the gross-up factor applied to products in tax rules
// group 1 (23% VAT).
var vatMultiplier = decimal.RequireFromString("1.23")

// grossSalePrice computes the gross sale price for a stock row: the base
// price plus the variant delta, rounded to 2 decimals, then grossed up by VAT
// for tax group 1 and rounded again. The tax factor is applied to the rounded
// sum, never compounded on an unrounded value.
func grossSalePrice(basePrice, variantDelta decimal.Decimal, taxRulesGroupID int64) decimal.Decimal {
	gross := basePrice.Add(variantDelta).Round(2)
	if taxRulesGroupID == 1 {
		gross = gross.Mul(vatMultiplier).Round(2)
	}
	return gross
}

// MergeInventory joins the four fetched datasets into inventory report rows,
// one per resolvable stock keeping unit. Rows whose product or variant cannot
// be resolved are dropped, never stored partially; the second return value is
// the count of such rows. Base-product rows of products that have variants
// are excluded silently, since their stock is represented by the variant rows.
func MergeInventory(products []prestashop.Product, combinations []prestashop.Combination, optionValues []prestashop.OptionValue, stocks []prestashop.StockAvailable) ([]model.InventoryRow, int) {
	productsByID := make(map[int64]prestashop.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}
	combinationsByID := make(map[int64]prestashop.Combination, len(combinations))
	hasVariants := make(map[int64]struct{}, len(combinations))
	for _, c := range combinations {
		combinationsByID[c.ID] = c
		if c.ProductID != 0 {
			hasVariants[c.ProductID] = struct{}{}
		}
	}
	optionNames := make(map[int64]string, len(optionValues))
	for _, v := range optionValues {
		optionNames[v.ID] = v.Name
	}

	rows := make([]model.InventoryRow, 0, len(stocks))
	dropped := 0
	for _, stock := range stocks {
		product, ok := productsByID[stock.ProductID]
		if !ok {
			dropped++
			continue
		}

		if stock.ProductAttributeID > 0 {
			variant, ok := combinationsByID[stock.ProductAttributeID]
			if !ok {
				dropped++
				continue
			}

			labels := make([]string, 0, len(variant.OptionValueIDs))
			for _, id := range variant.OptionValueIDs {
				if name, ok := optionNames[id]; ok {
					labels = append(labels, name)
				}
			}

			variantID := stock.ProductAttributeID
			rows = append(rows, model.InventoryRow{
				IDStock:             stock.ID,
				IDWariantu:          &variantID,
				IDProduktu:          stock.ProductID,
				Reference:           variant.Reference,
				EAN13:               variant.EAN13,
				CenaWariant:         decimal.NewNullDecimal(variant.Price),
				Opcje:               strings.Join(labels, ", "),
				StanMagazynowy:      stock.Quantity,
				CenaProduktu:        product.Price,
				NazwaProduktu:       product.Name,
				CenaSprzedazyBrutto: grossSalePrice(product.Price, variant.Price, product.TaxRulesGroupID),
			})
			continue
		}

		// Stock of a product with variants only counts through its
		// variant rows.
		if _, ok := hasVariants[stock.ProductID]; ok {
			continue
		}

		rows = append(rows, model.InventoryRow{
			IDStock:             stock.ID,
			IDProduktu:          stock.ProductID,
			Reference:           product.Reference,
			EAN13:               product.EAN13,
			Opcje:               "",
			StanMagazynowy:      stock.Quantity,
			CenaProduktu:        product.Price,
			NazwaProduktu:       product.Name,
			CenaSprzedazyBrutto: grossSalePrice(product.Price, decimal.Zero, product.TaxRulesGroupID),
		})
	}
	return rows, dropped
}

// OrderLine is a denormalized order line item with its stock quantity joined
// from a concurrently fetched stock snapshot. Only a projection of it is
// persisted; the full shape is what the refresh endpoint returns.
type OrderLine struct {
	ID                 int64
	OrderID            int64
	DateAdd            time.Time
	Reference          string
	ProductID          int64
	ProductAttributeID int64
	ProductName        string
	Quantity           int
	UnitPriceTaxIncl   decimal.Decimal
	TotalPriceBrutto   decimal.Decimal
	StockQuantity      int
}

type stockKey struct {
	productID          int64
	productAttributeID int64
}

// MergeSalesLines flattens fetched orders into line items, computing the
// gross line total and joining the stock quantity by (product, variant).
// Lines with no matching stock row get quantity 0; order and stock pulls are
// only eventually consistent with each other.
func MergeSalesLines(orders []prestashop.Order, stocks []prestashop.StockAvailable) []OrderLine {
	stockByKey := make(map[stockKey]int, len(stocks))
	for _, s := range stocks {
		stockByKey[stockKey{s.ProductID, s.ProductAttributeID}] = s.Quantity
	}

	var lines []OrderLine
	for _, order := range orders {
		for _, row := range order.Rows {
			lines = append(lines, OrderLine{
				ID:                 row.ID,
				OrderID:            order.ID,
				DateAdd:            order.DateAdd,
				Reference:          order.Reference,
				ProductID:          row.ProductID,
				ProductAttributeID: row.ProductAttributeID,
				ProductName:        row.ProductName,
				Quantity:           row.Quantity,
				UnitPriceTaxIncl:   row.UnitPriceTaxIncl,
				TotalPriceBrutto:   row.UnitPriceTaxIncl.Mul(decimal.NewFromInt(int64(row.Quantity))).Round(2),
				StockQuantity:      stockByKey[stockKey{row.ProductID, row.ProductAttributeID}],
			})
		}
	}
	return lines
}
