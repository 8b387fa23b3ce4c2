package prestashop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalized records returned by the client. All upstream payloads, JSON or
// XML, are projected into these shapes before the merge step sees them.

type Product struct {
	ID              int64
	Name            string
	Price           decimal.Decimal
	TaxRulesGroupID int64
	Reference       string
	EAN13           string
}

// Combination is a purchasable variant of a product. Price is the delta added
// to the base product price, not an absolute price.
type Combination struct {
	ID             int64
	ProductID      int64
	Reference      string
	EAN13          string
	Price          decimal.Decimal
	OptionValueIDs []int64
}

type OptionValue struct {
	ID   int64
	Name string
}

// StockAvailable is one stock keeping row. ProductAttributeID 0 means the row
// belongs to the base product rather than a variant.
type StockAvailable struct {
	ID                 int64
	ProductID          int64
	ProductAttributeID int64
	Quantity           int
}

type Order struct {
	ID        int64
	Reference string
	DateAdd   time.Time
	Rows      []OrderRow
}

type OrderRow struct {
	ID                 int64
	ProductID          int64
	ProductAttributeID int64
	ProductName        string
	Quantity           int
	UnitPriceTaxIncl   decimal.Decimal
}

// --- wire decoding helpers ---

// PrestaShop serializes numeric fields inconsistently: sometimes as JSON
// numbers, sometimes as quoted strings, and empty strings stand in for
// missing values. flexInt and flexDecimal absorb all of those.

type flexInt int64

func (v *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*v = flexInt(n)
	return nil
}

type flexDecimal decimal.Decimal

func (v *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*v = flexDecimal(decimal.Zero)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*v = flexDecimal(d)
	return nil
}

func (v flexDecimal) decimal() decimal.Decimal { return decimal.Decimal(v) }

// maybeList accepts both a JSON array and a bare object, a recurring shape
// ambiguity in the upstream API when a collection holds exactly one element.
type maybeList[T any] []T

func (l *maybeList[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*l = []T{single}
	return nil
}

// --- JSON payload shapes ---

type productsPayload struct {
	Products maybeList[productJSON] `json:"products"`
}

type productJSON struct {
	ID              flexInt     `json:"id"`
	Name            string      `json:"name"`
	Price           flexDecimal `json:"price"`
	TaxRulesGroupID flexInt     `json:"id_tax_rules_group"`
	Reference       string      `json:"reference"`
	EAN13           string      `json:"ean13"`
}

type optionValuesPayload struct {
	OptionValues maybeList[optionValueJSON] `json:"product_option_values"`
}

type optionValueJSON struct {
	ID   flexInt `json:"id"`
	Name string  `json:"name"`
}

type stockAvailablesPayload struct {
	StockAvailables maybeList[stockAvailableJSON] `json:"stock_availables"`
}

type stockAvailableJSON struct {
	ID                 flexInt `json:"id"`
	ProductID          flexInt `json:"id_product"`
	ProductAttributeID flexInt `json:"id_product_attribute"`
	Quantity           flexInt `json:"quantity"`
}

type ordersPayload struct {
	Orders maybeList[orderJSON] `json:"orders"`
}

type orderJSON struct {
	ID           flexInt `json:"id"`
	Reference    string  `json:"reference"`
	DateAdd      string  `json:"date_add"`
	Associations struct {
		OrderRows maybeList[orderRowJSON] `json:"order_rows"`
	} `json:"associations"`
}

type orderRowJSON struct {
	ID                 flexInt     `json:"id"`
	ProductID          flexInt     `json:"product_id"`
	ProductAttributeID flexInt     `json:"product_attribute_id"`
	ProductName        string      `json:"product_name"`
	Quantity           flexInt     `json:"product_quantity"`
	UnitPriceTaxIncl   flexDecimal `json:"unit_price_tax_incl"`
}

// --- XML payload shapes (combinations are only served as XML) ---

type combinationsEnvelope struct {
	Combinations struct {
		Items []combinationXML `xml:"combination"`
	} `xml:"combinations"`
}

type combinationXML struct {
	ID        string `xml:"id"`
	IDProduct struct {
		Value string `xml:",chardata"`
	} `xml:"id_product"`
	Reference    string `xml:"reference"`
	Price        string `xml:"price"`
	EAN13        string `xml:"ean13"`
	Associations struct {
		OptionValues struct {
			Items []struct {
				Href string `xml:"href,attr"`
			} `xml:"product_option_value"`
		} `xml:"product_option_values"`
	} `xml:"associations"`
}
