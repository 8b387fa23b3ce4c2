// Package prestashop is a read-only client for the PrestaShop webservice API.
// Each fetcher requests a fixed field projection and normalizes the payload
// into the record types in types.go.
package prestashop

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the timestamp format the upstream uses for date_add fields.
const DateLayout = "2006-01-02 15:04:05"

// OrderStatesFilter limits order fetches to states that count as a sale
// (payment accepted through delivered, plus remote payment accepted).
const OrderStatesFilter = "[2|3|4|5|11]"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// get performs one upstream request and returns the raw body. Any network
// failure or non-2xx status surfaces as a *TransportError.
func (c *Client) get(ctx context.Context, dataset string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/" + dataset
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Dataset: dataset, Err: err}
	}
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Dataset: dataset, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Dataset: dataset, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Dataset: dataset, StatusCode: resp.StatusCode}
	}
	return body, nil
}

// FetchProducts returns all active products.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	params := url.Values{}
	params.Set("output_format", "JSON")
	params.Set("display", "[id,name,price,id_tax_rules_group,reference,ean13]")
	params.Set("language", "1")
	params.Set("filter[active]", "[1]")

	body, err := c.get(ctx, "products", params)
	if err != nil {
		return nil, err
	}

	var payload productsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Dataset: "products", Err: err}
	}

	products := make([]Product, 0, len(payload.Products))
	for _, p := range payload.Products {
		products = append(products, Product{
			ID:              int64(p.ID),
			Name:            p.Name,
			Price:           p.Price.decimal(),
			TaxRulesGroupID: int64(p.TaxRulesGroupID),
			Reference:       p.Reference,
			EAN13:           p.EAN13,
		})
	}
	return products, nil
}

// FetchCombinations returns all product variants. The upstream serves this
// dataset XML-encoded; option value ids are carried only as xlink hyperlinks
// and are recovered from the trailing digits of each href. A missing or
// malformed href yields an empty id list, never an error.
func (c *Client) FetchCombinations(ctx context.Context) ([]Combination, error) {
	params := url.Values{}
	params.Set("output_format", "XML")
	params.Set("display", "[id, id_product, price, reference, ean13, product_option_values[id]]")

	body, err := c.get(ctx, "combinations", params)
	if err != nil {
		return nil, err
	}

	var envelope combinationsEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Dataset: "combinations", Err: err}
	}

	combinations := make([]Combination, 0, len(envelope.Combinations.Items))
	for _, item := range envelope.Combinations.Items {
		id, err := strconv.ParseInt(strings.TrimSpace(item.ID), 10, 64)
		if err != nil {
			return nil, &ParseError{Dataset: "combinations", Err: fmt.Errorf("combination id %q: %w", item.ID, err)}
		}
		productID, _ := strconv.ParseInt(strings.TrimSpace(item.IDProduct.Value), 10, 64)
		price, _ := decimal.NewFromString(strings.TrimSpace(item.Price))

		var optionIDs []int64
		for _, pov := range item.Associations.OptionValues.Items {
			if m := trailingDigits.FindString(pov.Href); m != "" {
				if n, err := strconv.ParseInt(m, 10, 64); err == nil {
					optionIDs = append(optionIDs, n)
				}
			}
		}

		combinations = append(combinations, Combination{
			ID:             id,
			ProductID:      productID,
			Reference:      item.Reference,
			EAN13:          item.EAN13,
			Price:          price,
			OptionValueIDs: optionIDs,
		})
	}
	return combinations, nil
}

// FetchOptionValues returns the display names referenced by combination
// option ids.
func (c *Client) FetchOptionValues(ctx context.Context) ([]OptionValue, error) {
	params := url.Values{}
	params.Set("output_format", "JSON")
	params.Set("display", "[id,name]")
	params.Set("language", "1")

	body, err := c.get(ctx, "product_option_values", params)
	if err != nil {
		return nil, err
	}

	var payload optionValuesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Dataset: "product_option_values", Err: err}
	}

	values := make([]OptionValue, 0, len(payload.OptionValues))
	for _, v := range payload.OptionValues {
		values = append(values, OptionValue{ID: int64(v.ID), Name: v.Name})
	}
	return values, nil
}

// FetchStockAvailables returns one row per stock keeping unit.
func (c *Client) FetchStockAvailables(ctx context.Context) ([]StockAvailable, error) {
	params := url.Values{}
	params.Set("output_format", "JSON")
	params.Set("display", "[id,id_product,id_product_attribute,quantity]")
	params.Set("language", "1")

	body, err := c.get(ctx, "stock_availables", params)
	if err != nil {
		return nil, err
	}

	var payload stockAvailablesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Dataset: "stock_availables", Err: err}
	}

	stocks := make([]StockAvailable, 0, len(payload.StockAvailables))
	for _, s := range payload.StockAvailables {
		stocks = append(stocks, StockAvailable{
			ID:                 int64(s.ID),
			ProductID:          int64(s.ProductID),
			ProductAttributeID: int64(s.ProductAttributeID),
			Quantity:           int(s.Quantity),
		})
	}
	return stocks, nil
}

// FetchOrders returns orders in sale states, with their line items. startDate
// and endDate (YYYY-MM-DD), when both set, narrow the fetch by date_add.
func (c *Client) FetchOrders(ctx context.Context, startDate, endDate string) ([]Order, error) {
	params := url.Values{}
	params.Set("output_format", "JSON")
	params.Set("display", "[id, reference, order_rows[product_name], order_rows[product_quantity], order_rows[unit_price_tax_incl], order_rows[id], date_add, order_rows[product_attribute_id], order_rows[product_id]]")
	params.Set("filter[current_state]", OrderStatesFilter)
	if startDate != "" && endDate != "" {
		params.Set("filter[date_add]", "["+startDate+" TO "+endDate+"]")
	}

	body, err := c.get(ctx, "orders", params)
	if err != nil {
		return nil, err
	}

	var payload ordersPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Dataset: "orders", Err: err}
	}

	orders := make([]Order, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		dateAdd, err := time.Parse(DateLayout, o.DateAdd)
		if err != nil && o.DateAdd != "" {
			return nil, &ParseError{Dataset: "orders", Err: fmt.Errorf("order %d date_add %q: %w", int64(o.ID), o.DateAdd, err)}
		}

		rows := make([]OrderRow, 0, len(o.Associations.OrderRows))
		for _, r := range o.Associations.OrderRows {
			rows = append(rows, OrderRow{
				ID:                 int64(r.ID),
				ProductID:          int64(r.ProductID),
				ProductAttributeID: int64(r.ProductAttributeID),
				ProductName:        r.ProductName,
				Quantity:           int(r.Quantity),
				UnitPriceTaxIncl:   r.UnitPriceTaxIncl.decimal(),
			})
		}
		orders = append(orders, Order{
			ID:        int64(o.ID),
			Reference: o.Reference,
			DateAdd:   dateAdd,
			Rows:      rows,
		})
	}
	return orders, nil
}
