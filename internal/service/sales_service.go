package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/besttroy123/websubiekt-backend/internal/model"
	"github.com/besttroy123/websubiekt-backend/internal/prestashop"
	"github.com/besttroy123/websubiekt-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// --- DTOs ---

// SalesQuery carries the optional filters of the sales report endpoints.
// StartDate/EndDate (YYYY-MM-DD) narrow the upstream order fetch;
// ProductName/Reference are case-insensitive substring filters applied
// in memory to the result set.
type SalesQuery struct {
	StartDate   string
	EndDate     string
	ProductName string
	Reference   string
}

type SalesLineResponse struct {
	ID                 int64   `json:"id,omitempty"`
	OrderID            int64   `json:"order_id,omitempty"`
	DateAdd            string  `json:"date_add"`
	Reference          string  `json:"reference"`
	ProductQuantity    int     `json:"product_quantity"`
	ProductName        string  `json:"product_name"`
	ProductID          int64   `json:"product_id,omitempty"`
	ProductAttributeID int64   `json:"product_attribute_id,omitempty"`
	UnitPriceTaxIncl   string  `json:"unit_price_tax_incl"`
	TotalPriceBrutto   string  `json:"total_price_brutto"`
	StockQuantity      int     `json:"stock_quantity"`
	Rabat              *string `json:"rabat,omitempty"`
}

type SalesReportResponse struct {
	ItemsOrders []SalesLineResponse `json:"items_orders"`
	TotalItems  int                 `json:"totalItems"`
}

// --- Interface ---

type SalesService interface {
	// Sync runs one full sales cycle (fetch orders and stock, merge,
	// replace-write) and returns the merged lines with q's in-memory
	// filters applied.
	Sync(ctx context.Context, q SalesQuery) (SalesReportResponse, error)
	// List returns the persisted rows with q's in-memory filters applied,
	// without triggering a sync.
	List(ctx context.Context, q SalesQuery) (SalesReportResponse, error)
}

type salesService struct {
	client *prestashop.Client
	store  repository.ReportStore
	log    *logrus.Logger
}

func NewSalesService(client *prestashop.Client, store repository.ReportStore, log *logrus.Logger) SalesService {
	return &salesService{client: client, store: store, log: log}
}

// --- Implementation ---

func (s *salesService) Sync(ctx context.Context, q SalesQuery) (SalesReportResponse, error) {
	orders, err := s.client.FetchOrders(ctx, q.StartDate, q.EndDate)
	if err != nil {
		return SalesReportResponse{}, fmt.Errorf("sales sync: %w", err)
	}
	stocks, err := s.client.FetchStockAvailables(ctx)
	if err != nil {
		return SalesReportResponse{}, fmt.Errorf("sales sync: %w", err)
	}

	lines := MergeSalesLines(orders, stocks)

	rows := make([]model.SalesRow, 0, len(lines))
	for _, l := range lines {
		dateAdd := l.DateAdd
		rows = append(rows, model.SalesRow{
			Reference:        l.Reference,
			UnitPriceTaxIncl: l.UnitPriceTaxIncl,
			ProductQuantity:  l.Quantity,
			TotalPriceBrutto: l.TotalPriceBrutto,
			DateAdd:          &dateAdd,
			ProductName:      l.ProductName,
			StockQuantity:    l.StockQuantity,
		})
	}
	if err := s.store.ReplaceSales(ctx, rows); err != nil {
		return SalesReportResponse{}, fmt.Errorf("sales sync: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"orders": len(orders),
		"lines":  len(lines),
		"stocks": len(stocks),
	}).Info("sales sync completed")

	items := make([]SalesLineResponse, 0, len(lines))
	for _, l := range lines {
		if !matchesFilters(l.ProductName, l.Reference, q) {
			continue
		}
		items = append(items, SalesLineResponse{
			ID:                 l.ID,
			OrderID:            l.OrderID,
			DateAdd:            l.DateAdd.Format(prestashop.DateLayout),
			Reference:          l.Reference,
			ProductQuantity:    l.Quantity,
			ProductName:        l.ProductName,
			ProductID:          l.ProductID,
			ProductAttributeID: l.ProductAttributeID,
			UnitPriceTaxIncl:   l.UnitPriceTaxIncl.StringFixed(2),
			TotalPriceBrutto:   l.TotalPriceBrutto.StringFixed(2),
			StockQuantity:      l.StockQuantity,
		})
	}
	return SalesReportResponse{ItemsOrders: items, TotalItems: len(items)}, nil
}

func (s *salesService) List(ctx context.Context, q SalesQuery) (SalesReportResponse, error) {
	rows, err := s.store.ReadSales(ctx)
	if err != nil {
		return SalesReportResponse{}, err
	}

	items := make([]SalesLineResponse, 0, len(rows))
	for _, r := range rows {
		if !matchesFilters(r.ProductName, r.Reference, q) {
			continue
		}
		item := SalesLineResponse{
			Reference:        r.Reference,
			ProductQuantity:  r.ProductQuantity,
			ProductName:      r.ProductName,
			UnitPriceTaxIncl: r.UnitPriceTaxIncl.StringFixed(2),
			TotalPriceBrutto: r.TotalPriceBrutto.StringFixed(2),
			StockQuantity:    r.StockQuantity,
		}
		if r.DateAdd != nil {
			item.DateAdd = r.DateAdd.Format("2006-01-02")
		}
		if r.Rabat.Valid {
			v := r.Rabat.Decimal.StringFixed(2)
			item.Rabat = &v
		}
		items = append(items, item)
	}
	return SalesReportResponse{ItemsOrders: items, TotalItems: len(items)}, nil
}

// matchesFilters applies the in-memory productName/reference substring
// filters, both case-insensitive. Empty filters match everything.
func matchesFilters(productName, reference string, q SalesQuery) bool {
	if q.ProductName != "" && !strings.Contains(strings.ToLower(productName), strings.ToLower(q.ProductName)) {
		return false
	}
	if q.Reference != "" && !strings.Contains(strings.ToLower(reference), strings.ToLower(q.Reference)) {
		return false
	}
	return true
}
