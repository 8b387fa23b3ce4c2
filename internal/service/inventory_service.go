package service

import (
	"context"
	"fmt"

	"github.com/besttroy123/websubiekt-backend/internal/model"
	"github.com/besttroy123/websubiekt-backend/internal/prestashop"
	"github.com/besttroy123/websubiekt-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// --- DTOs ---

// InventoryRowResponse mirrors the stan_magazynowy row shape consumed by the
// reporting frontend. Prices are fixed-point strings.
type InventoryRowResponse struct {
	IDStock             int64   `json:"id_stock"`
	IDWariantu          *int64  `json:"id_wariantu,omitempty"`
	IDProduktu          int64   `json:"id_produktu"`
	Reference           string  `json:"reference"`
	EAN13               string  `json:"ean13"`
	CenaWariant         *string `json:"cena_wariant"`
	Opcje               string  `json:"opcje"`
	StanMagazynowy      int     `json:"stan_magazynowy"`
	CenaProduktu        string  `json:"cena_produktu"`
	NazwaProduktu       string  `json:"nazwa_produktu"`
	CenaSprzedazyBrutto string  `json:"cena_sprzedazy_brutto"`
	CenaZakupuNetto     *string `json:"cena_zakupu_netto"`
	CenaZakupuBrutto    *string `json:"cena_zakupu_brutto"`
	GrupaTowarowa       *string `json:"grupa_towarowa"`
}

// --- Interface ---

type InventoryService interface {
	// Sync runs one full inventory cycle: fetch, merge, replace-write.
	Sync(ctx context.Context) error
	// List returns the rows persisted by the last completed cycle without
	// triggering a new one.
	List(ctx context.Context) ([]InventoryRowResponse, error)
}

type inventoryService struct {
	client *prestashop.Client
	store  repository.ReportStore
	log    *logrus.Logger
}

func NewInventoryService(client *prestashop.Client, store repository.ReportStore, log *logrus.Logger) InventoryService {
	return &inventoryService{client: client, store: store, log: log}
}

// --- Implementation ---

func (s *inventoryService) Sync(ctx context.Context) error {
	combinations, err := s.client.FetchCombinations(ctx)
	if err != nil {
		return fmt.Errorf("inventory sync: %w", err)
	}
	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("inventory sync: %w", err)
	}
	optionValues, err := s.client.FetchOptionValues(ctx)
	if err != nil {
		return fmt.Errorf("inventory sync: %w", err)
	}
	stocks, err := s.client.FetchStockAvailables(ctx)
	if err != nil {
		return fmt.Errorf("inventory sync: %w", err)
	}

	rows, dropped := MergeInventory(products, combinations, optionValues, stocks)
	if err := s.store.ReplaceInventory(ctx, rows); err != nil {
		return fmt.Errorf("inventory sync: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"products":     len(products),
		"combinations": len(combinations),
		"stocks":       len(stocks),
		"rows":         len(rows),
		"dropped":      dropped,
	}).Info("inventory sync completed")
	return nil
}

func (s *inventoryService) List(ctx context.Context) ([]InventoryRowResponse, error) {
	rows, err := s.store.ReadInventory(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]InventoryRowResponse, 0, len(rows))
	for _, r := range rows {
		res = append(res, toInventoryRowResponse(r))
	}
	return res, nil
}

func toInventoryRowResponse(r model.InventoryRow) InventoryRowResponse {
	resp := InventoryRowResponse{
		IDStock:             r.IDStock,
		IDWariantu:          r.IDWariantu,
		IDProduktu:          r.IDProduktu,
		Reference:           r.Reference,
		EAN13:               r.EAN13,
		Opcje:               r.Opcje,
		StanMagazynowy:      r.StanMagazynowy,
		CenaProduktu:        r.CenaProduktu.StringFixed(2),
		NazwaProduktu:       r.NazwaProduktu,
		CenaSprzedazyBrutto: r.CenaSprzedazyBrutto.StringFixed(2),
		GrupaTowarowa:       r.GrupaTowarowa,
	}
	if r.CenaWariant.Valid {
		v := r.CenaWariant.Decimal.StringFixed(2)
		resp.CenaWariant = &v
	}
	if r.CenaZakupuNetto.Valid {
		v := r.CenaZakupuNetto.Decimal.StringFixed(2)
		resp.CenaZakupuNetto = &v
	}
	if r.CenaZakupuBrutto.Valid {
		v := r.CenaZakupuBrutto.Decimal.StringFixed(2)
		resp.CenaZakupuBrutto = &v
	}
	return resp
}
