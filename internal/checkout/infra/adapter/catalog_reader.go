package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/techstore/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/techstore/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/techstore/internal/checkout/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

// GetProduct also returns inactive products so checkout can name them in its error.
func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (checkoutapp.Product, error) {
	p, err := r.svc.AdminGet(ctx, productID)
	if err != nil {
		return checkoutapp.Product{}, err
	}

	price := p.UnitPrice()
	return checkoutapp.Product{
		ID:       p.ID,
		Name:     p.Name,
		Currency: price.Currency,
		Amount:   price.Amount,
		Stock:    int64(p.Stock),
		Active:   p.Status == catalogdomain.StatusActive,
	}, nil
}
