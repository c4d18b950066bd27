package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/techstore/internal/cart/app"
	catalogapp "github.com/dwikikusuma/techstore/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/techstore/internal/catalog/domain"
)

type CatalogProductReader struct {
	svc *catalogapp.Service
}

func NewCatalogProductReader(svc *catalogapp.Service) *CatalogProductReader {
	return &CatalogProductReader{svc: svc}
}

func (r *CatalogProductReader) Product(ctx context.Context, id string) (cartapp.Product, error) {
	p, err := r.svc.AdminGet(ctx, id)
	if err != nil {
		return cartapp.Product{}, err
	}
	price := p.UnitPrice()
	return cartapp.Product{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Currency:  price.Currency,
		UnitPrice: price.Amount,
		Stock:     p.Stock,
		Active:    p.Status == catalogdomain.StatusActive,
	}, nil
}
