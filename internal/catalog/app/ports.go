package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (domain.Product, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error)
	// Update rewrites the row and replaces its images in one transaction.
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	SetStatus(ctx context.Context, id string, status domain.Status) error
	// AdjustStock adds delta to stock unless the result would be negative.
	AdjustStock(ctx context.Context, id string, delta int) (domain.Product, error)
}

type CategoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type ComponentReader interface {
	Exists(ctx context.Context, kind, id string) (bool, error)
	Describe(ctx context.Context, kind, id string) (domain.ComponentSpec, error)
}

// SettingsReader supplies the store currency for products created without one.
type SettingsReader interface {
	String(ctx context.Context, key string) (string, error)
}
