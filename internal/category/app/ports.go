package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/category/domain"
)

type CategoryRepo interface {
	// List returns categories ordered by sort order then name. Deleted rows are skipped.
	List(ctx context.Context, onlyActive bool) ([]domain.Category, error)
	Get(ctx context.Context, id string) (domain.Category, error)
	Create(ctx context.Context, c domain.Category) (domain.Category, error)
	Update(ctx context.Context, c domain.Category) (domain.Category, error)
	SetStatus(ctx context.Context, id string, status domain.Status) error
	CountActiveChildren(ctx context.Context, id string) (int64, error)
	CountActiveProducts(ctx context.Context, id string) (int64, error)
}
