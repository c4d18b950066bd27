package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/component/domain"
)

// ComponentRepo stores one component kind.
type ComponentRepo interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Component, error)
	Get(ctx context.Context, id string) (domain.Component, error)
	Create(ctx context.Context, c domain.Component) (domain.Component, error)
	Update(ctx context.Context, c domain.Component) (domain.Component, error)
	SetStatus(ctx context.Context, id string, status domain.Status) error
}
