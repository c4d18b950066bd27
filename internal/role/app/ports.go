package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/role/domain"
)

type RoleRepo interface {
	List(ctx context.Context) ([]domain.Role, error)
	Get(ctx context.Context, id string) (domain.Role, error)
	GetByName(ctx context.Context, name string) (domain.Role, error)
	Create(ctx context.Context, r domain.Role) (domain.Role, error)
	Update(ctx context.Context, r domain.Role) (domain.Role, error)
	Delete(ctx context.Context, id string) error
	CountUsers(ctx context.Context, roleName string) (int64, error)
}
