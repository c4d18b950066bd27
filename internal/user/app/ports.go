package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/user/domain"
)

type UserRepo interface {
	List(ctx context.Context, f domain.Filter) ([]domain.User, int64, error)
	Get(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	// Update writes name, email, phone and status.
	Update(ctx context.Context, u domain.User) (domain.User, error)
	SetRole(ctx context.Context, id, role string) error
	SetPassword(ctx context.Context, id, hash string) error
	SetStatus(ctx context.Context, id string, status domain.Status) error
}

// AddressRepo scopes every call to the owning user. Create, Delete and SetDefault keep exactly
// one default per user that has addresses.
type AddressRepo interface {
	List(ctx context.Context, userID string) ([]domain.Address, error)
	Get(ctx context.Context, userID, id string) (domain.Address, error)
	Create(ctx context.Context, a domain.Address) (domain.Address, error)
	Update(ctx context.Context, a domain.Address) (domain.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

type RoleChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}
