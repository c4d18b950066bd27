package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/techstore/internal/order/domain"
)

type OrderRepo interface {
	// Place reserves stock, consumes the coupon, stores the order and checks the cart out in
	// one transaction.
	Place(ctx context.Context, order domain.Order, cartID string) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Order, int64, error)
	// SetStatus moves the order from one status to another, restocking when it enters
	// CANCELLED and reserving stock again when it leaves it.
	SetStatus(ctx context.Context, id string, from, to domain.Status) (domain.Order, error)
	// StalePending lists ids of PENDING orders created before cutoff, oldest first.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}
