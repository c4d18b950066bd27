package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/techstore/internal/coupon/domain"
)

type Filter struct {
	Query  string
	Status domain.Status
	Limit  int
	Offset int
}

type CouponRepo interface {
	List(ctx context.Context, f Filter) ([]domain.Coupon, int64, error)
	Get(ctx context.Context, id string) (domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (domain.Coupon, error)
	Create(ctx context.Context, c domain.Coupon) (domain.Coupon, error)
	Update(ctx context.Context, c domain.Coupon) (domain.Coupon, error)
	SetStatus(ctx context.Context, id string, status domain.Status) error
	// ExpireStale marks active coupons whose window ended at or before now as inactive.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
