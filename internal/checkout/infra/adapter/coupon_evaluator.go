package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/techstore/internal/checkout/app"
	couponapp "github.com/dwikikusuma/techstore/internal/coupon/app"
)

type CouponServiceEvaluator struct {
	svc *couponapp.Service
}

func NewCouponServiceEvaluator(svc *couponapp.Service) *CouponServiceEvaluator {
	return &CouponServiceEvaluator{svc: svc}
}

func (e *CouponServiceEvaluator) Evaluate(ctx context.Context, code string, subtotal int64) (checkoutapp.Coupon, int64, error) {
	c, discount, err := e.svc.Evaluate(ctx, code, subtotal)
	if err != nil {
		return checkoutapp.Coupon{}, 0, err
	}
	return checkoutapp.Coupon{ID: c.ID, Code: c.Code}, discount, nil
}
