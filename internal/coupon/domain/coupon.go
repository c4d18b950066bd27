package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type Type string

const (
	TypePercent Type = "percent"
	TypeFixed   Type = "fixed"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

var (
	ErrNotApplicable = fmt.Errorf("%w: coupon cannot be applied", apperr.ErrInvalidInput)
	ErrInactive      = fmt.Errorf("%w: coupon is not active", ErrNotApplicable)
	ErrNotStarted    = fmt.Errorf("%w: coupon is not valid yet", ErrNotApplicable)
	ErrExpired       = fmt.Errorf("%w: coupon has expired", ErrNotApplicable)
	ErrMinPurchase   = fmt.Errorf("%w: minimum purchase not reached", ErrNotApplicable)
	ErrExhausted     = fmt.Errorf("%w: coupon usage limit reached", ErrNotApplicable)
)

var hundred = decimal.NewFromInt(100)

// Coupon amounts are minor currency units. Value is a percentage for percent coupons and an
// amount for fixed ones.
type Coupon struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Type        Type            `json:"type"`
	Value       decimal.Decimal `json:"value"`
	MaxDiscount int64           `json:"max_discount"`
	MinPurchase int64           `json:"min_purchase"`
	StartsAt    time.Time       `json:"starts_at"`
	EndsAt      *time.Time      `json:"ends_at,omitempty"`
	UsageLimit  int             `json:"usage_limit"`
	UsedCount   int             `json:"used_count"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Exhausted reports whether a limited coupon has been used up. UsageLimit 0 means unlimited.
func (c Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit
}

// Evaluate checks c against a cart subtotal at now and returns the discount.
func Evaluate(c Coupon, subtotal int64, now time.Time) (int64, error) {
	switch {
	case c.Status != StatusActive:
		return 0, ErrInactive
	case now.Before(c.StartsAt):
		return 0, ErrNotStarted
	case c.EndsAt != nil && !now.Before(*c.EndsAt):
		return 0, ErrExpired
	case subtotal < c.MinPurchase:
		return 0, ErrMinPurchase
	case c.Exhausted():
		return 0, ErrExhausted
	}
	return Discount(c, subtotal), nil
}

// Discount computes the reduction without checking applicability. The result is never
// negative and never exceeds subtotal.
func Discount(c Coupon, subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var d int64
	switch c.Type {
	case TypePercent:
		d = decimal.NewFromInt(subtotal).Mul(c.Value).Div(hundred).Floor().IntPart()
		if c.MaxDiscount > 0 && d > c.MaxDiscount {
			d = c.MaxDiscount
		}
	case TypeFixed:
		d = c.Value.Floor().IntPart()
	}
	if d < 0 {
		return 0
	}
	if d > subtotal {
		return subtotal
	}
	return d
}

// ValidateValue enforces 0 < value <= 100 for percent coupons and a positive whole amount for
// fixed ones.
func ValidateValue(t Type, v decimal.Decimal) error {
	switch t {
	case TypePercent:
		if !v.IsPositive() || v.GreaterThan(hundred) {
			return fmt.Errorf("%w: percent value must be in (0, 100]", apperr.ErrInvalidInput)
		}
	case TypeFixed:
		if !v.IsPositive() || !v.Equal(v.Floor()) {
			return fmt.Errorf("%w: fixed value must be a positive whole amount", apperr.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown coupon type %q", apperr.ErrInvalidInput, t)
	}
	return nil
}
