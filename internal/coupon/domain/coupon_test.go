package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)
	base := Coupon{
		Type:     TypePercent,
		Value:    decimal.NewFromInt(10),
		StartsAt: earlier,
		Status:   StatusActive,
	}

	cases := []struct {
		name   string
		mutate func(*Coupon)
		sub    int64
		want   int64
		err    error
	}{
		{"ten percent", nil, 123_456, 12_345, nil},
		{"fractional percent floors", func(c *Coupon) { c.Value = decimal.RequireFromString("12.5") }, 999, 124, nil},
		{"percent capped", func(c *Coupon) { c.MaxDiscount = 5_000 }, 100_000, 5_000, nil},
		{"fixed", func(c *Coupon) { c.Type, c.Value = TypeFixed, decimal.NewFromInt(20_000) }, 150_000, 20_000, nil},
		{"fixed never exceeds subtotal", func(c *Coupon) { c.Type, c.Value = TypeFixed, decimal.NewFromInt(20_000) }, 15_000, 15_000, nil},
		{"inactive", func(c *Coupon) { c.Status = StatusInactive }, 100, 0, ErrInactive},
		{"not started", func(c *Coupon) { c.StartsAt = later }, 100, 0, ErrNotStarted},
		{"ended", func(c *Coupon) { c.EndsAt = &now }, 100, 0, ErrExpired},
		{"open end", func(c *Coupon) { c.EndsAt = &later }, 100, 10, nil},
		{"below minimum", func(c *Coupon) { c.MinPurchase = 101 }, 100, 0, ErrMinPurchase},
		{"exactly minimum", func(c *Coupon) { c.MinPurchase = 100 }, 100, 10, nil},
		{"exhausted", func(c *Coupon) { c.UsageLimit, c.UsedCount = 3, 3 }, 100, 0, ErrExhausted},
		{"unlimited", func(c *Coupon) { c.UsedCount = 1_000 }, 100, 10, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			if tc.mutate != nil {
				tc.mutate(&c)
			}
			got, err := Evaluate(c, tc.sub, now)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue(TypePercent, decimal.NewFromInt(100)))
	assert.NoError(t, ValidateValue(TypePercent, decimal.RequireFromString("0.5")))
	assert.Error(t, ValidateValue(TypePercent, decimal.Zero))
	assert.Error(t, ValidateValue(TypePercent, decimal.RequireFromString("100.01")))
	assert.NoError(t, ValidateValue(TypeFixed, decimal.NewFromInt(5000)))
	assert.Error(t, ValidateValue(TypeFixed, decimal.RequireFromString("10.5")))
	assert.Error(t, ValidateValue(TypeFixed, decimal.NewFromInt(-1)))
	assert.Error(t, ValidateValue("bogo", decimal.NewFromInt(1)))
}
