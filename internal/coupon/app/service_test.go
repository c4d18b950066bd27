package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/coupon/app"
	"github.com/dwikikusuma/techstore/internal/coupon/domain"
	"github.com/dwikikusuma/techstore/internal/coupon/infra/postgres"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

func newService(t *testing.T) *app.Service {
	t.Helper()
	return app.NewService(postgres.NewCouponRepo(testdb.Open(t, postgres.AutoMigrate)), zap.NewNop())
}

func TestCreateCouponValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)
	before := start.Add(-time.Minute)

	cases := map[string]app.Input{
		"short code":         {Code: "ab", Type: domain.TypeFixed, Value: decimal.NewFromInt(1)},
		"code with spaces":   {Code: "big sale", Type: domain.TypeFixed, Value: decimal.NewFromInt(1)},
		"unknown type":       {Code: "SALE", Type: "bogo", Value: decimal.NewFromInt(1)},
		"percent over 100":   {Code: "SALE", Type: domain.TypePercent, Value: decimal.NewFromInt(101)},
		"fixed with cap":     {Code: "SALE", Type: domain.TypeFixed, Value: decimal.NewFromInt(1), MaxDiscount: 5},
		"negative minimum":   {Code: "SALE", Type: domain.TypeFixed, Value: decimal.NewFromInt(1), MinPurchase: -1},
		"ends before starts": {Code: "SALE", Type: domain.TypeFixed, Value: decimal.NewFromInt(1), StartsAt: &start, EndsAt: &before},
		"deleted status":     {Code: "SALE", Type: domain.TypeFixed, Value: decimal.NewFromInt(1), Status: domain.StatusDeleted},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestEvaluateByCode(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, app.Input{
		Code: " hemat10 ", Type: domain.TypePercent, Value: decimal.NewFromInt(10),
		MaxDiscount: 20_000, MinPurchase: 100_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "HEMAT10", c.Code)
	assert.Equal(t, domain.StatusActive, c.Status)

	got, discount, err := svc.Evaluate(ctx, "Hemat10", 150_000)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, int64(15_000), discount)

	_, discount, err = svc.Evaluate(ctx, "HEMAT10", 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), discount)

	_, _, err = svc.Evaluate(ctx, "HEMAT10", 99_999)
	assert.ErrorIs(t, err, domain.ErrMinPurchase)

	_, _, err = svc.Evaluate(ctx, "NOPE", 150_000)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = svc.Evaluate(ctx, "  ", 150_000)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, _, err = svc.Evaluate(ctx, "HEMAT10", 150_000)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), apperr.ErrNotFound)
}

func TestUpdateKeepsStartAndUsage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c, err := svc.Create(ctx, app.Input{Code: "NEWYEAR", Type: domain.TypeFixed, Value: decimal.NewFromInt(5_000), StartsAt: &start})
	require.NoError(t, err)

	out, err := svc.Update(ctx, c.ID, app.Input{Code: "NEWYEAR", Type: domain.TypeFixed, Value: decimal.NewFromInt(7_500), UsageLimit: 10})
	require.NoError(t, err)
	assert.True(t, start.Equal(out.StartsAt))
	assert.True(t, decimal.NewFromInt(7_500).Equal(out.Value))
	assert.Equal(t, 10, out.UsageLimit)
	assert.Zero(t, out.UsedCount)
}

func TestExpireStale(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	start := time.Now().Add(-48 * time.Hour)
	end := time.Now().Add(-24 * time.Hour)

	c, err := svc.Create(ctx, app.Input{Code: "OLD", Type: domain.TypeFixed, Value: decimal.NewFromInt(1), StartsAt: &start, EndsAt: &end})
	require.NoError(t, err)

	n, err := svc.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)
}
