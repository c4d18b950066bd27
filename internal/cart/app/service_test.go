package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/cart/app"
	"github.com/dwikikusuma/techstore/internal/cart/domain"
	"github.com/dwikikusuma/techstore/internal/cart/infra/postgres"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

type products map[string]app.Product

func (p products) Product(_ context.Context, id string) (app.Product, error) {
	out, ok := p[id]
	if !ok {
		return app.Product{}, apperr.ErrNotFound
	}
	return out, nil
}

func setup(t *testing.T) (*app.Service, products) {
	t.Helper()
	catalog := products{}
	repo := postgres.NewCartRepo(testdb.Open(t, postgres.AutoMigrate))
	return app.NewService(repo, catalog, 4, zap.NewNop()), catalog
}

func TestAddItemChecksStock(t *testing.T) {
	ctx := context.Background()
	svc, catalog := setup(t)
	user := uuid.NewString()
	laptop := uuid.NewString()
	catalog[laptop] = app.Product{ID: laptop, Name: "Legion 5", Currency: "IDR", UnitPrice: 20_000_000, Stock: 3, Active: true}

	v, err := svc.AddItem(ctx, user, laptop, 2)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, int64(40_000_000), v.Subtotal)
	assert.True(t, v.Items[0].Available)

	_, err = svc.AddItem(ctx, user, laptop, 2)
	assert.ErrorIs(t, err, app.ErrInsufficientStock)

	v, err = svc.AddItem(ctx, user, laptop, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Items[0].Quantity)

	_, err = svc.AddItem(ctx, user, laptop, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.AddItem(ctx, user, uuid.NewString(), 1)
	assert.ErrorIs(t, err, app.ErrProductUnavailable)
}

func TestItemPathAcceptsUppercaseID(t *testing.T) {
	ctx := context.Background()
	svc, catalog := setup(t)
	user := uuid.NewString()
	mouse := uuid.NewString()
	catalog[mouse] = app.Product{ID: mouse, Name: "Mouse", Currency: "IDR", UnitPrice: 150_000, Stock: 10, Active: true}
	upper := strings.ToUpper(mouse)

	_, err := svc.AddItem(ctx, user, mouse, 1)
	require.NoError(t, err)

	v, err := svc.AddItem(ctx, user, upper, 1)
	require.NoError(t, err)
	require.Len(t, v.Items, 1, "same product, one line")
	assert.Equal(t, 2, v.Items[0].Quantity)

	v, err = svc.SetItemQuantity(ctx, user, upper, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Items[0].Quantity)

	v, err = svc.RemoveItem(ctx, user, " "+upper+" ")
	require.NoError(t, err)
	assert.Empty(t, v.Items)

	_, err = svc.RemoveItem(ctx, user, "not-a-uuid")
	assert.ErrorIs(t, err, app.ErrItemNotFound)
}

func TestInactiveProductRejectedAndShownUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, catalog := setup(t)
	user := uuid.NewString()
	mouse := uuid.NewString()
	catalog[mouse] = app.Product{ID: mouse, Name: "Mouse", Currency: "IDR", UnitPrice: 150_000, Stock: 10, Active: true}

	_, err := svc.AddItem(ctx, user, mouse, 1)
	require.NoError(t, err)

	p := catalog[mouse]
	p.Active = false
	catalog[mouse] = p

	_, err = svc.AddItem(ctx, user, mouse, 1)
	assert.ErrorIs(t, err, app.ErrProductUnavailable)

	v, err := svc.View(ctx, user)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.False(t, v.Items[0].Available)
	assert.Zero(t, v.Subtotal)
	assert.Equal(t, 1, v.ItemCount)
}

func TestSetQuantityRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc, catalog := setup(t)
	user := uuid.NewString()
	a, b := uuid.NewString(), uuid.NewString()
	catalog[a] = app.Product{ID: a, Name: "A", Currency: "IDR", UnitPrice: 100, Stock: 5, Active: true}
	catalog[b] = app.Product{ID: b, Name: "B", Currency: "IDR", UnitPrice: 300, Stock: 5, Active: true}

	v, err := svc.CreateCart(ctx, user, []domain.CartItem{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 1}, {ProductID: a, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(600), v.Subtotal)

	_, err = svc.CreateCart(ctx, user, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	v, err = svc.SetItemQuantity(ctx, user, b, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500), v.Subtotal)

	_, err = svc.SetItemQuantity(ctx, user, b, 6)
	assert.ErrorIs(t, err, app.ErrInsufficientStock)
	_, err = svc.SetItemQuantity(ctx, user, uuid.NewString(), 1)
	assert.ErrorIs(t, err, app.ErrItemNotFound)

	v, err = svc.SetItemQuantity(ctx, user, b, 0)
	require.NoError(t, err)
	assert.Len(t, v.Items, 1)

	_, err = svc.RemoveItem(ctx, user, b)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Clear(ctx, user))
	v, err = svc.View(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Zero(t, v.Subtotal)
}

func TestCreateCartValidation(t *testing.T) {
	ctx := context.Background()
	svc, catalog := setup(t)
	p := uuid.NewString()
	catalog[p] = app.Product{ID: p, Name: "P", Currency: "IDR", UnitPrice: 100, Stock: 2, Active: true}

	_, err := svc.CreateCart(ctx, uuid.NewString(), []domain.CartItem{{ProductID: p, Quantity: 0}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.CreateCart(ctx, uuid.NewString(), []domain.CartItem{{ProductID: p, Quantity: 2}, {ProductID: p, Quantity: 1}})
	assert.ErrorIs(t, err, app.ErrInsufficientStock)
}
