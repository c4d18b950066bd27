package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/techstore/internal/cart/app"
	"github.com/dwikikusuma/techstore/internal/cart/domain"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

func TestCart_ConcurrentGetOrCreate_SingleActiveCart(t *testing.T) {
	repo := NewCartRepo(testdb.Open(t, AutoMigrate))
	userID := uuid.NewString()

	const N = 20
	ids := make(map[string]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			cart, err := repo.GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[cart.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, ids, 1)
}

func TestCart_ConcurrentAddItemIncrement(t *testing.T) {
	repo := NewCartRepo(testdb.Open(t, AutoMigrate))
	userID := uuid.NewString()
	productID := uuid.NewString()

	cart, err := repo.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)

	const N = 50
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			return repo.AddItem(ctx, cart.ID, domain.CartItem{ProductID: productID, Quantity: 1})
		})
	}
	require.NoError(t, g.Wait())

	updated, err := repo.GetActive(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, N, updated.Quantity(productID))
}

func TestCartRepoItems(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, AutoMigrate)
	repo := NewCartRepo(db)
	userID := uuid.NewString()
	a, b := uuid.NewString(), uuid.NewString()

	cart, err := repo.Create(ctx, domain.Cart{UserID: userID, Items: []domain.CartItem{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, cart.Status)
	require.Len(t, cart.Items, 2)

	_, err = repo.Create(ctx, domain.Cart{UserID: userID})
	assert.ErrorIs(t, err, app.ErrCartExists)

	require.NoError(t, repo.SetItemQuantity(ctx, cart.ID, domain.CartItem{ProductID: a, Quantity: 5}))
	assert.ErrorIs(t, repo.SetItemQuantity(ctx, cart.ID, domain.CartItem{ProductID: uuid.NewString(), Quantity: 1}), app.ErrItemNotFound)
	require.NoError(t, repo.RemoveItem(ctx, cart.ID, b))
	assert.ErrorIs(t, repo.RemoveItem(ctx, cart.ID, b), app.ErrItemNotFound)

	got, err := repo.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: a, Quantity: 5}}, got.Items)

	require.NoError(t, repo.Clear(ctx, cart.ID))
	got, err = repo.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	// A checked-out cart no longer blocks a new active one.
	require.NoError(t, db.Model(&cartRow{}).Where("id = ?", uuid.MustParse(cart.ID)).Update("status", domain.StatusCheckedOut).Error)
	_, err = repo.GetActive(ctx, userID)
	assert.ErrorIs(t, err, app.ErrNotFound)
	next, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, next.ID)
}
