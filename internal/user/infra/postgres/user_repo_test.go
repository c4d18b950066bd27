package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/techstore/internal/user/app"
	"github.com/dwikikusuma/techstore/internal/user/domain"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(testdb.Open(t, AutoMigrate))

	mk := func(name, email, role string) domain.User {
		u, err := repo.Create(ctx, domain.User{Name: name, Email: email, PasswordHash: "h", Role: role, Status: domain.StatusActive})
		require.NoError(t, err)
		return u
	}
	ani := mk("Ani", "ani@example.com", "customer")
	mk("Budi", "budi@example.com", "customer")
	mk("Citra", "citra@shop.example.com", "admin")

	_, err := repo.Create(ctx, domain.User{Name: "Dup", Email: "ani@example.com", PasswordHash: "h", Role: "customer", Status: domain.StatusActive})
	assert.ErrorIs(t, err, app.ErrEmailTaken)

	list, total, err := repo.List(ctx, domain.Filter{Query: "SHOP", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Citra", list[0].Name)

	_, total, err = repo.List(ctx, domain.Filter{Role: "customer", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	require.NoError(t, repo.SetRole(ctx, ani.ID, "admin"))
	require.NoError(t, repo.SetPassword(ctx, ani.ID, "h2"))
	got, err := repo.Get(ctx, ani.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Role)
	assert.Equal(t, "h2", got.PasswordHash)

	require.NoError(t, repo.SetStatus(ctx, ani.ID, domain.StatusDeleted))
	_, total, err = repo.List(ctx, domain.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	assert.ErrorIs(t, repo.SetRole(ctx, "missing", "x"), app.ErrNotFound)
}
