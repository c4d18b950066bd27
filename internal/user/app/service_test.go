package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/user/app"
	"github.com/dwikikusuma/techstore/internal/user/domain"
	"github.com/dwikikusuma/techstore/internal/user/infra/postgres"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/cache"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

type roles map[string]bool

func (r roles) Exists(_ context.Context, name string) (bool, error) { return r[name], nil }

func newService(t *testing.T) *app.Service {
	t.Helper()
	db := testdb.Open(t, postgres.AutoMigrate)
	return app.NewService(postgres.NewUserRepo(db), postgres.NewAddressRepo(db),
		roles{"customer": true, "admin": true}, cache.NewMemory(), zap.NewNop())
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	u, err := svc.Create(ctx, app.CreateInput{Name: " Ani ", Email: " Ani@Example.COM ", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "ani@example.com", u.Email)
	assert.Equal(t, app.DefaultRole, u.Role)
	assert.Equal(t, domain.StatusActive, u.Status)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash)

	_, err = svc.Create(ctx, app.CreateInput{Name: "Ani 2", Email: "ani@example.com", Password: "s3cretpass"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	bad := []app.CreateInput{
		{Name: "x", Email: "not-an-email", Password: "s3cretpass"},
		{Name: "x", Email: "x@example.com", Password: "short"},
		{Name: "x", Email: "x@example.com", Password: "s3cretpass", Role: "ghost"},
		{Name: "", Email: "x@example.com", Password: "s3cretpass"},
		{Name: "x", Email: "x@example.com", Password: "s3cretpass", Phone: "call me"},
	}
	for i, in := range bad {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, "case %d", i)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	u, err := svc.Create(ctx, app.CreateInput{Name: "Ani", Email: "ani@example.com", Password: "first-pass"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong-pass", "second-pass"), app.ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "first-pass", "short"), apperr.ErrInvalidInput)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "first-pass", "second-pass"))
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "second-pass", "third-pass"))
}

func TestProfileAndRoles(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	u, err := svc.Create(ctx, app.CreateInput{Name: "Ani", Email: "ani@example.com", Password: "first-pass"})
	require.NoError(t, err)

	p, err := svc.UpdateProfile(ctx, u.ID, "Ani Wijaya", "+62 812-3456-789")
	require.NoError(t, err)
	assert.Equal(t, "Ani Wijaya", p.Name)
	assert.Equal(t, "ani@example.com", p.Email)

	p, err = svc.SetRole(ctx, u.ID, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Role)
	_, err = svc.SetRole(ctx, u.ID, "ghost")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Profile(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddresses(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	u, err := svc.Create(ctx, app.CreateInput{Name: "Ani", Email: "ani@example.com", Password: "first-pass"})
	require.NoError(t, err)

	_, err = svc.CreateAddress(ctx, u.ID, app.AddressInput{Recipient: "Ani"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	a, err := svc.CreateAddress(ctx, u.ID, app.AddressInput{
		Recipient: "Ani", Phone: "081234567890", Line1: "Jl. Merdeka 1", City: "Bandung", PostalCode: "40111",
	})
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Equal(t, "Home", a.Label)
	assert.Equal(t, "Jl. Merdeka 1, Bandung, 40111", a.OneLine())

	b, err := svc.CreateAddress(ctx, u.ID, app.AddressInput{
		Label: "Office", Recipient: "Ani", Phone: "081234567890", Line1: "Jl. Asia Afrika 8", City: "Bandung",
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetDefaultAddress(ctx, u.ID, b.ID))

	updated, err := svc.UpdateAddress(ctx, u.ID, b.ID, app.AddressInput{
		Label: "Office", Recipient: "Ani W", Phone: "081234567890", Line1: "Jl. Asia Afrika 8", City: "Bandung",
	})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, "Ani W", updated.Recipient)

	list, err := svc.ListAddresses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestAccountFollowsStoredState(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	u, err := svc.Create(ctx, app.CreateInput{Name: "Ani", Email: "ani@example.com", Password: "s3cretpass", Role: "admin"})
	require.NoError(t, err)

	acc, err := svc.Account(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", acc.Role)
	assert.True(t, acc.Active)

	_, err = svc.SetRole(ctx, u.ID, "customer")
	require.NoError(t, err)
	acc, err = svc.Account(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer", acc.Role)

	_, err = svc.Update(ctx, u.ID, app.UpdateInput{Name: "Ani", Email: "ani@example.com", Status: domain.StatusDisabled})
	require.NoError(t, err)
	acc, err = svc.Account(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, acc.Active)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Account(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Account(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "bootstrap-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "other@example.com", "bootstrap-pass"))

	admins, total, err := svc.List(ctx, domain.Filter{Role: app.AdminRole})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].Email)
}
