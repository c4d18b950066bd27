package app

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/techstore/internal/banner/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/cache"
)

type memRepo struct {
	rows  map[string]domain.Banner
	seq   int
	lives int
}

func newMemRepo() *memRepo { return &memRepo{rows: map[string]domain.Banner{}} }

func (m *memRepo) Live(_ context.Context, now time.Time) ([]domain.Banner, error) {
	m.lives++
	var out []domain.Banner
	for _, b := range m.rows {
		if b.LiveAt(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memRepo) List(context.Context) ([]domain.Banner, error) {
	var out []domain.Banner
	for _, b := range m.rows {
		out = append(out, b)
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id string) (domain.Banner, error) {
	b, ok := m.rows[id]
	if !ok {
		return domain.Banner{}, ErrNotFound
	}
	return b, nil
}

func (m *memRepo) Create(_ context.Context, b domain.Banner) (domain.Banner, error) {
	m.seq++
	b.ID = "b" + strconv.Itoa(m.seq)
	m.rows[b.ID] = b
	return b, nil
}

func (m *memRepo) Update(_ context.Context, b domain.Banner) (domain.Banner, error) {
	m.rows[b.ID] = b
	return b, nil
}

func (m *memRepo) SetStatus(_ context.Context, id string, st domain.Status) error {
	b := m.rows[id]
	b.Status = st
	m.rows[id] = b
	return nil
}

func TestBuildSanitisesAndValidates(t *testing.T) {
	svc := NewService(newMemRepo(), nil, time.Minute)
	ctx := context.Background()

	b, err := svc.Create(ctx, Input{
		Title:    "<b>Big</b> sale",
		Caption:  `<p onclick="x()">Up to <strong>50%</strong> off</p><script>alert(1)</script>`,
		ImageURL: "https://cdn.example.com/sale.jpg",
		LinkURL:  "/products?category=laptops",
	})
	require.NoError(t, err)
	assert.Equal(t, "Big sale", b.Title)
	assert.Equal(t, "<p>Up to <strong>50%</strong> off</p>", b.Caption)
	assert.Equal(t, domain.StatusActive, b.Status)

	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	bad := []Input{
		{Title: "", ImageURL: "https://x.io/a.jpg"},
		{Title: "t", ImageURL: "javascript:alert(1)"},
		{Title: "t", ImageURL: "https://x.io/a.jpg", LinkURL: "//evil.example.com"},
		{Title: "t", ImageURL: "https://x.io/a.jpg", StartsAt: &start, EndsAt: &end},
		{Title: "t", ImageURL: "https://x.io/a.jpg", Status: domain.StatusDeleted},
	}
	for i, in := range bad {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, "case %d", i)
	}
}

func TestActiveRefiltersCachedList(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, cache.NewMemory(), time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ends := now.Add(time.Minute)
	_, err := svc.Create(ctx, Input{Title: "flash", ImageURL: "https://x.io/f.jpg", EndsAt: &ends})
	require.NoError(t, err)

	live, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, live, 1)

	now = now.Add(2 * time.Minute)
	live, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, live)
	assert.Equal(t, 1, repo.lives)
}

func TestDeleteHidesBanner(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil, time.Minute)
	b, err := svc.Create(ctx, Input{Title: "x", ImageURL: "https://x.io/a.jpg"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, b.ID), apperr.ErrNotFound)
}
