package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/techstore/internal/banner/domain"
)

type BannerRepo interface {
	// Live returns active banners whose window contains now, ordered by position.
	Live(ctx context.Context, now time.Time) ([]domain.Banner, error)
	List(ctx context.Context) ([]domain.Banner, error)
	Get(ctx context.Context, id string) (domain.Banner, error)
	Create(ctx context.Context, b domain.Banner) (domain.Banner, error)
	Update(ctx context.Context, b domain.Banner) (domain.Banner, error)
	SetStatus(ctx context.Context, id string, status domain.Status) error
}
