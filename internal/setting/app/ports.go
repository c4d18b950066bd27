package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/setting/domain"
)

type SettingRepo interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Get(ctx context.Context, key string) (domain.Setting, error)
	Upsert(ctx context.Context, settings []domain.Setting) error
}
