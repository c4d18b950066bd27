package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwikikusuma/techstore/internal/setting/app"
	"github.com/dwikikusuma/techstore/internal/setting/domain"
)

type settingRow struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	Public    bool   `gorm:"not null;default:false"`
	UpdatedAt time.Time
}

func (settingRow) TableName() string { return "settings" }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&settingRow{}) }

type SettingRepo struct {
	db *gorm.DB
}

func NewSettingRepo(db *gorm.DB) *SettingRepo {
	return &SettingRepo{db: db}
}

func (r *SettingRepo) List(ctx context.Context) ([]domain.Setting, error) {
	var rows []settingRow
	if err := r.db.WithContext(ctx).Order("setting_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Setting, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func (r *SettingRepo) Get(ctx context.Context, key string) (domain.Setting, error) {
	var row settingRow
	err := r.db.WithContext(ctx).Where("setting_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Setting{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Setting{}, err
	}
	return toDomain(row), nil
}

func (r *SettingRepo) Upsert(ctx context.Context, settings []domain.Setting) error {
	now := time.Now().UTC()
	rows := make([]settingRow, 0, len(settings))
	for _, s := range settings {
		rows = append(rows, settingRow{Key: s.Key, Value: s.Value, Public: s.Public, UpdatedAt: now})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "public", "updated_at"}),
	}).Create(&rows).Error
}

func toDomain(row settingRow) domain.Setting {
	return domain.Setting{Key: row.Key, Value: row.Value, Public: row.Public, UpdatedAt: row.UpdatedAt}
}
