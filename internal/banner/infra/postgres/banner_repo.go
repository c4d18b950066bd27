package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/banner/app"
	"github.com/dwikikusuma/techstore/internal/banner/domain"
)

type bannerRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"size:160;not null"`
	Caption   string    `gorm:"type:text;not null;default:''"`
	ImageURL  string    `gorm:"size:500;not null"`
	LinkURL   string    `gorm:"size:500;not null;default:''"`
	Position  int       `gorm:"not null;default:0"`
	StartsAt  *time.Time
	EndsAt    *time.Time
	Status    string `gorm:"size:16;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (bannerRow) TableName() string { return "banners" }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&bannerRow{}) }

type BannerRepo struct {
	db *gorm.DB
}

func NewBannerRepo(db *gorm.DB) *BannerRepo {
	return &BannerRepo{db: db}
}

func (r *BannerRepo) Live(ctx context.Context, now time.Time) ([]domain.Banner, error) {
	var rows []bannerRow
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusActive)).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("position, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func (r *BannerRepo) List(ctx context.Context) ([]domain.Banner, error) {
	var rows []bannerRow
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(domain.StatusDeleted)).
		Order("position, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func (r *BannerRepo) Get(ctx context.Context, id string) (domain.Banner, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Banner{}, app.ErrNotFound
	}
	var row bannerRow
	err = r.db.WithContext(ctx).Take(&row, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Banner{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Banner{}, err
	}
	return toDomain(row), nil
}

func (r *BannerRepo) Create(ctx context.Context, b domain.Banner) (domain.Banner, error) {
	row := toRow(b)
	now := time.Now().UTC()
	row.ID = uuid.New()
	row.CreatedAt, row.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Banner{}, err
	}
	return toDomain(row), nil
}

func (r *BannerRepo) Update(ctx context.Context, b domain.Banner) (domain.Banner, error) {
	uid, err := uuid.Parse(b.ID)
	if err != nil {
		return domain.Banner{}, app.ErrNotFound
	}
	row := toRow(b)
	res := r.db.WithContext(ctx).Model(&bannerRow{}).Where("id = ?", uid).Updates(map[string]any{
		"title":      row.Title,
		"caption":    row.Caption,
		"image_url":  row.ImageURL,
		"link_url":   row.LinkURL,
		"position":   row.Position,
		"starts_at":  row.StartsAt,
		"ends_at":    row.EndsAt,
		"status":     row.Status,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return domain.Banner{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Banner{}, app.ErrNotFound
	}
	return r.Get(ctx, b.ID)
}

func (r *BannerRepo) SetStatus(ctx context.Context, id string, status domain.Status) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&bannerRow{}).Where("id = ?", uid).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func toRow(b domain.Banner) bannerRow {
	return bannerRow{
		Title:    b.Title,
		Caption:  b.Caption,
		ImageURL: b.ImageURL,
		LinkURL:  b.LinkURL,
		Position: b.Position,
		StartsAt: b.StartsAt,
		EndsAt:   b.EndsAt,
		Status:   string(b.Status),
	}
}

func toDomain(row bannerRow) domain.Banner {
	return domain.Banner{
		ID:        row.ID.String(),
		Title:     row.Title,
		Caption:   row.Caption,
		ImageURL:  row.ImageURL,
		LinkURL:   row.LinkURL,
		Position:  row.Position,
		StartsAt:  utc(row.StartsAt),
		EndsAt:    utc(row.EndsAt),
		Status:    domain.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toDomainList(rows []bannerRow) []domain.Banner {
	out := make([]domain.Banner, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
