package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/coupon/app"
	"github.com/dwikikusuma/techstore/internal/coupon/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type couponRow struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code        string          `gorm:"size:32;not null;uniqueIndex"`
	Description string          `gorm:"type:text;not null;default:''"`
	Type        string          `gorm:"size:16;not null"`
	Value       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MaxDiscount int64           `gorm:"not null;default:0"`
	MinPurchase int64           `gorm:"not null;default:0"`
	StartsAt    time.Time       `gorm:"not null"`
	EndsAt      *time.Time      `gorm:"index"`
	UsageLimit  int             `gorm:"not null;default:0"`
	UsedCount   int             `gorm:"not null;default:0"`
	Status      string          `gorm:"size:16;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (couponRow) TableName() string { return "coupons" }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&couponRow{}) }

type CouponRepo struct {
	db *gorm.DB
}

func NewCouponRepo(db *gorm.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

func (r *CouponRepo) List(ctx context.Context, f app.Filter) ([]domain.Coupon, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&couponRow{})
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		} else {
			q = q.Where("status <> ?", string(domain.StatusDeleted))
		}
		if f.Query != "" {
			q = q.Where("code LIKE ?", "%"+f.Query+"%")
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []couponRow
	if err := scope().Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Coupon, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, total, nil
}

func (r *CouponRepo) Get(ctx context.Context, id string) (domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Coupon{}, app.ErrNotFound
	}
	var row couponRow
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", uid).Error; err != nil {
		return domain.Coupon{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	var row couponRow
	if err := r.db.WithContext(ctx).Take(&row, "code = ?", code).Error; err != nil {
		return domain.Coupon{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *CouponRepo) Create(ctx context.Context, c domain.Coupon) (domain.Coupon, error) {
	now := time.Now().UTC()
	row := toRow(c)
	row.ID = uuid.New()
	row.UsedCount = 0
	row.CreatedAt, row.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Coupon{}, mapErr(err)
	}
	return toDomain(row), nil
}

// Update leaves used_count alone; only order placement moves it.
func (r *CouponRepo) Update(ctx context.Context, c domain.Coupon) (domain.Coupon, error) {
	uid, err := uuid.Parse(c.ID)
	if err != nil {
		return domain.Coupon{}, app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&couponRow{}).Where("id = ?", uid).Updates(map[string]any{
		"code":         c.Code,
		"description":  c.Description,
		"type":         string(c.Type),
		"value":        c.Value,
		"max_discount": c.MaxDiscount,
		"min_purchase": c.MinPurchase,
		"starts_at":    c.StartsAt,
		"ends_at":      c.EndsAt,
		"usage_limit":  c.UsageLimit,
		"status":       string(c.Status),
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return domain.Coupon{}, mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Coupon{}, app.ErrNotFound
	}
	return r.Get(ctx, c.ID)
}

func (r *CouponRepo) SetStatus(ctx context.Context, id string, status domain.Status) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&couponRow{}).Where("id = ?", uid).Updates(map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *CouponRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&couponRow{}).
		Where("status = ? AND ends_at IS NOT NULL AND ends_at <= ?", string(domain.StatusActive), now).
		Updates(map[string]any{
			"status":     string(domain.StatusInactive),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return app.ErrNotFound
	case apperr.IsUniqueViolation(err):
		return app.ErrCodeTaken
	default:
		return err
	}
}

func toRow(c domain.Coupon) couponRow {
	return couponRow{
		Code:        c.Code,
		Description: c.Description,
		Type:        string(c.Type),
		Value:       c.Value,
		MaxDiscount: c.MaxDiscount,
		MinPurchase: c.MinPurchase,
		StartsAt:    c.StartsAt,
		EndsAt:      c.EndsAt,
		UsageLimit:  c.UsageLimit,
		UsedCount:   c.UsedCount,
		Status:      string(c.Status),
	}
}

func toDomain(row couponRow) domain.Coupon {
	return domain.Coupon{
		ID:          row.ID.String(),
		Code:        row.Code,
		Description: row.Description,
		Type:        domain.Type(row.Type),
		Value:       row.Value,
		MaxDiscount: row.MaxDiscount,
		MinPurchase: row.MinPurchase,
		StartsAt:    row.StartsAt,
		EndsAt:      row.EndsAt,
		UsageLimit:  row.UsageLimit,
		UsedCount:   row.UsedCount,
		Status:      domain.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
