package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/category/app"
	"github.com/dwikikusuma/techstore/internal/category/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type categoryRow struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"size:120;not null"`
	Slug        string     `gorm:"size:140;not null;uniqueIndex"`
	Description string     `gorm:"type:text;not null;default:''"`
	SortOrder   int        `gorm:"not null;default:0"`
	Status      string     `gorm:"size:16;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (categoryRow) TableName() string { return "categories" }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&categoryRow{}) }

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) List(ctx context.Context, onlyActive bool) ([]domain.Category, error) {
	q := r.db.WithContext(ctx).Where("status <> ?", string(domain.StatusDeleted))
	if onlyActive {
		q = q.Where("status = ?", string(domain.StatusActive))
	}
	var rows []categoryRow
	if err := q.Order("sort_order, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Category{}, app.ErrNotFound
	}
	var row categoryRow
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", uid).Error; err != nil {
		return domain.Category{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	row, err := toRow(c)
	if err != nil {
		return domain.Category{}, err
	}
	now := time.Now().UTC()
	row.ID = uuid.New()
	row.CreatedAt, row.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Category{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	row, err := toRow(c)
	if err != nil {
		return domain.Category{}, err
	}
	uid, err := uuid.Parse(c.ID)
	if err != nil {
		return domain.Category{}, app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", uid).Updates(map[string]any{
		"parent_id":   row.ParentID,
		"name":        row.Name,
		"slug":        row.Slug,
		"description": row.Description,
		"sort_order":  row.SortOrder,
		"status":      row.Status,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return domain.Category{}, mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Category{}, app.ErrNotFound
	}
	return r.Get(ctx, c.ID)
}

func (r *CategoryRepo) SetStatus(ctx context.Context, id string, status domain.Status) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", uid).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) CountActiveChildren(ctx context.Context, id string) (int64, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return 0, app.ErrNotFound
	}
	var n int64
	err = r.db.WithContext(ctx).Model(&categoryRow{}).
		Where("parent_id = ? AND status = ?", uid, string(domain.StatusActive)).Count(&n).Error
	return n, err
}

// CountActiveProducts reads the catalog's products table, which lives in the same database.
func (r *CategoryRepo) CountActiveProducts(ctx context.Context, id string) (int64, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return 0, app.ErrNotFound
	}
	var n int64
	err = r.db.WithContext(ctx).Table("products").
		Where("category_id = ? AND status = ?", uid, "active").Count(&n).Error
	return n, err
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return app.ErrNotFound
	case apperr.IsUniqueViolation(err):
		return app.ErrSlugTaken
	default:
		return err
	}
}

func toRow(c domain.Category) (categoryRow, error) {
	row := categoryRow{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Status:      string(c.Status),
	}
	if c.ParentID != nil {
		pid, err := uuid.Parse(*c.ParentID)
		if err != nil {
			return categoryRow{}, app.ErrNotFound
		}
		row.ParentID = &pid
	}
	return row, nil
}

func toDomain(row categoryRow) domain.Category {
	c := domain.Category{
		ID:          row.ID.String(),
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		SortOrder:   row.SortOrder,
		Status:      domain.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.ParentID != nil {
		pid := row.ParentID.String()
		c.ParentID = &pid
	}
	return c
}
