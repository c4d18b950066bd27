package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/user/app"
	"github.com/dwikikusuma/techstore/internal/user/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type userRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:120;not null"`
	Email        string    `gorm:"size:254;not null;uniqueIndex"`
	Phone        string    `gorm:"size:20;not null;default:''"`
	PasswordHash string    `gorm:"size:72;not null"`
	Role         string    `gorm:"size:32;not null;index"`
	Status       string    `gorm:"size:16;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &addressRow{})
}

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) List(ctx context.Context, f domain.Filter) ([]domain.User, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&userRow{})
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		} else {
			q = q.Where("status <> ?", string(domain.StatusDeleted))
		}
		if f.Role != "" {
			q = q.Where("role = ?", f.Role)
		}
		if f.Query != "" {
			like := "%" + strings.ToLower(f.Query) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []userRow
	if err := scope().Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, toUser(row))
	}
	return out, total, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (domain.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.User{}, app.ErrNotFound
	}
	var row userRow
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", uid).Error; err != nil {
		return domain.User{}, mapUserErr(err)
	}
	return toUser(row), nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	row := userRow{
		ID:           uuid.New(),
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       string(u.Status),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.User{}, mapUserErr(err)
	}
	return toUser(row), nil
}

func (r *UserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	if err := r.update(ctx, u.ID, map[string]any{
		"name":   u.Name,
		"email":  u.Email,
		"phone":  u.Phone,
		"status": string(u.Status),
	}); err != nil {
		return domain.User{}, err
	}
	return r.Get(ctx, u.ID)
}

func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *UserRepo) SetPassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash})
}

func (r *UserRepo) SetStatus(ctx context.Context, id string, status domain.Status) error {
	return r.update(ctx, id, map[string]any{"status": string(status)})
}

func (r *UserRepo) update(ctx context.Context, id string, cols map[string]any) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", uid).Updates(cols)
	if res.Error != nil {
		return mapUserErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return app.ErrNotFound
	case apperr.IsUniqueViolation(err):
		return app.ErrEmailTaken
	default:
		return err
	}
}

func toUser(row userRow) domain.User {
	return domain.User{
		ID:           row.ID.String(),
		Name:         row.Name,
		Email:        row.Email,
		Phone:        row.Phone,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		Status:       domain.Status(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
