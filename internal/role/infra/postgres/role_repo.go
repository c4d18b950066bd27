package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/role/app"
	"github.com/dwikikusuma/techstore/internal/role/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type roleRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:32;not null;uniqueIndex"`
	Description string    `gorm:"type:text;not null;default:''"`
	Permissions string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (roleRow) TableName() string { return "roles" }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&roleRow{}) }

type RoleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	var rows []roleRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func (r *RoleRepo) Get(ctx context.Context, id string) (domain.Role, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Role{}, app.ErrNotFound
	}
	var row roleRow
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", uid).Error; err != nil {
		return domain.Role{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (domain.Role, error) {
	var row roleRow
	if err := r.db.WithContext(ctx).Take(&row, "name = ?", name).Error; err != nil {
		return domain.Role{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *RoleRepo) Create(ctx context.Context, role domain.Role) (domain.Role, error) {
	now := time.Now().UTC()
	row := toRow(role)
	row.ID = uuid.New()
	row.CreatedAt, row.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Role{}, mapErr(err)
	}
	return toDomain(row), nil
}

func (r *RoleRepo) Update(ctx context.Context, role domain.Role) (domain.Role, error) {
	uid, err := uuid.Parse(role.ID)
	if err != nil {
		return domain.Role{}, app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&roleRow{}).Where("id = ?", uid).Updates(map[string]any{
		"name":        role.Name,
		"description": role.Description,
		"permissions": strings.Join(role.Permissions, ","),
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return domain.Role{}, mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Role{}, app.ErrNotFound
	}
	return r.Get(ctx, role.ID)
}

func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Delete(&roleRow{}, "id = ?", uid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// CountUsers counts non-deleted users holding the role. Roles and users share one database.
func (r *RoleRepo) CountUsers(ctx context.Context, roleName string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("users").
		Where("role = ? AND status <> ?", roleName, "deleted").
		Count(&n).Error
	return n, err
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return app.ErrNotFound
	case apperr.IsUniqueViolation(err):
		return app.ErrNameTaken
	default:
		return err
	}
}

func toRow(role domain.Role) roleRow {
	return roleRow{
		Name:        role.Name,
		Description: role.Description,
		Permissions: strings.Join(role.Permissions, ","),
	}
}

func toDomain(row roleRow) domain.Role {
	perms := []string{}
	if row.Permissions != "" {
		perms = strings.Split(row.Permissions, ",")
	}
	return domain.Role{
		ID:          row.ID.String(),
		Name:        row.Name,
		Description: row.Description,
		Permissions: perms,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
