package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/user/app"
	"github.com/dwikikusuma/techstore/internal/user/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type addressRow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_addresses_default,where:is_default = true"`
	Label      string    `gorm:"size:40;not null"`
	Recipient  string    `gorm:"size:120;not null"`
	Phone      string    `gorm:"size:20;not null"`
	Line1      string    `gorm:"size:200;not null"`
	Line2      string    `gorm:"size:200;not null;default:''"`
	City       string    `gorm:"size:80;not null"`
	Province   string    `gorm:"size:80;not null;default:''"`
	PostalCode string    `gorm:"size:10;not null;default:''"`
	IsDefault  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (addressRow) TableName() string { return "addresses" }

type AddressRepo struct {
	db *gorm.DB
}

func NewAddressRepo(db *gorm.DB) *AddressRepo {
	return &AddressRepo{db: db}
}

func (r *AddressRepo) execTX(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *AddressRepo) List(ctx context.Context, userID string) ([]domain.Address, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []domain.Address{}, nil
	}
	var rows []addressRow
	err = r.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAddress(row))
	}
	return out, nil
}

func (r *AddressRepo) Get(ctx context.Context, userID, id string) (domain.Address, error) {
	row, err := r.find(r.db.WithContext(ctx), userID, id)
	if err != nil {
		return domain.Address{}, err
	}
	return toAddress(row), nil
}

func (r *AddressRepo) find(tx *gorm.DB, userID, id string) (addressRow, error) {
	uid, err1 := uuid.Parse(userID)
	aid, err2 := uuid.Parse(id)
	if err1 != nil || err2 != nil {
		return addressRow{}, app.ErrAddressNotFound
	}
	var row addressRow
	err := tx.Where("id = ? AND user_id = ?", aid, uid).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return addressRow{}, app.ErrAddressNotFound
	}
	return row, err
}

// Create makes the address the default when it is the user's first one. A concurrent first
// insert that wins the default index leaves this one as a plain address.
func (r *AddressRepo) Create(ctx context.Context, a domain.Address) (domain.Address, error) {
	uid, err := uuid.Parse(a.UserID)
	if err != nil {
		return domain.Address{}, app.ErrNotFound
	}
	now := time.Now().UTC()
	row := toAddressRow(a)
	row.ID = uuid.New()
	row.UserID = uid
	row.CreatedAt, row.UpdatedAt = now, now

	err = r.execTX(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&addressRow{}).Where("user_id = ?", uid).Count(&n).Error; err != nil {
			return err
		}
		row.IsDefault = n == 0
		return tx.Create(&row).Error
	})
	if row.IsDefault && apperr.IsUniqueViolation(err) {
		row.IsDefault = false
		err = r.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return domain.Address{}, err
	}
	return toAddress(row), nil
}

func (r *AddressRepo) Update(ctx context.Context, a domain.Address) (domain.Address, error) {
	current, err := r.find(r.db.WithContext(ctx), a.UserID, a.ID)
	if err != nil {
		return domain.Address{}, err
	}
	row := toAddressRow(a)
	err = r.db.WithContext(ctx).Model(&addressRow{}).Where("id = ?", current.ID).Updates(map[string]any{
		"label":       row.Label,
		"recipient":   row.Recipient,
		"phone":       row.Phone,
		"line1":       row.Line1,
		"line2":       row.Line2,
		"city":        row.City,
		"province":    row.Province,
		"postal_code": row.PostalCode,
		"updated_at":  time.Now().UTC(),
	}).Error
	if err != nil {
		return domain.Address{}, err
	}
	return r.Get(ctx, a.UserID, a.ID)
}

// Delete removes the address and, if it was the default, promotes the most recent remaining one.
func (r *AddressRepo) Delete(ctx context.Context, userID, id string) error {
	return r.execTX(ctx, func(tx *gorm.DB) error {
		row, err := r.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&addressRow{}, "id = ?", row.ID).Error; err != nil {
			return err
		}
		if !row.IsDefault {
			return nil
		}
		var next addressRow
		err = tx.Where("user_id = ?", row.UserID).Order("created_at DESC, id DESC").Take(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&addressRow{}).Where("id = ?", next.ID).Update("is_default", true).Error
	})
}

func (r *AddressRepo) SetDefault(ctx context.Context, userID, id string) error {
	return r.execTX(ctx, func(tx *gorm.DB) error {
		row, err := r.find(tx, userID, id)
		if err != nil {
			return err
		}
		if row.IsDefault {
			return nil
		}
		if err := tx.Model(&addressRow{}).
			Where("user_id = ? AND is_default = ?", row.UserID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&addressRow{}).Where("id = ?", row.ID).Update("is_default", true).Error
	})
}

func toAddressRow(a domain.Address) addressRow {
	return addressRow{
		Label:      a.Label,
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		IsDefault:  a.IsDefault,
	}
}

func toAddress(row addressRow) domain.Address {
	return domain.Address{
		ID:         row.ID.String(),
		UserID:     row.UserID.String(),
		Label:      row.Label,
		Recipient:  row.Recipient,
		Phone:      row.Phone,
		Line1:      row.Line1,
		Line2:      row.Line2,
		City:       row.City,
		Province:   row.Province,
		PostalCode: row.PostalCode,
		IsDefault:  row.IsDefault,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
