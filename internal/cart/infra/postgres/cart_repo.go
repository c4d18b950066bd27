package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwikikusuma/techstore/internal/cart/app"
	"github.com/dwikikusuma/techstore/internal/cart/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type cartRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_carts_active_user,where:status = 'ACTIVE'"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

type cartItemRow struct {
	CartID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartItemRow) TableName() string { return "cart_items" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&cartRow{}, &cartItemRow{})
}

type CartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) execTX(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *CartRepo) GetActive(ctx context.Context, userID string) (domain.Cart, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.Cart{}, app.ErrNotFound
	}

	var cart cartRow
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userUUID, domain.StatusActive).
		Take(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Cart{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Cart{}, err
	}

	var items []cartItemRow
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("created_at, product_id").
		Find(&items).Error; err != nil {
		return domain.Cart{}, err
	}
	return toDomain(cart, items), nil
}

func (r *CartRepo) Create(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	userUUID, err := uuid.Parse(cart.UserID)
	if err != nil {
		return domain.Cart{}, app.ErrNotFound
	}

	now := time.Now().UTC()
	row := cartRow{ID: uuid.New(), UserID: userUUID, Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now}
	items := make([]cartItemRow, 0, len(cart.Items))
	for _, it := range cart.Items {
		productUUID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return domain.Cart{}, app.ErrProductUnavailable
		}
		items = append(items, cartItemRow{CartID: row.ID, ProductID: productUUID, Quantity: it.Quantity, CreatedAt: now, UpdatedAt: now})
	}

	err = r.execTX(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return app.ErrCartExists
			}
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return toDomain(row, items), nil
}

// GetOrCreate tolerates a concurrent creator: losing the insert race means the winner's cart
// is read back.
func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := r.GetActive(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, app.ErrNotFound) {
		return domain.Cart{}, err
	}

	if _, err := uuid.Parse(userID); err != nil {
		return domain.Cart{}, app.ErrNotFound
	}
	created, err := r.Create(ctx, domain.Cart{UserID: userID})
	if err == nil {
		return created, nil
	}
	if errors.Is(err, app.ErrCartExists) {
		return r.GetActive(ctx, userID)
	}
	return domain.Cart{}, err
}

func (r *CartRepo) AddItem(ctx context.Context, cartID string, item domain.CartItem) error {
	cartUUID, productUUID, err := parseIDs(cartID, item.ProductID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := cartItemRow{CartID: cartUUID, ProductID: productUUID, Quantity: item.Quantity, CreatedAt: now, UpdatedAt: now}
	return r.execTX(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
				"updated_at": now,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return touch(tx, cartUUID, now)
	})
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID string, item domain.CartItem) error {
	cartUUID, productUUID, err := parseIDs(cartID, item.ProductID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return r.execTX(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&cartItemRow{}).
			Where("cart_id = ? AND product_id = ?", cartUUID, productUUID).
			Updates(map[string]any{"quantity": item.Quantity, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return app.ErrItemNotFound
		}
		return touch(tx, cartUUID, now)
	})
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID string) error {
	cartUUID, productUUID, err := parseIDs(cartID, productID)
	if err != nil {
		return err
	}
	return r.execTX(ctx, func(tx *gorm.DB) error {
		res := tx.Where("cart_id = ? AND product_id = ?", cartUUID, productUUID).Delete(&cartItemRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return app.ErrItemNotFound
		}
		return touch(tx, cartUUID, time.Now().UTC())
	})
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return app.ErrNotFound
	}
	return r.execTX(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartUUID).Delete(&cartItemRow{}).Error; err != nil {
			return err
		}
		return touch(tx, cartUUID, time.Now().UTC())
	})
}

func touch(tx *gorm.DB, cartID uuid.UUID, now time.Time) error {
	return tx.Model(&cartRow{}).Where("id = ?", cartID).Update("updated_at", now).Error
}

func parseIDs(cartID, productID string) (uuid.UUID, uuid.UUID, error) {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return uuid.Nil, uuid.Nil, app.ErrNotFound
	}
	productUUID, err := uuid.Parse(productID)
	if err != nil {
		return uuid.Nil, uuid.Nil, app.ErrItemNotFound
	}
	return cartUUID, productUUID, nil
}

func toDomain(cart cartRow, items []cartItemRow) domain.Cart {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.CartItem{ProductID: it.ProductID.String(), Quantity: it.Quantity})
	}
	return domain.Cart{
		ID:        cart.ID.String(),
		UserID:    cart.UserID.String(),
		Status:    cart.Status,
		Items:     out,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}
