package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/order/app"
	"github.com/dwikikusuma/techstore/internal/order/domain"
)

type orderRow struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number          string     `gorm:"size:32;not null;uniqueIndex"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status          int        `gorm:"not null;index"`
	Currency        string     `gorm:"size:3;not null"`
	Subtotal        int64      `gorm:"not null"`
	Discount        int64      `gorm:"not null;default:0"`
	Shipping        int64      `gorm:"not null;default:0"`
	Total           int64      `gorm:"not null"`
	CouponID        *uuid.UUID `gorm:"type:uuid;index"`
	CouponCode      string     `gorm:"size:32;not null;default:''"`
	Recipient       string     `gorm:"size:120;not null"`
	Phone           string     `gorm:"size:20;not null"`
	ShippingAddress string     `gorm:"type:text;not null"`
	PaymentMethod   string     `gorm:"size:32;not null"`
	Note            string     `gorm:"type:text;not null;default:''"`
	CancelledAt     *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"size:200;not null"`
	UnitPrice int64     `gorm:"not null"`
	Quantity  int       `gorm:"not null"`
	LineTotal int64     `gorm:"not null"`
}

func (orderItemRow) TableName() string { return "order_items" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&orderRow{}, &orderItemRow{})
}

// Stock, coupon usage and cart status live in tables owned by other contexts; this repository
// only ever touches them inside its own transactions.
const (
	productsTable = "products"
	couponsTable  = "coupons"
	cartsTable    = "carts"
)

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *OrderRepo) Place(ctx context.Context, order domain.Order, cartID string) (domain.Order, error) {
	userUUID, err := uuid.Parse(order.UserID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("invalid user id: %w", err)
	}
	now := time.Now().UTC()
	row := orderRow{
		ID:              uuid.New(),
		Number:          order.Number,
		UserID:          userUUID,
		Status:          int(order.Status),
		Currency:        order.Currency,
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		Shipping:        order.Shipping,
		Total:           order.Total,
		CouponCode:      order.CouponCode,
		Recipient:       order.Recipient,
		Phone:           order.Phone,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Note:            order.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.CouponID != nil {
		cid, err := uuid.Parse(*order.CouponID)
		if err != nil {
			return domain.Order{}, app.ErrCouponExhausted
		}
		row.CouponID = &cid
	}

	items := make([]orderItemRow, 0, len(order.Items))
	for i, it := range order.Items {
		if it.LineTotal != it.UnitPrice*int64(it.Quantity) {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch", i)
		}
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("item %d: invalid product UUID: %w", i, err)
		}
		items = append(items, orderItemRow{
			ID:        uuid.New(),
			OrderID:   row.ID,
			ProductID: pid,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}

	err = r.execTX(ctx, func(tx *gorm.DB) error {
		if err := reserve(tx, items, now); err != nil {
			return err
		}
		if row.CouponID != nil {
			res := tx.Table(couponsTable).
				Where("id = ? AND status = ? AND (usage_limit = 0 OR used_count < usage_limit)", *row.CouponID, "active").
				Updates(map[string]any{"used_count": gorm.Expr("used_count + 1"), "updated_at": now})
			if res.Error != nil {
				return fmt.Errorf("consume coupon: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return app.ErrCouponExhausted
			}
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert items: %w", err)
		}
		if cartID == "" {
			return nil
		}
		cartUUID, err := uuid.Parse(cartID)
		if err != nil {
			return app.ErrCartChanged
		}
		res := tx.Table(cartsTable).
			Where("id = ? AND status = ?", cartUUID, "ACTIVE").
			Updates(map[string]any{"status": "CHECKED_OUT", "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("check out cart: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return app.ErrCartChanged
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return toDomain(row, items), nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	row, items, err := r.load(r.db.WithContext(ctx), id)
	if err != nil {
		return domain.Order{}, err
	}
	return toDomain(row, items), nil
}

func (r *OrderRepo) load(tx *gorm.DB, id string) (orderRow, []orderItemRow, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return orderRow{}, nil, app.ErrNotFound
	}
	var row orderRow
	if err := tx.Take(&row, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderRow{}, nil, app.ErrNotFound
		}
		return orderRow{}, nil, err
	}
	var items []orderItemRow
	if err := tx.Where("order_id = ?", row.ID).Order("name, id").Find(&items).Error; err != nil {
		return orderRow{}, nil, err
	}
	return row, items, nil
}

func (r *OrderRepo) List(ctx context.Context, f domain.Filter) ([]domain.Order, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&orderRow{})
		if f.Status != nil {
			q = q.Where("status = ?", int(*f.Status))
		}
		if f.UserID != "" {
			uid, err := uuid.Parse(f.UserID)
			if err != nil {
				uid = uuid.Nil
			}
			q = q.Where("user_id = ?", uid)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []orderRow
	if err := scope().Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []domain.Order{}, total, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var items []orderItemRow
	if err := r.db.WithContext(ctx).Where("order_id IN ?", ids).Order("name, id").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	byOrder := make(map[uuid.UUID][]orderItemRow, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row, byOrder[row.ID]))
	}
	return out, total, nil
}

func (r *OrderRepo) SetStatus(ctx context.Context, id string, from, to domain.Status) (domain.Order, error) {
	var (
		row   orderRow
		items []orderItemRow
	)
	err := r.execTX(ctx, func(tx *gorm.DB) error {
		var err error
		row, items, err = r.load(tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		cols := map[string]any{"status": int(to), "updated_at": now}
		switch {
		case to == domain.StatusCancelled:
			cols["cancelled_at"] = now
		case from == domain.StatusCancelled:
			cols["cancelled_at"] = nil
		}
		res := tx.Model(&orderRow{}).Where("id = ? AND status = ?", row.ID, int(from)).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return app.ErrStatusChanged
		}

		switch {
		case to == domain.StatusCancelled && from != domain.StatusCancelled:
			if err := restock(tx, items, now); err != nil {
				return err
			}
		case from == domain.StatusCancelled && to != domain.StatusCancelled:
			if err := reserve(tx, items, now); err != nil {
				return err
			}
		}
		row, items, err = r.load(tx, id)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	return toDomain(row, items), nil
}

func (r *OrderRepo) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&orderRow{}).
		Where("status = ? AND created_at < ?", int(domain.StatusPending), cutoff).
		Order("created_at").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out, nil
}

// reserve decrements stock for every line, refusing to go below zero. Lines are visited in
// product id order so concurrent checkouts lock rows in the same order.
func reserve(tx *gorm.DB, items []orderItemRow, now time.Time) error {
	for _, it := range byProduct(items) {
		res := tx.Table(productsTable).
			Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
			Updates(map[string]any{"stock": gorm.Expr("stock - ?", it.Quantity), "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("reserve stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", app.ErrInsufficientStock, it.Name)
		}
	}
	return nil
}

func restock(tx *gorm.DB, items []orderItemRow, now time.Time) error {
	for _, it := range byProduct(items) {
		err := tx.Table(productsTable).
			Where("id = ?", it.ProductID).
			Updates(map[string]any{"stock": gorm.Expr("stock + ?", it.Quantity), "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("restock: %w", err)
		}
	}
	return nil
}

func byProduct(items []orderItemRow) []orderItemRow {
	out := append([]orderItemRow(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return out
}

func toDomain(row orderRow, items []orderItemRow) domain.Order {
	out := domain.Order{
		ID:              row.ID.String(),
		Number:          row.Number,
		UserID:          row.UserID.String(),
		Status:          domain.Status(row.Status),
		StatusLabel:     domain.Status(row.Status).String(),
		Currency:        row.Currency,
		Subtotal:        row.Subtotal,
		Discount:        row.Discount,
		Shipping:        row.Shipping,
		Total:           row.Total,
		CouponCode:      row.CouponCode,
		Recipient:       row.Recipient,
		Phone:           row.Phone,
		ShippingAddress: row.ShippingAddress,
		PaymentMethod:   row.PaymentMethod,
		Note:            row.Note,
		Items:           make([]domain.Item, 0, len(items)),
		CancelledAt:     row.CancelledAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.CouponID != nil {
		cid := row.CouponID.String()
		out.CouponID = &cid
	}
	for _, it := range items {
		out.Items = append(out.Items, domain.Item{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}
	return out
}
