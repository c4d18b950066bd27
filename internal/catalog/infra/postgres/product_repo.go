package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/catalog/app"
	"github.com/dwikikusuma/techstore/internal/catalog/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type productRow struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CategoryID     *uuid.UUID `gorm:"type:uuid;index"`
	Name           string     `gorm:"size:200;not null"`
	Slug           string     `gorm:"size:220;not null;uniqueIndex"`
	SKU            *string    `gorm:"column:sku;size:64;uniqueIndex"`
	Brand          string     `gorm:"size:80;not null;default:'';index"`
	Description    string     `gorm:"type:text;not null;default:''"`
	Currency       string     `gorm:"size:3;not null"`
	Price          int64      `gorm:"not null"`
	SalePrice      int64      `gorm:"not null;default:0"`
	EffectivePrice int64      `gorm:"not null;index"`
	Stock          int        `gorm:"not null;default:0"`
	WeightGrams    int        `gorm:"not null;default:0"`
	Status         string     `gorm:"size:16;not null;index"`
	CPUID          *string    `gorm:"column:cpu_id;size:36;index"`
	RAMID          *string    `gorm:"column:ram_id;size:36;index"`
	StorageID      *string    `gorm:"column:storage_id;size:36;index"`
	GPUID          *string    `gorm:"column:gpu_id;size:36;index"`
	DisplayID      *string    `gorm:"column:display_id;size:36;index"`
	CreatedAt      time.Time  `gorm:"index"`
	UpdatedAt      time.Time
}

func (productRow) TableName() string { return "products" }

type productImageRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"column:url;size:500;not null"`
	SortOrder int       `gorm:"not null;default:0"`
}

func (productImageRow) TableName() string { return "product_images" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&productRow{}, &productImageRow{})
}

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) execTX(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row, err := toRow(p)
	if err != nil {
		return domain.Product{}, err
	}
	now := time.Now().UTC()
	row.ID = uuid.New()
	row.CreatedAt, row.UpdatedAt = now, now

	err = r.execTX(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return mapErr(err)
		}
		return replaceImages(tx, row.ID, p.Images)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return r.Get(ctx, row.ID.String())
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}
	return r.take(ctx, r.db.WithContext(ctx).Where("id = ?", uid))
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (domain.Product, error) {
	return r.take(ctx, r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *ProductRepo) take(ctx context.Context, q *gorm.DB) (domain.Product, error) {
	var row productRow
	if err := q.Take(&row).Error; err != nil {
		return domain.Product{}, mapErr(err)
	}
	images, err := r.images(ctx, []uuid.UUID{row.ID})
	if err != nil {
		return domain.Product{}, err
	}
	return toDomain(row, images[row.ID]), nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Model(&productRow{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	var rows []productRow
	err := r.filtered(ctx, f).
		Order(orderBy(f.Sort)).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	images, err := r.images(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row, images[row.ID]))
	}
	return out, total, nil
}

func (r *ProductRepo) filtered(ctx context.Context, f domain.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&productRow{})
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.Query != "" {
		like := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\'`, like, like, like)
	}
	if f.CategoryID != "" {
		if uid, err := uuid.Parse(f.CategoryID); err == nil {
			q = q.Where("category_id = ?", uid)
		} else {
			q = q.Where("1 = 0")
		}
	}
	if f.Brand != "" {
		q = q.Where("LOWER(brand) = ?", strings.ToLower(f.Brand))
	}
	if f.MinPrice != nil {
		q = q.Where("effective_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("effective_price <= ?", *f.MaxPrice)
	}
	for col, id := range map[string]string{
		"cpu_id":     f.Components.CPUID,
		"ram_id":     f.Components.RAMID,
		"storage_id": f.Components.StorageID,
		"gpu_id":     f.Components.GPUID,
		"display_id": f.Components.DisplayID,
	} {
		if id != "" {
			q = q.Where(col+" = ?", id)
		}
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	return q
}

func orderBy(s domain.Sort) string {
	switch s {
	case domain.SortPriceAsc:
		return "effective_price ASC, id ASC"
	case domain.SortPriceDesc:
		return "effective_price DESC, id ASC"
	case domain.SortName:
		return "name ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	uid, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}
	row, err := toRow(p)
	if err != nil {
		return domain.Product{}, err
	}

	err = r.execTX(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&productRow{}).
			Where("id = ? AND status <> ?", uid, string(domain.StatusDeleted)).
			Updates(map[string]any{
				"category_id":     row.CategoryID,
				"name":            row.Name,
				"slug":            row.Slug,
				"sku":             row.SKU,
				"brand":           row.Brand,
				"description":     row.Description,
				"currency":        row.Currency,
				"price":           row.Price,
				"sale_price":      row.SalePrice,
				"effective_price": row.EffectivePrice,
				"stock":           row.Stock,
				"weight_grams":    row.WeightGrams,
				"status":          row.Status,
				"cpu_id":          row.CPUID,
				"ram_id":          row.RAMID,
				"storage_id":      row.StorageID,
				"gpu_id":          row.GPUID,
				"display_id":      row.DisplayID,
				"updated_at":      time.Now().UTC(),
			})
		if res.Error != nil {
			return mapErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return app.ErrNotFound
		}
		return replaceImages(tx, uid, p.Images)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return r.Get(ctx, p.ID)
}

func replaceImages(tx *gorm.DB, productID uuid.UUID, images []domain.Image) error {
	if err := tx.Where("product_id = ?", productID).Delete(&productImageRow{}).Error; err != nil {
		return fmt.Errorf("clear images: %w", err)
	}
	if len(images) == 0 {
		return nil
	}
	rows := make([]productImageRow, len(images))
	for i, img := range images {
		rows[i] = productImageRow{ID: uuid.New(), ProductID: productID, URL: img.URL, SortOrder: img.SortOrder}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert images: %w", err)
	}
	return nil
}

func (r *ProductRepo) SetStatus(ctx context.Context, id string, status domain.Status) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&productRow{}).Where("id = ?", uid).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) AdjustStock(ctx context.Context, id string, delta int) (domain.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&productRow{}).
		Where("id = ? AND status <> ? AND stock + ? >= 0", uid, string(domain.StatusDeleted), delta).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return domain.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		p, err := r.Get(ctx, id)
		if err != nil {
			return domain.Product{}, err
		}
		if p.Status == domain.StatusDeleted {
			return domain.Product{}, app.ErrNotFound
		}
		return domain.Product{}, app.ErrStockUnderflow
	}
	return r.Get(ctx, id)
}

func (r *ProductRepo) images(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Image, error) {
	out := make(map[uuid.UUID][]domain.Image, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []productImageRow
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("product_id, sort_order").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], domain.Image{URL: row.URL, SortOrder: row.SortOrder})
	}
	return out, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return app.ErrNotFound
	case apperr.IsUniqueViolation(err):
		return app.ErrDuplicate
	default:
		return err
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRow(p domain.Product) (productRow, error) {
	row := productRow{
		Name:           p.Name,
		Slug:           p.Slug,
		SKU:            optional(p.SKU),
		Brand:          p.Brand,
		Description:    p.Description,
		Currency:       p.Currency,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		EffectivePrice: domain.Effective(p.Price, p.SalePrice),
		Stock:          p.Stock,
		WeightGrams:    p.WeightGrams,
		Status:         string(p.Status),
		CPUID:          optional(p.Components.CPUID),
		RAMID:          optional(p.Components.RAMID),
		StorageID:      optional(p.Components.StorageID),
		GPUID:          optional(p.Components.GPUID),
		DisplayID:      optional(p.Components.DisplayID),
	}
	if p.CategoryID != "" {
		cid, err := uuid.Parse(p.CategoryID)
		if err != nil {
			return productRow{}, fmt.Errorf("%w: invalid category id", apperr.ErrInvalidInput)
		}
		row.CategoryID = &cid
	}
	return row, nil
}

func toDomain(row productRow, images []domain.Image) domain.Product {
	p := domain.Product{
		ID:             row.ID.String(),
		Name:           row.Name,
		Slug:           row.Slug,
		SKU:            deref(row.SKU),
		Brand:          row.Brand,
		Description:    row.Description,
		Currency:       row.Currency,
		Price:          row.Price,
		SalePrice:      row.SalePrice,
		EffectivePrice: row.EffectivePrice,
		Stock:          row.Stock,
		WeightGrams:    row.WeightGrams,
		Status:         domain.Status(row.Status),
		Components: domain.Components{
			CPUID:     deref(row.CPUID),
			RAMID:     deref(row.RAMID),
			StorageID: deref(row.StorageID),
			GPUID:     deref(row.GPUID),
			DisplayID: deref(row.DisplayID),
		},
		Images:    images,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	if row.CategoryID != nil {
		p.CategoryID = row.CategoryID.String()
	}
	return p
}
