package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/techstore/internal/catalog/domain"
	settingdomain "github.com/dwikikusuma/techstore/internal/setting/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/slug"
)

var (
	ErrNotFound       = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrDuplicate      = fmt.Errorf("%w: slug or sku already in use", apperr.ErrConflict)
	ErrStockUnderflow = fmt.Errorf("%w: stock cannot go below zero", apperr.ErrConflict)

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

const maxImages = 12

type Input struct {
	CategoryID  string
	Name        string
	Slug        string
	SKU         string
	Brand       string
	Description string
	Currency    string
	Price       int64
	SalePrice   int64
	Stock       int
	WeightGrams int
	Status      domain.Status
	Components  domain.Components
	Images      []domain.Image
}

type Service struct {
	repo       ProductRepo
	categories CategoryChecker
	components ComponentReader
	settings   SettingsReader
	policy     *bluemonday.Policy
	log        *zap.Logger
}

// NewService wires the catalog. settings may be nil; products then default to
// domain.DefaultCurrency.
func NewService(repo ProductRepo, categories CategoryChecker, components ComponentReader, settings SettingsReader, log *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		components: components,
		settings:   settings,
		policy:     bluemonday.UGCPolicy(),
		log:        log,
	}
}

// ListProducts is the storefront listing; only active products are visible.
func (s *Service) ListProducts(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error) {
	f.Statuses = []domain.Status{domain.StatusActive}
	return s.list(ctx, f)
}

// AdminList shows every non-deleted product unless statuses are given.
func (s *Service) AdminList(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error) {
	if len(f.Statuses) == 0 {
		f.Statuses = []domain.Status{domain.StatusActive, domain.StatusInactive}
	}
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.Sort {
	case "":
		f.Sort = domain.SortNewest
	case domain.SortNewest, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortName:
	default:
		return nil, 0, fmt.Errorf("%w: unknown sort %q", apperr.ErrInvalidInput, f.Sort)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, 0, fmt.Errorf("%w: min_price above max_price", apperr.ErrInvalidInput)
	}
	f.Query = strings.TrimSpace(f.Query)
	f.Brand = strings.TrimSpace(f.Brand)
	return s.repo.List(ctx, f)
}

// GetProduct resolves ref as an id or a slug and returns the active product with its
// component summaries.
func (s *Service) GetProduct(ctx context.Context, ref string) (domain.Detail, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Detail{}, apperr.ErrInvalidInput
	}

	var (
		p   domain.Product
		err error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		p, err = s.repo.Get(ctx, ref)
	} else {
		p, err = s.repo.GetBySlug(ctx, ref)
	}
	if err != nil {
		return domain.Detail{}, err
	}
	if p.Status != domain.StatusActive {
		return domain.Detail{}, ErrNotFound
	}

	refs := p.Components.Refs()
	specs := make([]*domain.ComponentSpec, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range refs {
		g.Go(func() error {
			spec, err := s.components.Describe(gctx, r.Kind, r.ID)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("describe %s %s: %w", r.Kind, r.ID, err)
			}
			specs[i] = &spec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Detail{}, err
	}

	d := domain.Detail{Product: p, Specs: make([]domain.ComponentSpec, 0, len(specs))}
	for _, spec := range specs {
		if spec != nil {
			d.Specs = append(d.Specs, *spec)
		}
	}
	return d, nil
}

// AdminGet returns a product in any status.
func (s *Service) AdminGet(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperr.ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, in Input) (domain.Product, error) {
	p, err := s.build(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	out, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product created", zap.String("product_id", out.ID), zap.String("slug", out.Slug))
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in Input) (domain.Product, error) {
	current, err := s.AdminGet(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if current.Status == domain.StatusDeleted {
		return domain.Product{}, ErrNotFound
	}
	p, err := s.build(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

// DeleteProduct is a soft delete; order history keeps pointing at the row.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	current, err := s.AdminGet(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == domain.StatusDeleted {
		return ErrNotFound
	}
	if err := s.repo.SetStatus(ctx, id, domain.StatusDeleted); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (domain.Product, error) {
	if strings.TrimSpace(id) == "" || delta == 0 {
		return domain.Product{}, apperr.ErrInvalidInput
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

func (s *Service) build(ctx context.Context, in Input) (domain.Product, error) {
	p := domain.Product{
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		SKU:         strings.ToUpper(strings.TrimSpace(in.SKU)),
		Brand:       strings.TrimSpace(in.Brand),
		Description: strings.TrimSpace(s.policy.Sanitize(in.Description)),
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		Stock:       in.Stock,
		WeightGrams: in.WeightGrams,
		Status:      in.Status,
		Components:  trimComponents(in.Components),
	}

	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	if !slug.Valid(p.Slug) {
		return domain.Product{}, fmt.Errorf("%w: invalid slug %q", apperr.ErrInvalidInput, p.Slug)
	}
	if p.Currency == "" {
		cur, err := s.storeCurrency(ctx)
		if err != nil {
			return domain.Product{}, err
		}
		p.Currency = cur
	}
	if !currencyPattern.MatchString(p.Currency) {
		return domain.Product{}, fmt.Errorf("%w: currency must be a 3-letter code", apperr.ErrInvalidInput)
	}
	if p.Price <= 0 {
		return domain.Product{}, fmt.Errorf("%w: price must be positive", apperr.ErrInvalidInput)
	}
	if p.SalePrice < 0 || (p.SalePrice > 0 && p.SalePrice >= p.Price) {
		return domain.Product{}, fmt.Errorf("%w: sale price must be below price", apperr.ErrInvalidInput)
	}
	if p.Stock < 0 || p.WeightGrams < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock and weight cannot be negative", apperr.ErrInvalidInput)
	}
	switch p.Status {
	case "":
		p.Status = domain.StatusActive
	case domain.StatusActive, domain.StatusInactive:
	default:
		return domain.Product{}, fmt.Errorf("%w: status must be active or inactive", apperr.ErrInvalidInput)
	}
	p.EffectivePrice = domain.Effective(p.Price, p.SalePrice)

	if len(in.Images) > maxImages {
		return domain.Product{}, fmt.Errorf("%w: at most %d images", apperr.ErrInvalidInput, maxImages)
	}
	p.Images = make([]domain.Image, 0, len(in.Images))
	for i, img := range in.Images {
		u := strings.TrimSpace(img.URL)
		if u == "" {
			return domain.Product{}, fmt.Errorf("%w: image %d has no url", apperr.ErrInvalidInput, i)
		}
		p.Images = append(p.Images, domain.Image{URL: u, SortOrder: i})
	}

	if p.CategoryID != "" {
		ok, err := s.categories.Exists(ctx, p.CategoryID)
		if err != nil {
			return domain.Product{}, err
		}
		if !ok {
			return domain.Product{}, fmt.Errorf("%w: category %s does not exist", apperr.ErrInvalidInput, p.CategoryID)
		}
	}
	for _, r := range p.Components.Refs() {
		ok, err := s.components.Exists(ctx, r.Kind, r.ID)
		if err != nil {
			return domain.Product{}, err
		}
		if !ok {
			return domain.Product{}, fmt.Errorf("%w: %s %s does not exist", apperr.ErrInvalidInput, r.Kind, r.ID)
		}
	}
	return p, nil
}

func trimComponents(c domain.Components) domain.Components {
	return domain.Components{
		CPUID:     strings.TrimSpace(c.CPUID),
		RAMID:     strings.TrimSpace(c.RAMID),
		StorageID: strings.TrimSpace(c.StorageID),
		GPUID:     strings.TrimSpace(c.GPUID),
		DisplayID: strings.TrimSpace(c.DisplayID),
	}
}

func (s *Service) storeCurrency(ctx context.Context) (string, error) {
	if s.settings == nil {
		return domain.DefaultCurrency, nil
	}
	cur, err := s.settings.String(ctx, settingdomain.KeyCurrency)
	if err != nil {
		return "", fmt.Errorf("store currency: %w", err)
	}
	if cur = strings.ToUpper(strings.TrimSpace(cur)); cur == "" {
		return domain.DefaultCurrency, nil
	}
	return cur, nil
}
