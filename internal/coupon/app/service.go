package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/coupon/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

var (
	ErrNotFound  = fmt.Errorf("coupon %w", apperr.ErrNotFound)
	ErrCodeTaken = fmt.Errorf("%w: coupon code already exists", apperr.ErrConflict)

	codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{2,31}$`)
)

type Input struct {
	Code        string
	Description string
	Type        domain.Type
	Value       decimal.Decimal
	MaxDiscount int64
	MinPurchase int64
	StartsAt    *time.Time
	EndsAt      *time.Time
	UsageLimit  int
	Status      domain.Status
}

type Service struct {
	repo CouponRepo
	now  func() time.Time
	log  *zap.Logger
}

func NewService(repo CouponRepo, log *zap.Logger) *Service {
	return &Service{repo: repo, now: time.Now, log: log}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Coupon, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	f.Query = NormalizeCode(f.Query)
	switch f.Status {
	case "", domain.StatusActive, domain.StatusInactive, domain.StatusDeleted:
	default:
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, f.Status)
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Coupon, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Coupon{}, apperr.ErrInvalidInput
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	if c.Status == domain.StatusDeleted {
		return domain.Coupon{}, ErrNotFound
	}
	return c, nil
}

// Lookup finds a usable-looking coupon by code. Deleted coupons are not found; every other
// check is left to Evaluate.
func (s *Service) Lookup(ctx context.Context, code string) (domain.Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return domain.Coupon{}, fmt.Errorf("%w: coupon code is required", apperr.ErrInvalidInput)
	}
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, err
	}
	if c.Status == domain.StatusDeleted {
		return domain.Coupon{}, ErrNotFound
	}
	return c, nil
}

// Evaluate resolves code and returns the coupon with the discount it grants on subtotal now.
func (s *Service) Evaluate(ctx context.Context, code string, subtotal int64) (domain.Coupon, int64, error) {
	c, err := s.Lookup(ctx, code)
	if err != nil {
		return domain.Coupon{}, 0, err
	}
	d, err := domain.Evaluate(c, subtotal, s.now().UTC())
	if err != nil {
		return domain.Coupon{}, 0, err
	}
	return c, d, nil
}

func (s *Service) Create(ctx context.Context, in Input) (domain.Coupon, error) {
	c, err := s.build(in)
	if err != nil {
		return domain.Coupon{}, err
	}
	out, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Coupon{}, err
	}
	s.log.Info("coupon created", zap.String("coupon_id", out.ID), zap.String("code", out.Code))
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (domain.Coupon, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	if in.StartsAt == nil {
		in.StartsAt = &current.StartsAt
	}
	c, err := s.build(in)
	if err != nil {
		return domain.Coupon{}, err
	}
	if c.UsageLimit > 0 && c.UsageLimit < current.UsedCount {
		return domain.Coupon{}, fmt.Errorf("%w: usage limit below times already used (%d)", apperr.ErrInvalidInput, current.UsedCount)
	}
	c.ID = current.ID
	c.UsedCount = current.UsedCount
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, id, domain.StatusDeleted)
}

// ExpireStale deactivates coupons whose end date has passed.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("coupons expired", zap.Int64("count", n))
	}
	return n, nil
}

func (s *Service) build(in Input) (domain.Coupon, error) {
	c := domain.Coupon{
		Code:        NormalizeCode(in.Code),
		Description: strings.TrimSpace(in.Description),
		Type:        domain.Type(strings.ToLower(string(in.Type))),
		Value:       in.Value,
		MaxDiscount: in.MaxDiscount,
		MinPurchase: in.MinPurchase,
		EndsAt:      in.EndsAt,
		UsageLimit:  in.UsageLimit,
		Status:      in.Status,
	}
	if in.StartsAt != nil {
		c.StartsAt = in.StartsAt.UTC()
	} else {
		c.StartsAt = s.now().UTC()
	}
	if c.EndsAt != nil {
		end := c.EndsAt.UTC()
		c.EndsAt = &end
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}

	if !codePattern.MatchString(c.Code) {
		return domain.Coupon{}, fmt.Errorf("%w: code must be 3-32 letters, digits, '-' or '_'", apperr.ErrInvalidInput)
	}
	if err := domain.ValidateValue(c.Type, c.Value); err != nil {
		return domain.Coupon{}, err
	}
	if c.MaxDiscount < 0 || c.MinPurchase < 0 || c.UsageLimit < 0 {
		return domain.Coupon{}, fmt.Errorf("%w: max_discount, min_purchase and usage_limit cannot be negative", apperr.ErrInvalidInput)
	}
	if c.Type == domain.TypeFixed && c.MaxDiscount > 0 {
		return domain.Coupon{}, fmt.Errorf("%w: max_discount only applies to percent coupons", apperr.ErrInvalidInput)
	}
	if c.EndsAt != nil && !c.EndsAt.After(c.StartsAt) {
		return domain.Coupon{}, fmt.Errorf("%w: ends_at must be after starts_at", apperr.ErrInvalidInput)
	}
	if c.Status != domain.StatusActive && c.Status != domain.StatusInactive {
		return domain.Coupon{}, fmt.Errorf("%w: status must be active or inactive", apperr.ErrInvalidInput)
	}
	return c, nil
}
