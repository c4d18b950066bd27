package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dwikikusuma/techstore/internal/banner/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/cache"
)

const liveCacheKey = "banners:live"

var ErrNotFound = fmt.Errorf("banner %w", apperr.ErrNotFound)

type Input struct {
	Title    string
	Caption  string
	ImageURL string
	LinkURL  string
	Position int
	StartsAt *time.Time
	EndsAt   *time.Time
	Status   domain.Status
}

type Service struct {
	repo   BannerRepo
	cache  cache.Cache
	ttl    time.Duration
	now    func() time.Time
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func NewService(repo BannerRepo, c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		now:    time.Now,
		strict: bluemonday.StrictPolicy(),
		ugc:    bluemonday.UGCPolicy(),
	}
}

// Active returns the banners live right now. The cached list is refiltered on every call so a
// window that closes mid-TTL is not served.
func (s *Service) Active(ctx context.Context) ([]domain.Banner, error) {
	now := s.now().UTC()
	cached, err := cache.GetOrLoad(ctx, s.cache, liveCacheKey, s.ttl, func(ctx context.Context) ([]domain.Banner, error) {
		return s.repo.Live(ctx, now)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Banner, 0, len(cached))
	for _, b := range cached {
		if b.LiveAt(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Banner, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Banner, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Banner{}, apperr.ErrInvalidInput
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Banner{}, err
	}
	if b.Status == domain.StatusDeleted {
		return domain.Banner{}, ErrNotFound
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, in Input) (domain.Banner, error) {
	b, err := s.build(in)
	if err != nil {
		return domain.Banner{}, err
	}
	out, err := s.repo.Create(ctx, b)
	if err != nil {
		return domain.Banner{}, err
	}
	cache.Invalidate(ctx, s.cache, liveCacheKey)
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (domain.Banner, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Banner{}, err
	}
	b, err := s.build(in)
	if err != nil {
		return domain.Banner{}, err
	}
	b.ID = id
	out, err := s.repo.Update(ctx, b)
	if err != nil {
		return domain.Banner{}, err
	}
	cache.Invalidate(ctx, s.cache, liveCacheKey)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, domain.StatusDeleted); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, liveCacheKey)
	return nil
}

func (s *Service) build(in Input) (domain.Banner, error) {
	b := domain.Banner{
		Title:    strings.TrimSpace(s.strict.Sanitize(in.Title)),
		Caption:  strings.TrimSpace(s.ugc.Sanitize(in.Caption)),
		ImageURL: strings.TrimSpace(in.ImageURL),
		LinkURL:  strings.TrimSpace(in.LinkURL),
		Position: in.Position,
		Status:   in.Status,
	}
	if b.Title == "" {
		return domain.Banner{}, fmt.Errorf("%w: title is required", apperr.ErrInvalidInput)
	}
	if !validURL(b.ImageURL, false) {
		return domain.Banner{}, fmt.Errorf("%w: image_url must be an absolute http(s) URL", apperr.ErrInvalidInput)
	}
	if !validURL(b.LinkURL, true) {
		return domain.Banner{}, fmt.Errorf("%w: link_url must be a path or http(s) URL", apperr.ErrInvalidInput)
	}
	if b.Position < 0 {
		return domain.Banner{}, fmt.Errorf("%w: position cannot be negative", apperr.ErrInvalidInput)
	}
	switch b.Status {
	case "":
		b.Status = domain.StatusActive
	case domain.StatusActive, domain.StatusInactive:
	default:
		return domain.Banner{}, fmt.Errorf("%w: status must be active or inactive", apperr.ErrInvalidInput)
	}
	if in.StartsAt != nil {
		t := in.StartsAt.UTC()
		b.StartsAt = &t
	}
	if in.EndsAt != nil {
		t := in.EndsAt.UTC()
		b.EndsAt = &t
	}
	if b.StartsAt != nil && b.EndsAt != nil && !b.EndsAt.After(*b.StartsAt) {
		return domain.Banner{}, fmt.Errorf("%w: ends_at must be after starts_at", apperr.ErrInvalidInput)
	}
	return b, nil
}

// validURL accepts absolute http(s) URLs, and site-relative paths when relative is set.
// An empty link is allowed only when relative is set.
func validURL(raw string, relative bool) bool {
	if raw == "" {
		return relative
	}
	if relative && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
