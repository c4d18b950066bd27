package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwikikusuma/techstore/internal/category/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/cache"
	"github.com/dwikikusuma/techstore/pkg/slug"
)

const treeCacheKey = "categories:tree"

var (
	ErrNotFound  = fmt.Errorf("category %w", apperr.ErrNotFound)
	ErrSlugTaken = fmt.Errorf("%w: category slug already exists", apperr.ErrConflict)
	ErrInUse     = fmt.Errorf("%w: category still has active products or subcategories", apperr.ErrConflict)
	ErrCycle     = fmt.Errorf("%w: category cannot be nested under itself", apperr.ErrInvalidInput)
)

type Input struct {
	ParentID    *string
	Name        string
	Slug        string
	Description string
	SortOrder   int
	Status      domain.Status
}

type Service struct {
	repo  CategoryRepo
	cache cache.Cache
	ttl   time.Duration
}

func NewService(repo CategoryRepo, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

func (s *Service) Tree(ctx context.Context) ([]domain.Node, error) {
	return cache.GetOrLoad(ctx, s.cache, treeCacheKey, s.ttl, func(ctx context.Context) ([]domain.Node, error) {
		cats, err := s.repo.List(ctx, true)
		if err != nil {
			return nil, err
		}
		return domain.BuildTree(cats), nil
	})
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx, false)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Category, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Category{}, apperr.ErrInvalidInput
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if c.Status == domain.StatusDeleted {
		return domain.Category{}, ErrNotFound
	}
	return c, nil
}

// Exists reports whether id names a non-deleted category.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) Create(ctx context.Context, in Input) (domain.Category, error) {
	c, err := s.validate(ctx, "", in)
	if err != nil {
		return domain.Category{}, err
	}
	out, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}
	cache.Invalidate(ctx, s.cache, treeCacheKey)
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (domain.Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Category{}, err
	}
	c, err := s.validate(ctx, id, in)
	if err != nil {
		return domain.Category{}, err
	}
	c.ID = id
	out, err := s.repo.Update(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}
	cache.Invalidate(ctx, s.cache, treeCacheKey)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	children, err := s.repo.CountActiveChildren(ctx, id)
	if err != nil {
		return err
	}
	products, err := s.repo.CountActiveProducts(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 || products > 0 {
		return ErrInUse
	}
	if err := s.repo.SetStatus(ctx, id, domain.StatusDeleted); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, treeCacheKey)
	return nil
}

func (s *Service) validate(ctx context.Context, id string, in Input) (domain.Category, error) {
	c := domain.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
		SortOrder:   in.SortOrder,
		Status:      in.Status,
	}
	if c.Name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	if !slug.Valid(c.Slug) {
		return domain.Category{}, fmt.Errorf("%w: invalid slug %q", apperr.ErrInvalidInput, c.Slug)
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	if c.Status != domain.StatusActive && c.Status != domain.StatusInactive {
		return domain.Category{}, fmt.Errorf("%w: status must be active or inactive", apperr.ErrInvalidInput)
	}

	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) != "" {
		parent := strings.TrimSpace(*in.ParentID)
		if err := s.checkParent(ctx, id, parent); err != nil {
			return domain.Category{}, err
		}
		c.ParentID = &parent
	}
	return c, nil
}

// checkParent walks up from parent and fails if it reaches id.
func (s *Service) checkParent(ctx context.Context, id, parent string) error {
	seen := map[string]bool{}
	cur := parent
	for {
		if id != "" && cur == id {
			return ErrCycle
		}
		if seen[cur] {
			return ErrCycle
		}
		seen[cur] = true

		p, err := s.Get(ctx, cur)
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("%w: parent category %s does not exist", apperr.ErrInvalidInput, cur)
		}
		if err != nil {
			return err
		}
		if p.ParentID == nil {
			return nil
		}
		cur = *p.ParentID
	}
}
