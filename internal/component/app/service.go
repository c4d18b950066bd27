package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwikikusuma/techstore/internal/component/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

var ErrNotFound = fmt.Errorf("component %w", apperr.ErrNotFound)

type Service struct {
	repos map[domain.Kind]ComponentRepo
}

func NewService(repos map[domain.Kind]ComponentRepo) *Service {
	return &Service{repos: repos}
}

func (s *Service) repo(kind domain.Kind) (ComponentRepo, error) {
	r, ok := s.repos[kind]
	if !ok {
		return nil, domain.ErrUnknownKind
	}
	return r, nil
}

// List returns active components of kind, or every non-deleted one when includeInactive is set.
func (s *Service) List(ctx context.Context, kind domain.Kind, includeInactive bool) ([]domain.Component, error) {
	r, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	return r.List(ctx, includeInactive)
}

func (s *Service) Get(ctx context.Context, kind domain.Kind, id string, includeInactive bool) (domain.Component, error) {
	r, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperr.ErrInvalidInput
	}
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch c.Base().Status {
	case domain.StatusDeleted:
		return nil, ErrNotFound
	case domain.StatusInactive:
		if !includeInactive {
			return nil, ErrNotFound
		}
	}
	return c, nil
}

// Describe returns the one-line form of an active component.
func (s *Service) Describe(ctx context.Context, kind domain.Kind, id string) (domain.Brief, error) {
	c, err := s.Get(ctx, kind, id, false)
	if err != nil {
		return domain.Brief{}, err
	}
	return domain.BriefOf(c), nil
}

func (s *Service) Create(ctx context.Context, c domain.Component) (domain.Component, error) {
	r, err := s.repo(c.Kind())
	if err != nil {
		return nil, err
	}
	c.Base().ID = ""
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return r.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id string, c domain.Component) (domain.Component, error) {
	current, err := s.Get(ctx, c.Kind(), id, true)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m := c.Base()
	m.ID = id
	m.CreatedAt = current.Base().CreatedAt
	r, _ := s.repo(c.Kind())
	return r.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if _, err := s.Get(ctx, kind, id, true); err != nil {
		return err
	}
	r, _ := s.repo(kind)
	return r.SetStatus(ctx, id, domain.StatusDeleted)
}
