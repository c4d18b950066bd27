package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dwikikusuma/techstore/internal/role/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/cache"
)

var (
	ErrNotFound  = fmt.Errorf("role %w", apperr.ErrNotFound)
	ErrBuiltin   = fmt.Errorf("%w: built-in roles cannot be deleted", apperr.ErrConflict)
	ErrInUse     = fmt.Errorf("%w: role is assigned to users", apperr.ErrConflict)
	ErrNameTaken = fmt.Errorf("%w: role name already exists", apperr.ErrConflict)

	namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)
)

type Service struct {
	repo  RoleRepo
	cache cache.Cache
}

func NewService(repo RoleRepo, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

func permKey(name string) string { return "roles:perm:" + name }

func (s *Service) List(ctx context.Context) ([]domain.Role, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Role, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Role{}, apperr.ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.Role, error) {
	return s.repo.GetByName(ctx, strings.ToLower(strings.TrimSpace(name)))
}

// Permissions satisfies auth.PermissionResolver.
func (s *Service) Permissions(ctx context.Context, name string) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, permKey(name), 30*time.Second, func(ctx context.Context) ([]string, error) {
		r, err := s.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return r.Permissions, nil
	})
}

func (s *Service) Create(ctx context.Context, name, desc string, perms []string) (domain.Role, error) {
	r, err := normalize(domain.Role{Name: name, Description: desc, Permissions: perms})
	if err != nil {
		return domain.Role{}, err
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Update(ctx context.Context, id, name, desc string, perms []string) (domain.Role, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Role{}, err
	}
	r, err := normalize(domain.Role{ID: id, Name: name, Description: desc, Permissions: perms})
	if err != nil {
		return domain.Role{}, err
	}
	if domain.IsBuiltin(current.Name) && r.Name != current.Name {
		return domain.Role{}, fmt.Errorf("%w: built-in roles cannot be renamed", apperr.ErrConflict)
	}
	updated, err := s.repo.Update(ctx, r)
	if err != nil {
		return domain.Role{}, err
	}
	cache.Invalidate(ctx, s.cache, permKey(current.Name), permKey(updated.Name))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if domain.IsBuiltin(r.Name) {
		return ErrBuiltin
	}
	n, err := s.repo.CountUsers(ctx, r.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, permKey(r.Name))
	return nil
}

// EnsureDefaults creates the admin and customer roles on a fresh database.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	seeds := []domain.Role{
		{Name: domain.AdminRole, Description: "Full back-office access", Permissions: []string{domain.PermAll}},
		{Name: domain.CustomerRole, Description: "Storefront customer", Permissions: []string{}},
	}
	for _, seed := range seeds {
		_, err := s.repo.GetByName(ctx, seed.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if _, err := s.repo.Create(ctx, seed); err != nil && !errors.Is(err, apperr.ErrConflict) {
			return fmt.Errorf("seed role %s: %w", seed.Name, err)
		}
	}
	return nil
}

func normalize(r domain.Role) (domain.Role, error) {
	r.Name = strings.ToLower(strings.TrimSpace(r.Name))
	r.Description = strings.TrimSpace(r.Description)
	if !namePattern.MatchString(r.Name) {
		return domain.Role{}, fmt.Errorf("%w: role name must be 2-32 lowercase letters, digits, _ or -", apperr.ErrInvalidInput)
	}

	set := make(map[string]bool, len(r.Permissions))
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		p = strings.TrimSpace(p)
		if !domain.KnownPermissions[p] {
			return domain.Role{}, fmt.Errorf("%w: unknown permission %q", apperr.ErrInvalidInput, p)
		}
		if !set[p] {
			set[p] = true
			perms = append(perms, p)
		}
	}
	sort.Strings(perms)
	r.Permissions = perms
	return r, nil
}
