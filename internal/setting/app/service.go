package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dwikikusuma/techstore/internal/setting/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/cache"
)

const publicCacheKey = "settings:public"

var (
	ErrNotFound = fmt.Errorf("setting %w", apperr.ErrNotFound)

	keyPattern      = regexp.MustCompile(`^[a-z][a-z0-9_.]{1,63}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

type Service struct {
	repo  SettingRepo
	cache cache.Cache
	ttl   time.Duration
}

func NewService(repo SettingRepo, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// All merges stored settings over the defaults, sorted by key.
func (s *Service) All(ctx context.Context) ([]domain.Setting, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.Setting, len(stored)+len(domain.Defaults))
	for _, d := range domain.Defaults {
		byKey[d.Key] = d
	}
	for _, st := range stored {
		byKey[st.Key] = st
	}
	out := make([]domain.Setting, 0, len(byKey))
	for _, st := range byKey {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Service) Public(ctx context.Context) (map[string]string, error) {
	return cache.GetOrLoad(ctx, s.cache, publicCacheKey, s.ttl, func(ctx context.Context) (map[string]string, error) {
		all, err := s.All(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string)
		for _, st := range all {
			if st.Public {
				out[st.Key] = st.Value
			}
		}
		return out, nil
	})
}

func (s *Service) Upsert(ctx context.Context, batch []domain.Setting) error {
	if len(batch) == 0 {
		return fmt.Errorf("%w: no settings given", apperr.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(batch))
	for i := range batch {
		st := &batch[i]
		st.Key = strings.TrimSpace(st.Key)
		st.Value = strings.TrimSpace(st.Value)
		if !keyPattern.MatchString(st.Key) {
			return fmt.Errorf("%w: invalid key %q", apperr.ErrInvalidInput, st.Key)
		}
		if seen[st.Key] {
			return fmt.Errorf("%w: duplicate key %q", apperr.ErrInvalidInput, st.Key)
		}
		seen[st.Key] = true
		if len(st.Value) > 4096 {
			return fmt.Errorf("%w: value of %q too long", apperr.ErrInvalidInput, st.Key)
		}
		if domain.Numeric[st.Key] {
			if n, err := strconv.ParseInt(st.Value, 10, 64); err != nil || n < 0 {
				return fmt.Errorf("%w: %q must be a non-negative integer", apperr.ErrInvalidInput, st.Key)
			}
		}
		if st.Key == domain.KeyCurrency {
			st.Value = strings.ToUpper(st.Value)
			if !currencyPattern.MatchString(st.Value) {
				return fmt.Errorf("%w: currency must be a 3-letter code", apperr.ErrInvalidInput)
			}
		}
	}

	if err := s.repo.Upsert(ctx, batch); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, publicCacheKey)
	return nil
}

func (s *Service) String(ctx context.Context, key string) (string, error) {
	st, err := s.repo.Get(ctx, key)
	if err == nil {
		return st.Value, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return "", err
	}
	for _, d := range domain.Defaults {
		if d.Key == key {
			return d.Value, nil
		}
	}
	return "", ErrNotFound
}

func (s *Service) Int64(ctx context.Context, key string) (int64, error) {
	v, err := s.String(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return n, nil
}
