package adapter

import (
	"context"
	"errors"

	"github.com/dwikikusuma/techstore/internal/catalog/domain"
	componentapp "github.com/dwikikusuma/techstore/internal/component/app"
	componentdomain "github.com/dwikikusuma/techstore/internal/component/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type ComponentReader struct {
	svc *componentapp.Service
}

func NewComponentReader(svc *componentapp.Service) *ComponentReader {
	return &ComponentReader{svc: svc}
}

// Exists accepts inactive components so a product can be staged before its parts go live.
func (r *ComponentReader) Exists(ctx context.Context, kind, id string) (bool, error) {
	k, err := componentdomain.ParseKind(kind)
	if err != nil {
		return false, err
	}
	_, err = r.svc.Get(ctx, k, id, true)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *ComponentReader) Describe(ctx context.Context, kind, id string) (domain.ComponentSpec, error) {
	k, err := componentdomain.ParseKind(kind)
	if err != nil {
		return domain.ComponentSpec{}, err
	}
	b, err := r.svc.Describe(ctx, k, id)
	if err != nil {
		return domain.ComponentSpec{}, err
	}
	return domain.ComponentSpec{
		Kind:    string(b.Kind),
		ID:      b.ID,
		Name:    b.Name,
		Brand:   b.Brand,
		Summary: b.Summary,
	}, nil
}
