package adapter

import (
	"context"
	"errors"

	roleapp "github.com/dwikikusuma/techstore/internal/role/app"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type RoleChecker struct {
	svc *roleapp.Service
}

func NewRoleChecker(svc *roleapp.Service) *RoleChecker {
	return &RoleChecker{svc: svc}
}

func (r *RoleChecker) Exists(ctx context.Context, name string) (bool, error) {
	_, err := r.svc.GetByName(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
