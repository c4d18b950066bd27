package adapter

import (
	"context"

	categoryapp "github.com/dwikikusuma/techstore/internal/category/app"
)

type CategoryChecker struct {
	svc *categoryapp.Service
}

func NewCategoryChecker(svc *categoryapp.Service) *CategoryChecker {
	return &CategoryChecker{svc: svc}
}

func (c *CategoryChecker) Exists(ctx context.Context, id string) (bool, error) {
	return c.svc.Exists(ctx, id)
}
