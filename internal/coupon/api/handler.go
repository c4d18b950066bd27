package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/techstore/internal/coupon/app"
	"github.com/dwikikusuma/techstore/internal/coupon/domain"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/coupons", guard)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type couponReq struct {
	Code        string          `json:"code" binding:"required,max=32"`
	Description string          `json:"description" binding:"max=500"`
	Type        string          `json:"type" binding:"required,oneof=percent fixed"`
	Value       decimal.Decimal `json:"value"`
	MaxDiscount int64           `json:"max_discount" binding:"min=0"`
	MinPurchase int64           `json:"min_purchase" binding:"min=0"`
	StartsAt    *time.Time      `json:"starts_at"`
	EndsAt      *time.Time      `json:"ends_at"`
	UsageLimit  int             `json:"usage_limit" binding:"min=0"`
	Status      string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r couponReq) input() app.Input {
	return app.Input{
		Code:        r.Code,
		Description: r.Description,
		Type:        domain.Type(r.Type),
		Value:       r.Value,
		MaxDiscount: r.MaxDiscount,
		MinPurchase: r.MinPurchase,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		UsageLimit:  r.UsageLimit,
		Status:      domain.Status(r.Status),
	}
}

func (h *Handler) list(c *gin.Context) {
	page := httpx.ParsePage(c)
	out, total, err := h.svc.List(c.Request.Context(), app.Filter{
		Query:  c.Query("q"),
		Status: domain.Status(strings.TrimSpace(c.Query("status"))),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.List(c, out, page, total)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var req couponReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, out)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	var req couponReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "coupon deleted")
}
