package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/order/app"
	"github.com/dwikikusuma/techstore/internal/order/domain"
	"github.com/dwikikusuma/techstore/pkg/auth"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterCustomer(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	g.GET("", h.listMine)
	g.GET("/:id", h.getMine)
	g.POST("/:id/cancel", h.cancelMine)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/orders", guard)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id/status", h.setStatus)
}

// statusReq takes the status as a number or a name.
type statusReq struct {
	Status any `json:"status"`
}

func (h *Handler) listMine(c *gin.Context) {
	page := httpx.ParsePage(c)
	out, total, err := h.svc.ListMine(c.Request.Context(), auth.MustUserID(c), page.Limit, page.Offset())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.List(c, out, page, total)
}

func (h *Handler) getMine(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.GetMine(c.Request.Context(), auth.MustUserID(c), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) cancelMine(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.CancelMine(c.Request.Context(), auth.MustUserID(c), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) list(c *gin.Context) {
	page := httpx.ParsePage(c)
	f := domain.Filter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		f.Status = &st
	}
	out, total, err := h.svc.List(c.Request.Context(), f)
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

func (h *Handler) setStatus(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if !httpx.Bind(c, &req) {
		return
	}
	var raw string
	switch v := req.Status.(type) {
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		raw = v
	}
	st, err := domain.ParseStatus(raw)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	out, err := h.svc.SetStatus(c.Request.Context(), id, st)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}
