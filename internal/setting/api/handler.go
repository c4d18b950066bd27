package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/setting/app"
	"github.com/dwikikusuma/techstore/internal/setting/domain"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/settings", h.public)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/settings", guard)
	g.GET("", h.all)
	g.PUT("", h.upsert)
}

func (h *Handler) public(c *gin.Context) {
	out, err := h.svc.Public(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) all(c *gin.Context) {
	out, err := h.svc.All(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

type settingReq struct {
	Key    string `json:"key" binding:"required"`
	Value  string `json:"value"`
	Public bool   `json:"public"`
}

type upsertReq struct {
	Settings []settingReq `json:"settings" binding:"required,min=1,dive"`
}

func (h *Handler) upsert(c *gin.Context) {
	var req upsertReq
	if !httpx.Bind(c, &req) {
		return
	}
	batch := make([]domain.Setting, 0, len(req.Settings))
	for _, s := range req.Settings {
		batch = append(batch, domain.Setting{Key: s.Key, Value: s.Value, Public: s.Public})
	}
	if err := h.svc.Upsert(c.Request.Context(), batch); err != nil {
		httpx.Fail(c, err)
		return
	}
	h.all(c)
}
