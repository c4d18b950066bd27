package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/banner/app"
	"github.com/dwikikusuma/techstore/internal/banner/domain"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/banners", h.active)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/banners", guard)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type bannerReq struct {
	Title    string     `json:"title" binding:"required,max=160"`
	Caption  string     `json:"caption"`
	ImageURL string     `json:"image_url" binding:"required,max=500"`
	LinkURL  string     `json:"link_url" binding:"max=500"`
	Position int        `json:"position" binding:"min=0"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Status   string     `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r bannerReq) input() app.Input {
	return app.Input{
		Title:    r.Title,
		Caption:  r.Caption,
		ImageURL: r.ImageURL,
		LinkURL:  r.LinkURL,
		Position: r.Position,
		StartsAt: r.StartsAt,
		EndsAt:   r.EndsAt,
		Status:   domain.Status(r.Status),
	}
}

func (h *Handler) active(c *gin.Context) {
	out, err := h.svc.Active(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
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
	var req bannerReq
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
	var req bannerReq
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
	httpx.Message(c, "banner deleted")
}
