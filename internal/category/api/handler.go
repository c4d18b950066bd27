package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/category/app"
	"github.com/dwikikusuma/techstore/internal/category/domain"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/categories", h.tree)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/categories", guard)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type categoryReq struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" binding:"required,max=120"`
	Slug        string  `json:"slug" binding:"max=140"`
	Description string  `json:"description"`
	SortOrder   int     `json:"sort_order"`
	Status      string  `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r categoryReq) input() app.Input {
	return app.Input{
		ParentID:    r.ParentID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		SortOrder:   r.SortOrder,
		Status:      domain.Status(r.Status),
	}
}

func (h *Handler) tree(c *gin.Context) {
	out, err := h.svc.Tree(c.Request.Context())
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
	var req categoryReq
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
	var req categoryReq
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
	httpx.Message(c, "category deleted")
}
