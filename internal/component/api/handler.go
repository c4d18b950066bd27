package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/component/app"
	"github.com/dwikikusuma/techstore/internal/component/domain"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/components/:kind", h.list(false))
	rg.GET("/components/:kind/:id", h.get(false))
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/components/:kind", guard)
	g.GET("", h.list(true))
	g.POST("", h.create)
	g.GET("/:id", h.get(true))
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func kindParam(c *gin.Context) (domain.Kind, bool) {
	k, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		httpx.Fail(c, err)
		return "", false
	}
	return k, true
}

func (h *Handler) list(includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		out, err := h.svc.List(c.Request.Context(), kind, includeInactive)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, out)
	}
}

func (h *Handler) get(includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := kindParam(c)
		if !ok {
			return
		}
		id, ok := httpx.Param(c, "id")
		if !ok {
			return
		}
		out, err := h.svc.Get(c.Request.Context(), kind, id, includeInactive)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, out)
	}
}

// decode binds the body into a fresh component of the path's kind.
func decode(c *gin.Context) (domain.Component, bool) {
	kind, ok := kindParam(c)
	if !ok {
		return nil, false
	}
	comp, err := domain.New(kind)
	if err != nil {
		httpx.Fail(c, err)
		return nil, false
	}
	if !httpx.Bind(c, comp) {
		return nil, false
	}
	return comp, true
}

func (h *Handler) create(c *gin.Context) {
	comp, ok := decode(c)
	if !ok {
		return
	}
	out, err := h.svc.Create(c.Request.Context(), comp)
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
	comp, ok := decode(c)
	if !ok {
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, comp)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) delete(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), kind, id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "component deleted")
}
