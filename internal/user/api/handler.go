package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/user/app"
	"github.com/dwikikusuma/techstore/internal/user/domain"
	"github.com/dwikikusuma/techstore/pkg/auth"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterCustomer mounts the self-service routes. rg must already require a signed-in user.
func (h *Handler) RegisterCustomer(rg *gin.RouterGroup) {
	me := rg.Group("/me")
	me.GET("", h.profile)
	me.PUT("", h.updateProfile)
	me.PUT("/password", h.changePassword)
	me.GET("/addresses", h.listAddresses)
	me.POST("/addresses", h.createAddress)
	me.PUT("/addresses/:id", h.updateAddress)
	me.DELETE("/addresses/:id", h.deleteAddress)
	me.POST("/addresses/:id/default", h.setDefaultAddress)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/users", guard)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.PUT("/:id/role", h.setRole)
	g.DELETE("/:id", h.delete)
}

type profileReq struct {
	Name  string `json:"name" binding:"required,max=120"`
	Phone string `json:"phone" binding:"max=20"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

type addressReq struct {
	Label      string `json:"label" binding:"max=40"`
	Recipient  string `json:"recipient" binding:"required,max=120"`
	Phone      string `json:"phone" binding:"required,max=20"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=80"`
	Province   string `json:"province" binding:"max=80"`
	PostalCode string `json:"postal_code" binding:"max=10"`
}

func (r addressReq) input() app.AddressInput {
	return app.AddressInput{
		Label:      r.Label,
		Recipient:  r.Recipient,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		Province:   r.Province,
		PostalCode: r.PostalCode,
	}
}

type createUserReq struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"`
	Status   string `json:"status" binding:"omitempty,oneof=active disabled"`
}

type updateUserReq struct {
	Name   string `json:"name" binding:"required,max=120"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone" binding:"max=20"`
	Status string `json:"status" binding:"omitempty,oneof=active disabled"`
}

type roleReq struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) profile(c *gin.Context) {
	out, err := h.svc.Profile(c.Request.Context(), auth.MustUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.UpdateProfile(c.Request.Context(), auth.MustUserID(c), req.Name, req.Phone)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req passwordReq
	if !httpx.Bind(c, &req) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), auth.MustUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "password updated")
}

func (h *Handler) listAddresses(c *gin.Context) {
	out, err := h.svc.ListAddresses(c.Request.Context(), auth.MustUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) createAddress(c *gin.Context) {
	var req addressReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.CreateAddress(c.Request.Context(), auth.MustUserID(c), req.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, out)
}

func (h *Handler) updateAddress(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	var req addressReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.UpdateAddress(c.Request.Context(), auth.MustUserID(c), id, req.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) deleteAddress(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAddress(c.Request.Context(), auth.MustUserID(c), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "address deleted")
}

func (h *Handler) setDefaultAddress(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetDefaultAddress(c.Request.Context(), auth.MustUserID(c), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "default address updated")
}

func (h *Handler) list(c *gin.Context) {
	page := httpx.ParsePage(c)
	out, total, err := h.svc.List(c.Request.Context(), domain.Filter{
		Query:  c.Query("q"),
		Status: domain.Status(strings.TrimSpace(c.Query("status"))),
		Role:   strings.TrimSpace(c.Query("role")),
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
	var req createUserReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.Create(c.Request.Context(), app.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Status:   domain.Status(req.Status),
	})
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
	var req updateUserReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, app.UpdateInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: domain.Status(req.Status),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) setRole(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	var req roleReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.SetRole(c.Request.Context(), id, req.Role)
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
	httpx.Message(c, "user deleted")
}
