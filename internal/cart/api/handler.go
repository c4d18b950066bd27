package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/cart/app"
	"github.com/dwikikusuma/techstore/internal/cart/domain"
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
	g := rg.Group("/cart")
	g.GET("", h.view)
	g.POST("", h.create)
	g.DELETE("", h.clear)
	g.POST("/items", h.addItem)
	g.PUT("/items/:product_id", h.setQuantity)
	g.DELETE("/items/:product_id", h.removeItem)
}

type itemReq struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
}

type createReq struct {
	Items []itemReq `json:"items" binding:"dive"`
}

type quantityReq struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999"`
}

func (h *Handler) view(c *gin.Context) {
	out, err := h.svc.View(c.Request.Context(), auth.MustUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if !httpx.Bind(c, &req) {
		return
	}
	items := make([]domain.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	out, err := h.svc.CreateCart(c.Request.Context(), auth.MustUserID(c), items)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, out)
}

func (h *Handler) addItem(c *gin.Context) {
	var req itemReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.AddItem(c.Request.Context(), auth.MustUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) setQuantity(c *gin.Context) {
	productID, ok := httpx.Param(c, "product_id")
	if !ok {
		return
	}
	var req quantityReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.SetItemQuantity(c.Request.Context(), auth.MustUserID(c), productID, *req.Quantity)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) removeItem(c *gin.Context) {
	productID, ok := httpx.Param(c, "product_id")
	if !ok {
		return
	}
	out, err := h.svc.RemoveItem(c.Request.Context(), auth.MustUserID(c), productID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), auth.MustUserID(c)); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "cart cleared")
}
