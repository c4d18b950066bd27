package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/checkout/app"
	"github.com/dwikikusuma/techstore/internal/checkout/domain"
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
	rg.POST("/cart/coupon", h.applyCoupon)
	rg.POST("/checkout/quote", h.quote)
	rg.POST("/checkout", h.placeOrder)
}

type couponReq struct {
	Code string `json:"code" binding:"required,max=32"`
}

type quoteReq struct {
	CouponCode string `json:"coupon_code" binding:"max=32"`
}

type placeReq struct {
	AddressID     string `json:"address_id" binding:"omitempty,uuid"`
	CouponCode    string `json:"coupon_code" binding:"max=32"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Note          string `json:"note" binding:"max=500"`
}

// applyCoupon previews the cart with a coupon. Nothing is stored; the code is sent again at
// checkout.
func (h *Handler) applyCoupon(c *gin.Context) {
	var req couponReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.Quote(c.Request.Context(), auth.MustUserID(c), req.Code)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) quote(c *gin.Context) {
	var req quoteReq
	if c.Request.ContentLength != 0 && !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.Quote(c.Request.Context(), auth.MustUserID(c), req.CouponCode)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.PlaceOrder(c.Request.Context(), auth.MustUserID(c), domain.PlaceRequest{
		AddressID:     req.AddressID,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, out)
}
