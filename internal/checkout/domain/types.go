package domain

import "time"

type QuoteLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

type AppliedCoupon struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
}

// Quote prices the active cart. All amounts are minor units of Currency.
type Quote struct {
	CartID   string         `json:"cart_id"`
	Currency string         `json:"currency"`
	Lines    []QuoteLine    `json:"lines"`
	Subtotal int64          `json:"subtotal"`
	Discount int64          `json:"discount"`
	Shipping int64          `json:"shipping"`
	Total    int64          `json:"total"`
	Coupon   *AppliedCoupon `json:"coupon,omitempty"`
}

// ShippingFee waives fee when a positive threshold is met by the discounted subtotal.
func ShippingFee(fee, threshold, subtotal, discount int64) int64 {
	if threshold > 0 && subtotal-discount >= threshold {
		return 0
	}
	if fee < 0 {
		return 0
	}
	return fee
}

type PlaceRequest struct {
	AddressID     string
	CouponCode    string
	PaymentMethod string
	Note          string
}

// Receipt summarises a placed order.
type Receipt struct {
	OrderID   string    `json:"order_id"`
	Number    string    `json:"number"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}
