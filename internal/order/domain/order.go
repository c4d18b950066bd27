package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

// Status is stored as an integer. Any status may follow any other.
type Status int

const (
	StatusPending Status = iota
	StatusPaid
	StatusProcessing
	StatusShipped
	StatusDelivered
	StatusCancelled
)

var statusNames = [...]string{"PENDING", "PAID", "PROCESSING", "SHIPPED", "DELIVERED", "CANCELLED"}

func (s Status) Valid() bool { return s >= StatusPending && s <= StatusCancelled }

func (s Status) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return statusNames[s]
}

// ParseStatus accepts either the number or the name, case-insensitively.
func ParseStatus(v string) (Status, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		if s := Status(n); s.Valid() {
			return s, nil
		}
	}
	for i, name := range statusNames {
		if strings.EqualFold(v, name) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown order status %q", apperr.ErrInvalidInput, v)
}

type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// Order amounts are minor units of Currency. Shipping details are a snapshot taken at checkout.
type Order struct {
	ID              string     `json:"id"`
	Number          string     `json:"number"`
	UserID          string     `json:"user_id"`
	Status          Status     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	Currency        string     `json:"currency"`
	Subtotal        int64      `json:"subtotal"`
	Discount        int64      `json:"discount"`
	Shipping        int64      `json:"shipping"`
	Total           int64      `json:"total"`
	CouponID        *string    `json:"coupon_id,omitempty"`
	CouponCode      string     `json:"coupon_code,omitempty"`
	Recipient       string     `json:"recipient"`
	Phone           string     `json:"phone"`
	ShippingAddress string     `json:"shipping_address"`
	PaymentMethod   string     `json:"payment_method"`
	Note            string     `json:"note,omitempty"`
	Items           []Item     `json:"items"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate checks the arithmetic: every line total is unit × quantity, the subtotal is their
// sum and total = subtotal − discount + shipping.
func (o Order) Validate() error {
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order has no items", apperr.ErrInvalidInput)
	}
	var subtotal int64
	for i, it := range o.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", apperr.ErrInvalidInput, i)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d: unit price cannot be negative", apperr.ErrInvalidInput, i)
		}
		if it.LineTotal != it.UnitPrice*int64(it.Quantity) {
			return fmt.Errorf("%w: item %d: line total mismatch", apperr.ErrInvalidInput, i)
		}
		subtotal += it.LineTotal
	}
	switch {
	case o.Subtotal != subtotal:
		return fmt.Errorf("%w: subtotal mismatch", apperr.ErrInvalidInput)
	case o.Discount < 0 || o.Discount > o.Subtotal:
		return fmt.Errorf("%w: discount out of range", apperr.ErrInvalidInput)
	case o.Shipping < 0:
		return fmt.Errorf("%w: shipping cannot be negative", apperr.ErrInvalidInput)
	case o.Total != o.Subtotal-o.Discount+o.Shipping:
		return fmt.Errorf("%w: total mismatch", apperr.ErrInvalidInput)
	}
	return nil
}

// NewNumber returns a human-facing order number such as ORD-20250601-9F2C41AB.
func NewNumber(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(id[:8])
}

type Filter struct {
	Status *Status
	UserID string
	Limit  int
	Offset int
}

type PlacedEvent struct {
	OrderID    string    `json:"order_id"`
	Number     string    `json:"number"`
	UserID     string    `json:"user_id"`
	Currency   string    `json:"currency"`
	Total      int64     `json:"total"`
	CouponCode string    `json:"coupon_code,omitempty"`
	Items      int       `json:"items"`
	PlacedAt   time.Time `json:"placed_at"`
}

type StatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	Number    string    `json:"number"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}
