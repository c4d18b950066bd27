package domain

import "time"

const (
	StatusActive     = "ACTIVE"
	StatusCheckedOut = "CHECKED_OUT"
)

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Quantity returns how many of productID the cart holds.
func (c Cart) Quantity(productID string) int {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// Line is a cart item enriched with the product's current state.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Currency  string `json:"currency"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
	Stock     int    `json:"stock"`
	Available bool   `json:"available"`
}

type View struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Items     []Line `json:"items"`
	ItemCount int    `json:"item_count"`
	Currency  string `json:"currency,omitempty"`
	Subtotal  int64  `json:"subtotal"`
}

// NewView totals the available lines. Lines for products that are gone or inactive stay in the
// view but do not count towards the subtotal.
func NewView(c Cart, lines []Line) View {
	v := View{ID: c.ID, Status: c.Status, Items: lines}
	for _, l := range lines {
		v.ItemCount += l.Quantity
		if !l.Available {
			continue
		}
		if v.Currency == "" {
			v.Currency = l.Currency
		}
		v.Subtotal += l.LineTotal
	}
	return v
}
