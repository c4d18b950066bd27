package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/checkout/domain"
)

type CartItem struct {
	ProductID string
	Quantity  int64
}

type Cart struct {
	ID    string
	Items []CartItem
}

type CartReader interface {
	ActiveCart(ctx context.Context, userID string) (Cart, error)
}

type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64
	Stock    int64
	Active   bool
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Coupon struct {
	ID   string
	Code string
}

type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, subtotal int64) (Coupon, int64, error)
}

type SettingsReader interface {
	String(ctx context.Context, key string) (string, error)
	Int64(ctx context.Context, key string) (int64, error)
}

type Address struct {
	Recipient string
	Phone     string
	Line      string
}

type AddressResolver interface {
	// Resolve returns the user's address id, or their default address when id is empty.
	Resolve(ctx context.Context, userID, id string) (Address, error)
}

// Draft is a priced order ready to be persisted against Quote.CartID.
type Draft struct {
	UserID  string
	Quote   domain.Quote
	Address Address
	Request domain.PlaceRequest
}

type OrderPlacer interface {
	Place(ctx context.Context, d Draft) (domain.Receipt, error)
}
