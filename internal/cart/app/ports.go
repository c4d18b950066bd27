package app

import (
	"context"

	"github.com/dwikikusuma/techstore/internal/cart/domain"
)

type CartRepo interface {
	// GetActive returns the user's ACTIVE cart or ErrNotFound.
	GetActive(ctx context.Context, userID string) (domain.Cart, error)
	// Create inserts an ACTIVE cart and its items in one transaction.
	Create(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	// AddItem adds item.Quantity to the line, creating it when missing.
	AddItem(ctx context.Context, cartID string, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, cartID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
}

type Product struct {
	ID        string
	Name      string
	Slug      string
	Currency  string
	UnitPrice int64
	Stock     int
	Active    bool
}

type ProductReader interface {
	Product(ctx context.Context, id string) (Product, error)
}
