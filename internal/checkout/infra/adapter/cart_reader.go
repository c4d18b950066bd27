package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/techstore/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/techstore/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) ActiveCart(ctx context.Context, userID string) (checkoutapp.Cart, error) {
	cart, err := r.svc.Active(ctx, userID)
	if err != nil {
		return checkoutapp.Cart{}, err
	}

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.ProductID,
			Quantity:  int64(it.Quantity),
		})
	}
	return checkoutapp.Cart{ID: cart.ID, Items: items}, nil
}
