package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/checkout/domain"
	settingdomain "github.com/dwikikusuma/techstore/internal/setting/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type fakeCart struct {
	cart Cart
	err  error
}

func (f fakeCart) ActiveCart(context.Context, string) (Cart, error) { return f.cart, f.err }

type fakeCatalog map[string]Product

func (f fakeCatalog) GetProduct(_ context.Context, id string) (Product, error) {
	p, ok := f[id]
	if !ok {
		return Product{}, apperr.ErrNotFound
	}
	return p, nil
}

type fakeCoupons struct {
	percent int64
}

func (f fakeCoupons) Evaluate(_ context.Context, code string, subtotal int64) (Coupon, int64, error) {
	if code != "HEMAT10" {
		return Coupon{}, 0, fmt.Errorf("coupon %w", apperr.ErrNotFound)
	}
	return Coupon{ID: "c-1", Code: code}, subtotal * f.percent / 100, nil
}

type fakeSettings map[string]string

func (f fakeSettings) String(_ context.Context, key string) (string, error) {
	if v, ok := f[key]; ok {
		return v, nil
	}
	if key == settingdomain.KeyCurrency {
		return "IDR", nil
	}
	return "", nil
}

func (f fakeSettings) Int64(ctx context.Context, key string) (int64, error) {
	v, _ := f.String(ctx, key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

type fakeAddresses struct{}

func (fakeAddresses) Resolve(_ context.Context, _, id string) (Address, error) {
	if id == "missing" {
		return Address{}, fmt.Errorf("address %w", apperr.ErrNotFound)
	}
	return Address{Recipient: "Ani", Phone: "0812", Line: "Jl. Merdeka 1, Bandung"}, nil
}

type fakeOrders struct {
	got *Draft
	err error
}

func (f *fakeOrders) Place(_ context.Context, d Draft) (domain.Receipt, error) {
	if f.err != nil {
		return domain.Receipt{}, f.err
	}
	f.got = &d
	return domain.Receipt{OrderID: "o-1", Number: "ORD-1", Status: "PENDING", Currency: d.Quote.Currency, Total: d.Quote.Total}, nil
}

func newTestService(cart Cart, catalog fakeCatalog, settings fakeSettings) (*Service, *fakeOrders) {
	orders := &fakeOrders{}
	return NewService(Deps{
		Cart:      fakeCart{cart: cart},
		Catalog:   catalog,
		Coupons:   fakeCoupons{percent: 10},
		Settings:  settings,
		Addresses: fakeAddresses{},
		Orders:    orders,
	}, 2, zap.NewNop()), orders
}

var catalog = fakeCatalog{
	"laptop": {ID: "laptop", Name: "Legion 5", Currency: "IDR", Amount: 20_000_000, Stock: 3, Active: true},
	"mouse":  {ID: "mouse", Name: "Mouse", Currency: "IDR", Amount: 150_000, Stock: 10, Active: true},
	"draft":  {ID: "draft", Name: "Draft", Currency: "IDR", Amount: 1, Stock: 10},
	"usd":    {ID: "usd", Name: "Import", Currency: "USD", Amount: 100, Stock: 10, Active: true},
}

var shipping = fakeSettings{settingdomain.KeyShippingFee: "15000"}

func TestQuote(t *testing.T) {
	cart := Cart{ID: "cart-1", Items: []CartItem{{ProductID: "laptop", Quantity: 1}, {ProductID: "mouse", Quantity: 2}}}
	svc, _ := newTestService(cart, catalog, shipping)

	q, err := svc.Quote(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", q.CartID)
	assert.Equal(t, "IDR", q.Currency)
	require.Len(t, q.Lines, 2)
	assert.Equal(t, "laptop", q.Lines[0].ProductID)
	assert.Equal(t, int64(300_000), q.Lines[1].LineTotal)
	assert.Equal(t, int64(20_300_000), q.Subtotal)
	assert.Equal(t, int64(15_000), q.Shipping)
	assert.Equal(t, int64(20_315_000), q.Total)
	assert.Nil(t, q.Coupon)

	q, err = svc.Quote(context.Background(), "u1", "HEMAT10")
	require.NoError(t, err)
	assert.Equal(t, int64(2_030_000), q.Discount)
	require.NotNil(t, q.Coupon)
	assert.Equal(t, q.Subtotal-q.Discount+q.Shipping, q.Total)

	_, err = svc.Quote(context.Background(), "u1", "NOPE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQuoteFreeShipping(t *testing.T) {
	cart := Cart{ID: "cart-1", Items: []CartItem{{ProductID: "mouse", Quantity: 4}}}
	settings := fakeSettings{settingdomain.KeyShippingFee: "15000", settingdomain.KeyFreeShippingThreshold: "600000"}
	svc, _ := newTestService(cart, catalog, settings)

	q, err := svc.Quote(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Zero(t, q.Shipping)
	assert.Equal(t, int64(600_000), q.Total)

	q, err = svc.Quote(context.Background(), "u1", "HEMAT10")
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), q.Shipping, "discount takes the cart below the threshold")
}

func TestQuoteRejects(t *testing.T) {
	cases := map[string]struct {
		items []CartItem
		want  error
	}{
		"empty":         {nil, ErrEmptyCart},
		"inactive":      {[]CartItem{{ProductID: "draft", Quantity: 1}}, ErrProductUnavailable},
		"gone":          {[]CartItem{{ProductID: "ghost", Quantity: 1}}, ErrProductUnavailable},
		"over stock":    {[]CartItem{{ProductID: "laptop", Quantity: 4}}, ErrInsufficientStock},
		"mixed money":   {[]CartItem{{ProductID: "laptop", Quantity: 1}, {ProductID: "usd", Quantity: 1}}, ErrMixedCurrency},
		"foreign money": {[]CartItem{{ProductID: "usd", Quantity: 1}}, ErrCurrencyMismatch},
		"zero qty":      {[]CartItem{{ProductID: "mouse", Quantity: 0}}, apperr.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(Cart{ID: "c", Items: tc.items}, catalog, shipping)
			_, err := svc.Quote(context.Background(), "u1", "")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestQuoteFollowsStoreCurrency(t *testing.T) {
	cart := Cart{ID: "cart-1", Items: []CartItem{{ProductID: "usd", Quantity: 2}}}
	settings := fakeSettings{settingdomain.KeyCurrency: "usd", settingdomain.KeyShippingFee: "5"}
	svc, _ := newTestService(cart, catalog, settings)

	q, err := svc.Quote(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, int64(205), q.Total)

	cart = Cart{ID: "cart-2", Items: []CartItem{{ProductID: "mouse", Quantity: 1}}}
	svc, _ = newTestService(cart, catalog, settings)
	_, err = svc.Quote(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestPlaceOrder(t *testing.T) {
	cart := Cart{ID: "cart-1", Items: []CartItem{{ProductID: "mouse", Quantity: 2}}}
	svc, orders := newTestService(cart, catalog, shipping)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, "u1", domain.PlaceRequest{PaymentMethod: "barter"})
	assert.ErrorIs(t, err, ErrPaymentMethod)
	_, err = svc.PlaceOrder(ctx, "u1", domain.PlaceRequest{PaymentMethod: "cod", AddressID: "missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	r, err := svc.PlaceOrder(ctx, "u1", domain.PlaceRequest{PaymentMethod: " COD ", CouponCode: "HEMAT10", Note: " ring twice "})
	require.NoError(t, err)
	assert.Equal(t, "o-1", r.OrderID)
	assert.Equal(t, int64(285_000), r.Total)

	require.NotNil(t, orders.got)
	assert.Equal(t, "u1", orders.got.UserID)
	assert.Equal(t, "cod", orders.got.Request.PaymentMethod)
	assert.Equal(t, "ring twice", orders.got.Request.Note)
	assert.Equal(t, "Jl. Merdeka 1, Bandung", orders.got.Address.Line)
	assert.Equal(t, "cart-1", orders.got.Quote.CartID)

	orders.err = errors.New("db down")
	_, err = svc.PlaceOrder(ctx, "u1", domain.PlaceRequest{PaymentMethod: "cod"})
	assert.Error(t, err)
}
