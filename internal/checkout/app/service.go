package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/techstore/internal/checkout/domain"
	settingdomain "github.com/dwikikusuma/techstore/internal/setting/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

var (
	ErrEmptyCart          = fmt.Errorf("%w: cart is empty", apperr.ErrInvalidInput)
	ErrProductUnavailable = fmt.Errorf("%w: product is not available", apperr.ErrInvalidInput)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", apperr.ErrConflict)
	ErrMixedCurrency      = fmt.Errorf("%w: cart mixes currencies", apperr.ErrInvalidInput)
	ErrCurrencyMismatch   = fmt.Errorf("%w: cart is not priced in the store currency", apperr.ErrInvalidInput)
	ErrPaymentMethod      = fmt.Errorf("%w: unsupported payment method", apperr.ErrInvalidInput)
	ErrNoAddress          = fmt.Errorf("%w: add a delivery address first", apperr.ErrInvalidInput)
)

var PaymentMethods = map[string]bool{
	"bank_transfer": true,
	"e_wallet":      true,
	"credit_card":   true,
	"cod":           true,
}

type Deps struct {
	Cart      CartReader
	Catalog   CatalogReader
	Coupons   CouponEvaluator
	Settings  SettingsReader
	Addresses AddressResolver
	Orders    OrderPlacer
}

type Service struct {
	Deps

	maxConcurrent int
	log           *zap.Logger
}

func NewService(d Deps, maxConcurrent int, log *zap.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		Deps:          d,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Quote prices the user's active cart, applying couponCode when it is not empty. Nothing is
// persisted.
func (s *Service) Quote(ctx context.Context, userID, couponCode string) (domain.Quote, error) {
	cart, err := s.Cart.ActiveCart(ctx, userID)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(cart.Items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(cart.Items))
	currencies := make([]string, len(cart.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range cart.Items {
		g.Go(func() error {
			it := cart.Items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be greater than zero: %d", apperr.ErrInvalidInput, it.Quantity)
			}

			product, err := s.Catalog.GetProduct(gctx, it.ProductID)
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, it.ProductID)
			}
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}
			if !product.Active {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
			}
			if it.Quantity > product.Stock {
				return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, product.Name, product.Stock)
			}

			lines[idx] = domain.QuoteLine{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  int(it.Quantity),
				UnitPrice: product.Amount,
				LineTotal: product.Amount * it.Quantity,
			}
			currencies[idx] = product.Currency
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{CartID: cart.ID, Currency: currencies[0], Lines: lines}
	for i, line := range lines {
		if currencies[i] != quote.Currency {
			return domain.Quote{}, ErrMixedCurrency
		}
		quote.Subtotal += line.LineTotal
	}
	storeCurrency, err := s.Settings.String(ctx, settingdomain.KeyCurrency)
	if err != nil {
		return domain.Quote{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(storeCurrency), quote.Currency) {
		return domain.Quote{}, fmt.Errorf("%w: %s, store sells in %s", ErrCurrencyMismatch, quote.Currency, storeCurrency)
	}

	if code := strings.TrimSpace(couponCode); code != "" {
		c, discount, err := s.Coupons.Evaluate(ctx, code, quote.Subtotal)
		if err != nil {
			return domain.Quote{}, err
		}
		quote.Discount = discount
		quote.Coupon = &domain.AppliedCoupon{ID: c.ID, Code: c.Code, Discount: discount}
	}

	fee, err := s.Settings.Int64(ctx, settingdomain.KeyShippingFee)
	if err != nil {
		return domain.Quote{}, err
	}
	threshold, err := s.Settings.Int64(ctx, settingdomain.KeyFreeShippingThreshold)
	if err != nil {
		return domain.Quote{}, err
	}
	quote.Shipping = domain.ShippingFee(fee, threshold, quote.Subtotal, quote.Discount)
	quote.Total = quote.Subtotal - quote.Discount + quote.Shipping

	return quote, nil
}

// PlaceOrder re-quotes the cart and hands the priced order to the order module.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req domain.PlaceRequest) (domain.Receipt, error) {
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if !PaymentMethods[req.PaymentMethod] {
		return domain.Receipt{}, ErrPaymentMethod
	}
	req.Note = strings.TrimSpace(req.Note)
	if len(req.Note) > 500 {
		return domain.Receipt{}, fmt.Errorf("%w: note is limited to 500 characters", apperr.ErrInvalidInput)
	}

	quote, err := s.Quote(ctx, userID, req.CouponCode)
	if err != nil {
		return domain.Receipt{}, err
	}
	addr, err := s.Addresses.Resolve(ctx, userID, strings.TrimSpace(req.AddressID))
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt, err := s.Orders.Place(ctx, Draft{UserID: userID, Quote: quote, Address: addr, Request: req})
	if err != nil {
		return domain.Receipt{}, err
	}
	s.log.Info("checkout completed",
		zap.String("user_id", userID),
		zap.String("order_id", receipt.OrderID),
		zap.Int64("total", receipt.Total))
	return receipt, nil
}
