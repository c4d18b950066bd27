package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/techstore/internal/cart/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
)

const maxQuantity = 999

var (
	ErrNotFound           = fmt.Errorf("cart %w", apperr.ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("cart item %w", apperr.ErrNotFound)
	ErrCartExists         = fmt.Errorf("%w: an active cart already exists", apperr.ErrConflict)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", apperr.ErrConflict)
	ErrProductUnavailable = fmt.Errorf("%w: product is not available", apperr.ErrInvalidInput)
)

type Service struct {
	repo          CartRepo
	products      ProductReader
	maxConcurrent int
	log           *zap.Logger
}

func NewService(repo CartRepo, products ProductReader, maxConcurrent int, log *zap.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Service{repo: repo, products: products, maxConcurrent: maxConcurrent, log: log}
}

// Active returns the user's active cart, creating an empty one on first use.
func (s *Service) Active(ctx context.Context, userID string) (domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) View(ctx context.Context, userID string) (domain.View, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.View{}, err
	}
	return s.view(ctx, cart)
}

// CreateCart opens a cart pre-filled with items. Duplicate product ids are merged.
func (s *Service) CreateCart(ctx context.Context, userID string, items []domain.CartItem) (domain.View, error) {
	merged := make([]domain.CartItem, 0, len(items))
	index := map[string]int{}
	for _, it := range items {
		it.ProductID = productKey(it.ProductID)
		if it.ProductID == "" || it.Quantity <= 0 {
			return domain.View{}, fmt.Errorf("%w: every item needs a product_id and a positive quantity", apperr.ErrInvalidInput)
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	for _, it := range merged {
		if err := s.checkProduct(ctx, it.ProductID, it.Quantity); err != nil {
			return domain.View{}, err
		}
	}

	cart, err := s.repo.Create(ctx, domain.Cart{UserID: userID, Items: merged})
	if err != nil {
		return domain.View{}, err
	}
	s.log.Info("cart created", zap.String("cart_id", cart.ID), zap.Int("items", len(merged)))
	return s.view(ctx, cart)
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (domain.View, error) {
	productID = productKey(productID)
	if productID == "" || qty <= 0 {
		return domain.View{}, fmt.Errorf("%w: product_id and a positive quantity are required", apperr.ErrInvalidInput)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.View{}, err
	}
	if err := s.checkProduct(ctx, productID, cart.Quantity(productID)+qty); err != nil {
		return domain.View{}, err
	}
	if err := s.repo.AddItem(ctx, cart.ID, domain.CartItem{ProductID: productID, Quantity: qty}); err != nil {
		return domain.View{}, err
	}
	return s.View(ctx, userID)
}

// SetItemQuantity replaces the line quantity; zero removes the line.
func (s *Service) SetItemQuantity(ctx context.Context, userID, productID string, qty int) (domain.View, error) {
	if qty < 0 {
		return domain.View{}, fmt.Errorf("%w: quantity cannot be negative", apperr.ErrInvalidInput)
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	productID = productKey(productID)
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.View{}, err
	}
	if cart.Quantity(productID) == 0 {
		return domain.View{}, ErrItemNotFound
	}
	if err := s.checkProduct(ctx, productID, qty); err != nil {
		return domain.View{}, err
	}
	if err := s.repo.SetItemQuantity(ctx, cart.ID, domain.CartItem{ProductID: productID, Quantity: qty}); err != nil {
		return domain.View{}, err
	}
	return s.View(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (domain.View, error) {
	productID = productKey(productID)
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.View{}, err
	}
	if cart.Quantity(productID) == 0 {
		return domain.View{}, ErrItemNotFound
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return domain.View{}, err
	}
	return s.View(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.repo.GetActive(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

func (s *Service) checkProduct(ctx context.Context, productID string, want int) error {
	if want > maxQuantity {
		return fmt.Errorf("%w: at most %d per product", apperr.ErrInvalidInput, maxQuantity)
	}
	p, err := s.products.Product(ctx, productID)
	if errors.Is(err, apperr.ErrNotFound) {
		return ErrProductUnavailable
	}
	if err != nil {
		return err
	}
	if !p.Active {
		return ErrProductUnavailable
	}
	if want > p.Stock {
		return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, p.Stock)
	}
	return nil
}

// view looks every line's product up concurrently.
func (s *Service) view(ctx context.Context, cart domain.Cart) (domain.View, error) {
	lines := make([]domain.Line, len(cart.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, it := range cart.Items {
		g.Go(func() error {
			line := domain.Line{ProductID: it.ProductID, Quantity: it.Quantity}
			p, err := s.products.Product(gctx, it.ProductID)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
			case err != nil:
				return fmt.Errorf("product %s: %w", it.ProductID, err)
			default:
				line.Name = p.Name
				line.Slug = p.Slug
				line.Currency = p.Currency
				line.UnitPrice = p.UnitPrice
				line.LineTotal = p.UnitPrice * int64(it.Quantity)
				line.Stock = p.Stock
				line.Available = p.Active && it.Quantity <= p.Stock
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.View{}, err
	}
	return domain.NewView(cart, lines), nil
}

// productKey returns the canonical lower-case form of a product uuid. Anything else is only
// trimmed and will not match a stored line.
func productKey(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
