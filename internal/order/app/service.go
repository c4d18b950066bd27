package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/order/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/events"
	"github.com/dwikikusuma/techstore/pkg/metrics"
)

const (
	TopicPlaced        = "orders.placed"
	TopicStatusChanged = "orders.status_changed"
	TopicCancelled     = "orders.cancelled"

	staleBatch = 100
)

var (
	ErrNotFound          = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", apperr.ErrConflict)
	ErrCouponExhausted   = fmt.Errorf("%w: coupon usage limit reached", apperr.ErrConflict)
	ErrCartChanged       = fmt.Errorf("%w: cart was already checked out", apperr.ErrConflict)
	ErrStatusChanged     = fmt.Errorf("%w: order status changed concurrently", apperr.ErrConflict)
	ErrNotCancellable    = fmt.Errorf("%w: only pending orders can be cancelled", apperr.ErrConflict)
)

type Service struct {
	repo   OrderRepo
	events events.Publisher
	now    func() time.Time
	log    *zap.Logger
}

func NewService(repo OrderRepo, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{repo: repo, events: pub, now: time.Now, log: log}
}

// Place persists a priced order as PENDING.
func (s *Service) Place(ctx context.Context, o domain.Order, cartID string) (domain.Order, error) {
	if strings.TrimSpace(o.UserID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user is required", apperr.ErrInvalidInput)
	}
	if err := o.Validate(); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.StatusPending
	o.Number = domain.NewNumber(s.now())
	o.CancelledAt = nil

	placed, err := s.repo.Place(ctx, o, cartID)
	if err != nil {
		return domain.Order{}, err
	}

	coupon := "no"
	if placed.CouponID != nil {
		coupon = "yes"
	}
	metrics.OrdersPlaced.WithLabelValues(coupon).Inc()
	s.log.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("number", placed.Number),
		zap.String("user_id", placed.UserID),
		zap.Int64("total", placed.Total))

	s.publish(ctx, TopicPlaced, placed.ID, domain.PlacedEvent{
		OrderID:    placed.ID,
		Number:     placed.Number,
		UserID:     placed.UserID,
		Currency:   placed.Currency,
		Total:      placed.Total,
		CouponCode: placed.CouponCode,
		Items:      len(placed.Items),
		PlacedAt:   placed.CreatedAt,
	})
	return placed, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int64, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, apperr.ErrUnauthenticated
	}
	return s.List(ctx, domain.Filter{UserID: userID, Limit: limit, Offset: offset})
}

// GetMine hides other users' orders behind not-found.
func (s *Service) GetMine(ctx context.Context, userID, id string) (domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return domain.Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) CancelMine(ctx context.Context, userID, id string) (domain.Order, error) {
	o, err := s.GetMine(ctx, userID, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.StatusPending {
		return domain.Order{}, ErrNotCancellable
	}
	return s.transition(ctx, o, domain.StatusCancelled)
}

func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Order, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown order status %d", apperr.ErrInvalidInput, *f.Status)
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, apperr.ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// SetStatus applies an admin status change. Setting the current status is a no-op.
func (s *Service) SetStatus(ctx context.Context, id string, to domain.Status) (domain.Order, error) {
	if !to.Valid() {
		return domain.Order{}, fmt.Errorf("%w: unknown order status %d", apperr.ErrInvalidInput, to)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status == to {
		return o, nil
	}
	return s.transition(ctx, o, to)
}

// CancelStalePending cancels PENDING orders older than olderThan and returns how many it
// cancelled. Orders that change status meanwhile are skipped.
func (s *Service) CancelStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	ids, err := s.repo.StalePending(ctx, cutoff, staleBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		o, err := s.repo.Get(ctx, id)
		if err != nil {
			return n, err
		}
		if o.Status != domain.StatusPending {
			continue
		}
		if _, err := s.transition(ctx, o, domain.StatusCancelled); err != nil {
			if errors.Is(err, ErrStatusChanged) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) transition(ctx context.Context, o domain.Order, to domain.Status) (domain.Order, error) {
	out, err := s.repo.SetStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return domain.Order{}, err
	}
	metrics.OrderStatusChanges.WithLabelValues(to.String()).Inc()
	s.log.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", o.Status.String()),
		zap.String("to", to.String()))

	ev := domain.StatusChangedEvent{
		OrderID:   out.ID,
		Number:    out.Number,
		UserID:    out.UserID,
		From:      o.Status.String(),
		To:        to.String(),
		ChangedAt: out.UpdatedAt,
	}
	s.publish(ctx, TopicStatusChanged, out.ID, ev)
	if to == domain.StatusCancelled {
		s.publish(ctx, TopicCancelled, out.ID, ev)
	}
	return out, nil
}

// publish never fails the caller; the order is already committed.
func (s *Service) publish(ctx context.Context, topic, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, key, payload); err != nil {
		s.log.Warn("publish event failed", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
	}
}
