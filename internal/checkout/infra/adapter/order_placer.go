package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/techstore/internal/checkout/app"
	"github.com/dwikikusuma/techstore/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/techstore/internal/order/app"
	orderdomain "github.com/dwikikusuma/techstore/internal/order/domain"
)

type OrderServicePlacer struct {
	svc *orderapp.Service
}

func NewOrderServicePlacer(svc *orderapp.Service) *OrderServicePlacer {
	return &OrderServicePlacer{svc: svc}
}

func (p *OrderServicePlacer) Place(ctx context.Context, d checkoutapp.Draft) (domain.Receipt, error) {
	q := d.Quote
	o := orderdomain.Order{
		UserID:          d.UserID,
		Currency:        q.Currency,
		Subtotal:        q.Subtotal,
		Discount:        q.Discount,
		Shipping:        q.Shipping,
		Total:           q.Total,
		Recipient:       d.Address.Recipient,
		Phone:           d.Address.Phone,
		ShippingAddress: d.Address.Line,
		PaymentMethod:   d.Request.PaymentMethod,
		Note:            d.Request.Note,
		Items:           make([]orderdomain.Item, 0, len(q.Lines)),
	}
	if q.Coupon != nil {
		id := q.Coupon.ID
		o.CouponID = &id
		o.CouponCode = q.Coupon.Code
	}
	for _, l := range q.Lines {
		o.Items = append(o.Items, orderdomain.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
		})
	}

	placed, err := p.svc.Place(ctx, o, q.CartID)
	if err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{
		OrderID:   placed.ID,
		Number:    placed.Number,
		Status:    placed.Status.String(),
		Currency:  placed.Currency,
		Total:     placed.Total,
		CreatedAt: placed.CreatedAt,
	}, nil
}
