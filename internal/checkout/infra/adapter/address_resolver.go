package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/techstore/internal/checkout/app"
	userapp "github.com/dwikikusuma/techstore/internal/user/app"
	userdomain "github.com/dwikikusuma/techstore/internal/user/domain"
)

type UserAddressResolver struct {
	svc *userapp.Service
}

func NewUserAddressResolver(svc *userapp.Service) *UserAddressResolver {
	return &UserAddressResolver{svc: svc}
}

func (r *UserAddressResolver) Resolve(ctx context.Context, userID, id string) (checkoutapp.Address, error) {
	if id != "" {
		a, err := r.svc.GetAddress(ctx, userID, id)
		if err != nil {
			return checkoutapp.Address{}, err
		}
		return toAddress(a), nil
	}

	all, err := r.svc.ListAddresses(ctx, userID)
	if err != nil {
		return checkoutapp.Address{}, err
	}
	for _, a := range all {
		if a.IsDefault {
			return toAddress(a), nil
		}
	}
	return checkoutapp.Address{}, checkoutapp.ErrNoAddress
}

func toAddress(a userdomain.Address) checkoutapp.Address {
	return checkoutapp.Address{Recipient: a.Recipient, Phone: a.Phone, Line: a.OneLine()}
}
