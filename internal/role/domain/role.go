package domain

import "time"

const (
	AdminRole    = "admin"
	CustomerRole = "customer"
)

const (
	PermProducts   = "products.manage"
	PermComponents = "components.manage"
	PermBanners    = "banners.manage"
	PermCategories = "categories.manage"
	PermCoupons    = "coupons.manage"
	PermUsers      = "users.manage"
	PermRoles      = "roles.manage"
	PermSettings   = "settings.manage"
	PermOrders     = "orders.manage"

	PermAll = "*"
)

var KnownPermissions = map[string]bool{
	PermProducts: true, PermComponents: true, PermBanners: true, PermCategories: true,
	PermCoupons: true, PermUsers: true, PermRoles: true, PermSettings: true, PermOrders: true,
	PermAll: true,
}

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func IsBuiltin(name string) bool {
	return name == AdminRole || name == CustomerRole
}
