package main

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	bannerapi "github.com/dwikikusuma/techstore/internal/banner/api"
	bannerapp "github.com/dwikikusuma/techstore/internal/banner/app"
	bannerpg "github.com/dwikikusuma/techstore/internal/banner/infra/postgres"

	cartapi "github.com/dwikikusuma/techstore/internal/cart/api"
	cartapp "github.com/dwikikusuma/techstore/internal/cart/app"
	cartadapter "github.com/dwikikusuma/techstore/internal/cart/infra/adapter"
	cartpg "github.com/dwikikusuma/techstore/internal/cart/infra/postgres"

	catalogapi "github.com/dwikikusuma/techstore/internal/catalog/api"
	catalogapp "github.com/dwikikusuma/techstore/internal/catalog/app"
	catalogadapter "github.com/dwikikusuma/techstore/internal/catalog/infra/adapter"
	catalogpg "github.com/dwikikusuma/techstore/internal/catalog/infra/postgres"

	categoryapi "github.com/dwikikusuma/techstore/internal/category/api"
	categoryapp "github.com/dwikikusuma/techstore/internal/category/app"
	categorypg "github.com/dwikikusuma/techstore/internal/category/infra/postgres"

	checkoutapi "github.com/dwikikusuma/techstore/internal/checkout/api"
	checkoutapp "github.com/dwikikusuma/techstore/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/techstore/internal/checkout/infra/adapter"

	componentapi "github.com/dwikikusuma/techstore/internal/component/api"
	componentapp "github.com/dwikikusuma/techstore/internal/component/app"
	componentpg "github.com/dwikikusuma/techstore/internal/component/infra/postgres"

	couponapi "github.com/dwikikusuma/techstore/internal/coupon/api"
	couponapp "github.com/dwikikusuma/techstore/internal/coupon/app"
	couponpg "github.com/dwikikusuma/techstore/internal/coupon/infra/postgres"

	orderapi "github.com/dwikikusuma/techstore/internal/order/api"
	orderapp "github.com/dwikikusuma/techstore/internal/order/app"
	orderpg "github.com/dwikikusuma/techstore/internal/order/infra/postgres"

	roleapi "github.com/dwikikusuma/techstore/internal/role/api"
	roleapp "github.com/dwikikusuma/techstore/internal/role/app"
	rolepg "github.com/dwikikusuma/techstore/internal/role/infra/postgres"

	settingapi "github.com/dwikikusuma/techstore/internal/setting/api"
	settingapp "github.com/dwikikusuma/techstore/internal/setting/app"
	settingpg "github.com/dwikikusuma/techstore/internal/setting/infra/postgres"

	userapi "github.com/dwikikusuma/techstore/internal/user/api"
	userapp "github.com/dwikikusuma/techstore/internal/user/app"
	useradapter "github.com/dwikikusuma/techstore/internal/user/infra/adapter"
	userpg "github.com/dwikikusuma/techstore/internal/user/infra/postgres"

	"github.com/dwikikusuma/techstore/pkg/cache"
	"github.com/dwikikusuma/techstore/pkg/events"
)

// migrators create every table the API touches, in dependency order.
var migrators = []func(*gorm.DB) error{
	rolepg.AutoMigrate,
	userpg.AutoMigrate,
	categorypg.AutoMigrate,
	componentpg.AutoMigrate,
	catalogpg.AutoMigrate,
	bannerpg.AutoMigrate,
	settingpg.AutoMigrate,
	couponpg.AutoMigrate,
	cartpg.AutoMigrate,
	orderpg.AutoMigrate,
}

func migrate(db *gorm.DB) error {
	for _, m := range migrators {
		if err := m(db); err != nil {
			return err
		}
	}
	return nil
}

type services struct {
	Roles *roleapp.Service
	Users *userapp.Service

	handlers handlers
}

type handlers struct {
	catalog   *catalogapi.Handler
	category  *categoryapi.Handler
	component *componentapi.Handler
	banner    *bannerapi.Handler
	setting   *settingapi.Handler
	user      *userapi.Handler
	role      *roleapi.Handler
	cart      *cartapi.Handler
	coupon    *couponapi.Handler
	checkout  *checkoutapi.Handler
	order     *orderapi.Handler
}

// wire builds every context on one database, cache and publisher.
func wire(db *gorm.DB, c cache.Cache, cacheTTL time.Duration, pub events.Publisher, log *zap.Logger) services {
	roleSvc := roleapp.NewService(rolepg.NewRoleRepo(db), c)
	userSvc := userapp.NewService(
		userpg.NewUserRepo(db),
		userpg.NewAddressRepo(db),
		useradapter.NewRoleChecker(roleSvc),
		c,
		log.Named("user"),
	)
	settingSvc := settingapp.NewService(settingpg.NewSettingRepo(db), c, cacheTTL)

	categorySvc := categoryapp.NewService(categorypg.NewCategoryRepo(db), c, cacheTTL)
	componentSvc := componentapp.NewService(componentpg.Stores(db))
	catalogSvc := catalogapp.NewService(
		catalogpg.NewProductRepo(db),
		catalogadapter.NewCategoryChecker(categorySvc),
		catalogadapter.NewComponentReader(componentSvc),
		settingSvc,
		log.Named("catalog"),
	)
	bannerSvc := bannerapp.NewService(bannerpg.NewBannerRepo(db), c, cacheTTL)

	cartSvc := cartapp.NewService(
		cartpg.NewCartRepo(db),
		cartadapter.NewCatalogProductReader(catalogSvc),
		10,
		log.Named("cart"),
	)
	couponSvc := couponapp.NewService(couponpg.NewCouponRepo(db), log.Named("coupon"))
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db), pub, log.Named("order"))

	checkoutSvc := checkoutapp.NewService(checkoutapp.Deps{
		Cart:      checkoutadapter.NewCartServiceReader(cartSvc),
		Catalog:   checkoutadapter.NewCatalogServiceReader(catalogSvc),
		Coupons:   checkoutadapter.NewCouponServiceEvaluator(couponSvc),
		Settings:  settingSvc,
		Addresses: checkoutadapter.NewUserAddressResolver(userSvc),
		Orders:    checkoutadapter.NewOrderServicePlacer(orderSvc),
	}, 10, log.Named("checkout"))

	return services{
		Roles: roleSvc,
		Users: userSvc,
		handlers: handlers{
			catalog:   catalogapi.NewHandler(catalogSvc),
			category:  categoryapi.NewHandler(categorySvc),
			component: componentapi.NewHandler(componentSvc),
			banner:    bannerapi.NewHandler(bannerSvc),
			setting:   settingapi.NewHandler(settingSvc),
			user:      userapi.NewHandler(userSvc),
			role:      roleapi.NewHandler(roleSvc),
			cart:      cartapi.NewHandler(cartSvc),
			coupon:    couponapi.NewHandler(couponSvc),
			checkout:  checkoutapi.NewHandler(checkoutSvc),
			order:     orderapi.NewHandler(orderSvc),
		},
	}
}
