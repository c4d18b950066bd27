package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	roledomain "github.com/dwikikusuma/techstore/internal/role/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/auth"
	"github.com/dwikikusuma/techstore/pkg/httpx"
	"github.com/dwikikusuma/techstore/pkg/metrics"
	"github.com/dwikikusuma/techstore/pkg/postgres"
)

type routerOptions struct {
	CORSOrigins []string
	Verifier    *auth.Verifier
	CookieName  string
}

func newRouter(opts routerOptions, db *gorm.DB, s services, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(log.Named("http"), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))
	r.Use(metrics.Middleware())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = postgres.Ready(ctx, sqlDB)
		}
		if err != nil {
			log.Warn("readiness failed", zap.Error(err))
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		httpx.Fail(c, fmt.Errorf("route %w", apperr.ErrNotFound))
	})

	v1 := r.Group("/api/v1", auth.Authenticate(opts.Verifier, opts.CookieName, s.Users))
	h := s.handlers

	h.catalog.RegisterPublic(v1)
	h.category.RegisterPublic(v1)
	h.component.RegisterPublic(v1)
	h.banner.RegisterPublic(v1)
	h.setting.RegisterPublic(v1)

	customer := v1.Group("", auth.RequireUser())
	h.user.RegisterCustomer(customer)
	h.cart.RegisterCustomer(customer)
	h.checkout.RegisterCustomer(customer)
	h.order.RegisterCustomer(customer)

	admin := v1.Group("/admin")
	guard := func(perm string) gin.HandlerFunc { return auth.RequirePermission(s.Roles, perm) }
	h.catalog.RegisterAdmin(admin, guard(roledomain.PermProducts))
	h.component.RegisterAdmin(admin, guard(roledomain.PermComponents))
	h.banner.RegisterAdmin(admin, guard(roledomain.PermBanners))
	h.category.RegisterAdmin(admin, guard(roledomain.PermCategories))
	h.coupon.RegisterAdmin(admin, guard(roledomain.PermCoupons))
	h.user.RegisterAdmin(admin, guard(roledomain.PermUsers))
	h.role.RegisterAdmin(admin, guard(roledomain.PermRoles))
	h.setting.RegisterAdmin(admin, guard(roledomain.PermSettings))
	h.order.RegisterAdmin(admin, guard(roledomain.PermOrders))

	return r
}
