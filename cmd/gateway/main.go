package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/pkg/auth"
	"github.com/dwikikusuma/techstore/pkg/cache"
	"github.com/dwikikusuma/techstore/pkg/config"
	"github.com/dwikikusuma/techstore/pkg/events"
	"github.com/dwikikusuma/techstore/pkg/logger"
	"github.com/dwikikusuma/techstore/pkg/postgres"
	"github.com/dwikikusuma/techstore/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service:   "gateway",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateAuth(); err != nil {
		log.Error("refusing to start", zap.Error(err))
		os.Exit(1)
	}

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	root := context.Background()
	ctx, cancel := shutdown.WithSignals(root)
	defer cancel()

	db := mustDB(cfg.DB, log)
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.DB.AutoMigrate {
		if err := migrate(db); err != nil {
			log.Error("auto migrate failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("schema migrated")
	}

	store := newCache(ctx, cfg.Redis, log)
	pub := newPublisher(cfg.Kafka, log)
	defer pub.Close()

	svcs := wire(db, store, cfg.Redis.TTL, pub, log)
	if err := svcs.Roles.EnsureDefaults(ctx); err != nil {
		log.Error("seed roles failed", zap.Error(err))
		os.Exit(1)
	}
	if cfg.Auth.AdminEmail != "" {
		if err := svcs.Users.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Error("seed admin failed", zap.Error(err))
			os.Exit(1)
		}
	}

	router := newRouter(routerOptions{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Verifier:    auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		CookieName:  cfg.Auth.CookieName,
	}, db, svcs, log)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}

	wg.Wait()
	log.Info("bye")
}

func mustDB(c config.DB, log *zap.Logger) *gorm.DB {
	db, err := postgres.Open(postgres.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Pass:            c.Password,
		DB:              c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Error("db open failed", zap.Error(err))
		os.Exit(1)
	}
	return db
}

// newCache falls back to the in-process cache when Redis is disabled or unreachable.
func newCache(ctx context.Context, c config.Redis, log *zap.Logger) cache.Cache {
	if !c.Enabled {
		return cache.NewMemory()
	}
	r := cache.NewRedis(cache.RedisOptions{Addr: c.Addr, Password: c.Password, DB: c.DB, Prefix: "techstore:"})
	if err := r.Ping(ctx); err != nil {
		log.Warn("redis unavailable, using memory cache", zap.String("addr", c.Addr), zap.Error(err))
		_ = r.Close()
		return cache.NewMemory()
	}
	return r
}

func newPublisher(c config.Kafka, log *zap.Logger) events.Publisher {
	if len(c.Brokers) == 0 {
		return events.NewLog(log.Named("events"))
	}
	return events.NewKafka(c.Brokers, c.TopicPrefix)
}
