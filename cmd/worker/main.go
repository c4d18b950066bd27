package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	couponapp "github.com/dwikikusuma/techstore/internal/coupon/app"
	couponpg "github.com/dwikikusuma/techstore/internal/coupon/infra/postgres"
	"github.com/dwikikusuma/techstore/internal/jobs"
	orderapp "github.com/dwikikusuma/techstore/internal/order/app"
	orderpg "github.com/dwikikusuma/techstore/internal/order/infra/postgres"

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
	log := logger.New(logger.Options{Service: "worker", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})
	defer func() { _ = log.Sync() }()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db := mustDB(cfg.DB, log)
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	pub := newPublisher(cfg.Kafka, log)
	defer pub.Close()

	couponSvc := couponapp.NewService(couponpg.NewCouponRepo(db), log.Named("coupon"))
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db), pub, log.Named("order"))

	sched := jobs.NewScheduler(time.Minute, log.Named("jobs"))
	for _, j := range []jobs.Job{
		jobs.CouponExpiry(cfg.Jobs.CouponSweep, couponSvc),
		jobs.StaleOrders(cfg.Jobs.StaleOrderSweep, orderSvc, cfg.Jobs.StaleOrderAfter),
	} {
		if err := sched.Add(j); err != nil {
			log.Error("schedule failed", zap.Error(err))
			os.Exit(1)
		}
	}

	sched.Start()
	log.Info("worker started")

	<-ctx.Done()
	log.Info("shutdown requested")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stopCancel()
	sched.Stop(stopCtx)

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

func newPublisher(c config.Kafka, log *zap.Logger) events.Publisher {
	if len(c.Brokers) == 0 {
		return events.NewLog(log.Named("events"))
	}
	return events.NewKafka(c.Brokers, c.TopicPrefix)
}
