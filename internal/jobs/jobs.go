// Package jobs runs periodic maintenance on a cron schedule. A failing run is logged and
// counted; it never stops the scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/pkg/metrics"
)

// Job is one scheduled unit. Run reports how many records it touched.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) (int64, error)
}

type CouponExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type OrderCanceller interface {
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int, error)
}

func CouponExpiry(spec string, coupons CouponExpirer) Job {
	return Job{
		Name: "coupon_expiry",
		Spec: spec,
		Run: func(ctx context.Context) (int64, error) {
			return coupons.ExpireStale(ctx, time.Now())
		},
	}
}

func StaleOrders(spec string, orders OrderCanceller, after time.Duration) Job {
	return Job{
		Name: "stale_orders",
		Spec: spec,
		Run: func(ctx context.Context) (int64, error) {
			n, err := orders.CancelStalePending(ctx, after)
			return int64(n), err
		},
	}
}

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     *zap.Logger
}

// NewScheduler gives each run a fresh context bounded only by timeout, so a shutdown signal
// lets in-flight runs finish while Stop waits for them.
func NewScheduler(timeout time.Duration, log *zap.Logger) *Scheduler {
	clog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(clog),
			cron.SkipIfStillRunning(clog),
		)),
		timeout: timeout,
		log:     log,
	}
}

func (s *Scheduler) Add(j Job) error {
	if j.Spec == "" {
		s.log.Info("job disabled", zap.String("job", j.Name))
		return nil
	}
	if _, err := s.cron.AddFunc(j.Spec, func() { s.run(j) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", j.Name, j.Spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", j.Name), zap.String("spec", j.Spec))
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running ones until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("jobs still running at shutdown")
	}
}

func (s *Scheduler) run(j Job) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := j.Run(ctx)
	if err != nil {
		metrics.JobRuns.WithLabelValues(j.Name, "error").Inc()
		s.log.Error("job failed", zap.String("job", j.Name), zap.Int64("count", n), zap.Error(err))
		return
	}
	metrics.JobRuns.WithLabelValues(j.Name, "ok").Inc()
	s.log.Info("job done",
		zap.String("job", j.Name),
		zap.Int64("count", n),
		zap.Duration("took", time.Since(start)),
	)
}
