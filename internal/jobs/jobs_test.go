package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/pkg/metrics"
)

type fakeCoupons struct {
	n   int64
	err error
	at  time.Time
}

func (f *fakeCoupons) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	f.at = now
	return f.n, f.err
}

type fakeOrders struct {
	after time.Duration
	n     int
}

func (f *fakeOrders) CancelStalePending(_ context.Context, olderThan time.Duration) (int, error) {
	f.after = olderThan
	return f.n, nil
}

func TestRunRecordsOutcome(t *testing.T) {
	s := NewScheduler(time.Second, zap.NewNop())

	coupons := &fakeCoupons{n: 3}
	ok := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("coupon_expiry", "ok"))
	s.run(CouponExpiry("@every 1m", coupons))
	assert.False(t, coupons.at.IsZero())
	assert.Equal(t, ok+1, testutil.ToFloat64(metrics.JobRuns.WithLabelValues("coupon_expiry", "ok")))

	coupons.err = errors.New("db down")
	failed := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("coupon_expiry", "error"))
	s.run(CouponExpiry("@every 1m", coupons))
	assert.Equal(t, failed+1, testutil.ToFloat64(metrics.JobRuns.WithLabelValues("coupon_expiry", "error")))

	orders := &fakeOrders{n: 2}
	s.run(StaleOrders("@every 1m", orders, 48*time.Hour))
	assert.Equal(t, 48*time.Hour, orders.after)
}

func TestRunAppliesTimeout(t *testing.T) {
	s := NewScheduler(10*time.Millisecond, zap.NewNop())
	var deadline bool
	s.run(Job{Name: "deadline", Run: func(ctx context.Context) (int64, error) {
		_, deadline = ctx.Deadline()
		return 0, nil
	}})
	assert.True(t, deadline)
}

func TestAdd(t *testing.T) {
	s := NewScheduler(0, zap.NewNop())

	require.NoError(t, s.Add(CouponExpiry("@every 5m", &fakeCoupons{})))
	require.NoError(t, s.Add(StaleOrders("", &fakeOrders{}, time.Hour)))
	assert.Len(t, s.cron.Entries(), 1)

	assert.Error(t, s.Add(Job{Name: "bad", Spec: "every tuesday", Run: func(context.Context) (int64, error) { return 0, nil }}))
}

func TestStopWaitsForScheduler(t *testing.T) {
	s := NewScheduler(0, zap.NewNop())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}

func TestStopLetsRunningJobFinish(t *testing.T) {
	s := NewScheduler(time.Minute, zap.NewNop())
	started := make(chan struct{})
	var finished bool
	var runErr error
	require.NoError(t, s.Add(Job{Name: "slow", Spec: "@every 1s", Run: func(ctx context.Context) (int64, error) {
		select {
		case started <- struct{}{}:
		default:
			return 0, nil
		}
		time.Sleep(100 * time.Millisecond)
		runErr = ctx.Err()
		finished = true
		return 1, nil
	}}))
	s.Start()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.True(t, finished)
	assert.NoError(t, runErr)
}
