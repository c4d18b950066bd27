package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalCancelsThenForces(t *testing.T) {
	forced := make(chan struct{})
	ctx, cancel := withSignals(context.Background(), func() { close(forced) })
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by signal")
	}

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-forced:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not force exit")
	}
}

func TestParentCancelReleasesWatcher(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := withSignals(parent, func() { t.Error("force called") })
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation not propagated")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
