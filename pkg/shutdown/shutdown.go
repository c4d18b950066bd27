// Package shutdown turns SIGINT/SIGTERM into context cancellation.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSignals cancels the returned context on the first signal. A second signal while the
// process is draining exits immediately with status 1.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return withSignals(parent, func() { os.Exit(1) })
}

func withSignals(parent context.Context, force func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
		<-ch
		force()
	}()

	return ctx, cancel
}
