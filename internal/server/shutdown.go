package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// waitForShutdown returns a channel closed on interrupt, terminate, or when
// ctx is done.
func waitForShutdown(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()
	}()
	return done
}
