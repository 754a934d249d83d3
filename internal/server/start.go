package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Start serves until ctx is canceled or an interrupt or terminate signal
// arrives, then shuts down with a 10 second budget.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Cfg.GetServerAddr()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-waitForShutdown(ctx):
		slog.Info("Shutting down server")
	case err, ok := <-errCh:
		if ok {
			_ = s.App.Shutdown(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
