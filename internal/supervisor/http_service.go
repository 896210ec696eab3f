package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
)

// HTTPServer is the subset of *http.Server the service needs.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts an HTTP server to suture.Service with graceful shutdown.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration

	mu  sync.Mutex
	err error
}

// NewHTTPService wraps server. A zero shutdownTimeout means 10s.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve runs the server until ctx is done. A server that fails on its own
// (port in use, bad address) terminates the tree instead of being restarted;
// the cause is available from Err.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err == nil {
			return nil
		}
		h.mu.Lock()
		h.err = fmt.Errorf("http server failed: %w", err)
		h.mu.Unlock()
		logging.Error().Err(err).Msg("http server failed")
		return suture.ErrTerminateSupervisorTree

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// Err returns the error that made the server stop on its own, if any.
func (h *HTTPService) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *HTTPService) String() string {
	return "http-server"
}
