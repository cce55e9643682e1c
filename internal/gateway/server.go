package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	port            string
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a new HTTP server
func NewServer(port string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		port:            port,
		logger:          logger,
		shutdownTimeout: 20 * time.Second,
	}
}

// Start serves until ctx is cancelled, then gives in-flight requests the
// shutdown timeout to finish.
func (s *Server) Start(ctx context.Context) error {
	// Channel to listen for errors from the HTTP server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", "port", s.port)
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("server shutting down", "reason", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			_ = s.httpServer.Close()
			return fmt.Errorf("could not gracefully shutdown server: %w", err)
		}

		s.logger.Info("server stopped gracefully")
	}

	return nil
}
