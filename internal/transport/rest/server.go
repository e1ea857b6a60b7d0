// Package rest serves the local status endpoints of a running client.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/dreamjournal/internal/config"
	"github.com/heartmarshall/dreamjournal/internal/transport/middleware"
)

// NewRouter mounts the probes, /queues and /metrics behind the middleware
// chain.
func NewRouter(log *slog.Logger, health *HealthHandler, queues *QueueHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /queues", queues.Status)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.Metrics(),
	)(mux)
}

// Server is the status HTTP server.
type Server struct {
	log *slog.Logger
	srv *http.Server
	cfg config.StatusConfig
}

// NewServer creates a Server for handler.
func NewServer(log *slog.Logger, cfg config.StatusConfig, handler http.Handler) *Server {
	return &Server{
		log: log.With("component", "status_server"),
		cfg: cfg,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "status server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("rest.Server.Run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("rest.Server.Shutdown: %w", err)
	}
	s.log.InfoContext(ctx, "status server stopped")
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
