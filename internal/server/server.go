// Package server wires storage, services and the HTTP API together.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/carpool/internal/api"
	"github.com/mmynk/carpool/internal/config"
	"github.com/mmynk/carpool/internal/metrics"
	"github.com/mmynk/carpool/internal/service"
	"github.com/mmynk/carpool/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Server is a configured carpool HTTP server.
type Server struct {
	http  *http.Server
	store *sqlite.SQLiteStore
}

// New opens the database and builds the HTTP handler.
func New(cfg *config.Config) (*Server, error) {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	reports, err := service.NewReportService(store, metrics.New(reg), cfg.Reports.CacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}

	handler := api.NewRouter(
		service.NewParticipantService(store),
		service.NewTripService(store),
		reports,
		reg,
	)

	return &Server{
		// h2c serves HTTP/2 without TLS alongside HTTP/1.1.
		http: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store: store,
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes the store.
func (s *Server) Run(ctx context.Context) error {
	defer s.store.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// Close releases the store without serving.
func (s *Server) Close() error {
	return s.store.Close()
}
