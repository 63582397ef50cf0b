// Package server owns the HTTP listener lifecycle and the cross-cutting
// middleware chain (panic recovery, request ids, request logging).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Service is the HTTP server hosting the component's API.
type Service interface {
	// HandleFunc mounts a handler function on the server mux.
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))

	// Start begins serving. Errors after startup are reported on the
	// returned channel.
	Start(ctx context.Context) (<-chan error, error)

	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error

	// Handler returns the fully wrapped root handler, for tests.
	Handler() http.Handler
}

type serverImpl struct {
	cfg    Config
	logger *slog.Logger

	httpMux    *http.ServeMux
	httpServer *http.Server

	mu      sync.Mutex
	started bool
}

// New creates a new Service instance.
func New(cfg Config, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	return &serverImpl{
		cfg:     cfg,
		logger:  logger,
		httpMux: http.NewServeMux(),
	}
}

func (s *serverImpl) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.httpMux.HandleFunc(pattern, handler)
}

func (s *serverImpl) Handler() http.Handler {
	return s.wrapMiddleware(s.httpMux)
}

func (s *serverImpl) Start(_ context.Context) (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil, fmt.Errorf("server already started")
	}
	s.started = true

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.wrapMiddleware(s.httpMux),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return errChan, nil
}

func (s *serverImpl) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
