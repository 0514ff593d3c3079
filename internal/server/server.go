// Package server exposes the find-it and review operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/juiceshop/findit/internal/auth"
	"github.com/juiceshop/findit/internal/config"
	"github.com/juiceshop/findit/internal/findit"
	"github.com/juiceshop/findit/internal/reviews"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server serves the HTTP API.
type Server struct {
	cfg     config.ServerConfig
	findIt  *findit.Service
	reviews *reviews.Service
	users   *auth.Users
	log     *zap.Logger
	mux     *http.ServeMux
}

// New creates a Server and registers its routes.
func New(cfg config.ServerConfig, fi *findit.Service, rv *reviews.Service, users *auth.Users, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		findIt:  fi,
		reviews: rv,
		users:   users,
		log:     log.Named("server"),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /snippets", s.handleListSnippets)
	s.mux.HandleFunc("GET /snippets/{challenge}", s.handleGetSnippet)
	s.mux.HandleFunc("POST /snippets/verdict", s.handleVerdict)

	s.mux.HandleFunc("PUT /rest/products/{id}/reviews", s.handleCreateReview)
	s.mux.HandleFunc("GET /rest/products/{id}/reviews", s.handleListReviews)
}

// Handler returns the routed handler with timeout and logging middleware.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.withTimeout(s.mux))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// In-flight requests keep ctx values but outlive its cancellation;
		// Shutdown bounds how long they may run.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	if s.cfg.RequestTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
