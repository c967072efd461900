// Package server exposes a loaded table over HTTP.
//
// Routes:
//
//	POST /v1/query   {"query": "SELECT ..."}
//	GET  /v1/table   name, columns, row count and schema
//	GET  /health
//	GET  /metrics    Prometheus exposition
//
// Queries run on a bounded worker pool. When every worker is busy the
// request is rejected with 503 instead of queueing.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vegasq/minisql/internal/config"
	"github.com/vegasq/minisql/internal/query"
	"github.com/vegasq/minisql/internal/reader"
)

// Server serves queries against one immutable table
type Server struct {
	cfg    config.Server
	table  *reader.Table
	parse  query.ParseFunc
	logger *slog.Logger
	pool   *ants.Pool
	engine *gin.Engine
}

// New builds the router and worker pool. parse defaults to query.Parse.
func New(cfg config.Server, table *reader.Table, parse query.ParseFunc, logger *slog.Logger) (*Server, error) {
	if parse == nil {
		parse = query.Parse
	}
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true), ants.WithPanicHandler(func(v any) {
		logger.Error("query worker panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		table:  table,
		parse:  parse,
		logger: logger,
		pool:   pool,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(s.logger))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	if s.cfg.RateLimit > 0 {
		v1.Use(RateLimit(s.cfg.RateLimit, s.cfg.Burst))
	}
	v1.POST("/query", s.handleQuery)
	v1.GET("/table", s.handleTable)

	return r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully and releases the worker pool
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String(), "table", s.table.Name)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("server shutting down")
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close releases the worker pool
func (s *Server) Close() {
	if err := s.pool.ReleaseTimeout(3 * time.Second); err != nil {
		s.logger.Warn("worker pool did not drain", "error", err)
	}
}
