// Package server exposes the fact-checking pipeline over HTTP.
//
// Routes:
//
//	GET  /            service banner and endpoint list
//	GET  /health      liveness probe
//	POST /fact-check  run the pipeline on {"text": "..."}
//	GET  /metrics     Prometheus exposition
//
// Pipeline failures below the request level (extraction or verification
// errors) are reported in-band as placeholder claims and ERROR verdicts with
// status 200; only invalid input (400) and unexpected failures (500) change
// the status code.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/metrics"
	"github.com/ppiankov/factcheck/internal/model"
)

// Checker runs the fact-checking pipeline on one text
type Checker interface {
	Run(ctx context.Context, text string) (*model.FactCheckResponse, error)
}

// Server wires the gin router to the pipeline
type Server struct {
	config  model.ServerConfig
	router  *gin.Engine
	checker Checker
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a server with all routes registered.
// gatherer backs /metrics; when nil the route is not registered.
func New(cfg model.ServerConfig, checker Checker, logger *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:  cfg,
		router:  gin.New(),
		checker: checker,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}

	s.router.Use(
		requestLogger(logger),
		metricsMiddleware(m),
		recoveryMiddleware(logger),
		corsMiddleware(cfg.CORSOrigins),
	)

	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/fact-check", s.handleFactCheck)
	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return s
}

// Router returns the underlying gin engine for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
