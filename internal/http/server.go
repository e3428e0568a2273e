// Package http serves the otelfmu telemetry endpoint.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/otelfmu/internal/telemetry"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr      string          `koanf:"addr"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig limits requests per client IP. A zero rate disables the
// limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// NewDefaultConfig returns the default listen address and limits.
func NewDefaultConfig() *Config {
	return &Config{
		Addr: "localhost:9464",
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// Validate checks the listen address and limits.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return errors.New("rate_limit.requests_per_second must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst < 1 {
		return errors.New("rate_limit.burst must be at least 1")
	}
	return nil
}

// StatusSource reports instrumentation state for GET /status.
type StatusSource interface {
	IsActive() bool
	InstrumentationDependencies() []string
}

// HealthSource reports telemetry pipeline health for GET /health.
type HealthSource interface {
	Health() telemetry.HealthStatus
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves GET /metrics from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithHealthSource includes telemetry health in GET /health.
func WithHealthSource(h HealthSource) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMeter records request metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Server) {
		s.meter = m
	}
}

// Server provides the telemetry HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	status   StatusSource
	health   HealthSource
	gatherer prometheus.Gatherer
	meter    metric.Meter
	logger   *zap.Logger
	config   *Config
}

// NewServer creates a new HTTP server.
func NewServer(status StatusSource, logger *zap.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if status == nil {
		return nil, fmt.Errorf("status source cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid http config: %w", err)
	}

	s := &Server{
		status: status,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(rl.RequestsPerSecond),
				Burst:     rl.Burst,
				ExpiresIn: 3 * time.Minute,
			},
		)))
	}
	e.Use(newHTTPMetrics(s.meter, logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s.echo = e
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/status", s.handleStatus)

	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(s.logger),
		})))
	}
}

// handleHealth reports liveness, and telemetry health when known.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if s.health != nil {
		h := s.health.Health()
		resp.Telemetry = &h
		if h.Degraded {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleStatus reports whether the simulation library is instrumented.
func (s *Server) handleStatus(c echo.Context) error {
	active := s.status.IsActive()
	state := "disabled"
	if active {
		state = "enabled"
	}
	return c.JSON(http.StatusOK, StatusResponse{
		Instrumentation: state,
		Active:          active,
		Dependencies:    s.status.InstrumentationDependencies(),
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.config.Addr
}

// Start starts the HTTP server. It blocks until the server stops and
// returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
