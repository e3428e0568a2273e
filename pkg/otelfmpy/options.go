package otelfmpy

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

type config struct {
	tracerProvider  trace.TracerProvider
	meterProvider   metric.MeterProvider
	logger          *zap.Logger
	namespace       *fmu.Namespace
	library         string
	cacheMaxEntries int
}

// Option configures an Instrumentor.
type Option func(*config)

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider instruments are created from. The
// global provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		if mp != nil {
			c.meterProvider = mp
		}
	}
}

// WithLogger sets the logger for warnings and debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNamespace instruments ns directly instead of looking a library up by
// name.
func WithNamespace(ns *fmu.Namespace) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithLibrary sets the registered library name to instrument. Default is
// fmu.DefaultLibrary.
func WithLibrary(name string) Option {
	return func(c *config) {
		if name != "" {
			c.library = name
		}
	}
}

// WithCacheMaxEntries bounds the model description cache. n <= 0 keeps it
// unbounded, which is the default.
func WithCacheMaxEntries(n int) Option {
	return func(c *config) {
		c.cacheMaxEntries = n
	}
}
