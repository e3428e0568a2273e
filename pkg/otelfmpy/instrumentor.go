package otelfmpy

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/otelfmu/internal/intercept"
	"github.com/fyrsmithlabs/otelfmu/internal/modelcache"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// Entry point names as registered with the interception registry.
const (
	entryReadModelDescription = "read_model_description"
	entrySimulateFMU          = "simulate_fmu"
)

// Instrumentor installs and removes tracing wrappers on a library namespace.
type Instrumentor struct {
	cfg config

	mu       sync.Mutex
	active   bool
	registry *intercept.Registry
	session  *session

	tracer trace.Tracer
	meter  metric.Meter
	logger *zap.Logger
}

// New creates an inactive instrumentor.
func New(opts ...Option) *Instrumentor {
	cfg := config{library: fmu.DefaultLibrary}
	for _, opt := range opts {
		opt(&cfg)
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Instrumentor{
		cfg:      cfg,
		registry: intercept.NewRegistry(),
		tracer:   tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(Version)),
		meter:    mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(Version)),
		logger:   logger,
	}
}

var (
	defaultOnce sync.Once
	defaultInst *Instrumentor
)

// Default returns the process-wide instrumentor, which targets the
// fmu.DefaultLibrary namespace with the global providers.
func Default() *Instrumentor {
	defaultOnce.Do(func() {
		defaultInst = New()
	})
	return defaultInst
}

// InstrumentationDependencies returns the library versions this
// instrumentation supports.
func (i *Instrumentor) InstrumentationDependencies() []string {
	return append([]string(nil), dependencies...)
}

// IsActive reports whether the wrappers are installed.
func (i *Instrumentor) IsActive() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// Enable installs the wrappers. It is a no-op when already active. When the
// target library is not available, a warning is logged and the instrumentor
// stays inactive without error.
func (i *Instrumentor) Enable(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.active {
		return nil
	}

	ns, ok := i.resolve()
	if !ok {
		i.logger.Warn("FMPy not found, skipping instrumentation", zap.String("library", i.cfg.library))
		return nil
	}

	m, err := newMetrics(i.meter)
	if err != nil {
		i.logger.Warn("some metric instruments could not be created", zap.Error(err))
	}
	s := &session{
		tracer:  i.tracer,
		logger:  i.logger,
		cache:   modelcache.New(i.cfg.cacheMaxEntries),
		metrics: m,
		parse:   ns.ReadModelDescription,
	}

	if err := i.install(ns, s); err != nil {
		i.registry.RestoreAll()
		return fmt.Errorf("instrumenting %s: %w", i.cfg.library, err)
	}

	i.session = s
	i.active = true
	i.logger.Debug("instrumentation enabled",
		zap.String("library", i.cfg.library),
		zap.Strings("entry_points", i.registry.Names()),
	)
	return nil
}

// Disable restores the original entry points. It is a no-op when inactive.
// When the target library has gone away, a warning is logged, the saved
// originals are dropped and the instrumentor becomes inactive.
func (i *Instrumentor) Disable(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.active {
		return nil
	}

	if i.cfg.namespace == nil {
		if _, ok := fmu.Lookup(i.cfg.library); !ok {
			i.logger.Warn("FMPy not found, skipping uninstrumentation", zap.String("library", i.cfg.library))
			i.registry.Forget()
			i.reset()
			return nil
		}
	}

	restored := i.registry.RestoreAll()
	i.reset()
	i.logger.Debug("instrumentation disabled",
		zap.String("library", i.cfg.library),
		zap.Int("restored", restored),
	)
	return nil
}

// resolve returns the namespace to instrument. Caller must hold i.mu.
func (i *Instrumentor) resolve() (*fmu.Namespace, bool) {
	if i.cfg.namespace != nil {
		return i.cfg.namespace, true
	}
	return fmu.Lookup(i.cfg.library)
}

// install wraps every entry point ns provides with wrappers bound to s.
// Caller must hold i.mu.
func (i *Instrumentor) install(ns *fmu.Namespace, s *session) error {
	if ns.ReadModelDescription != nil {
		if _, err := intercept.Install(i.registry, entryReadModelDescription, &ns.ReadModelDescription, s.wrapReadModelDescription); err != nil {
			return err
		}
	}
	if ns.SimulateFMU != nil {
		if _, err := intercept.Install(i.registry, entrySimulateFMU, &ns.SimulateFMU, s.wrapSimulateFMU); err != nil {
			return err
		}
	}
	return nil
}

// reset drops the session state. Caller must hold i.mu.
func (i *Instrumentor) reset() {
	i.active = false
	i.session = nil
}
