package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"
)

const serviceInstanceIDKey = attribute.Key("service.instance.id")

// Option configures provider creation.
type Option func(*options)

type options struct {
	traceExporter trace.SpanExporter
	metricReaders []metric.Reader
	writer        io.Writer
	instanceID    string
}

func newOptions(opts []Option) *options {
	o := &options{writer: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	if o.instanceID == "" {
		o.instanceID = uuid.NewString()
	}
	return o
}

// WithTraceExporter overrides the configured span exporter.
func WithTraceExporter(exp trace.SpanExporter) Option {
	return func(o *options) {
		o.traceExporter = exp
	}
}

// WithMetricReader adds a reader to the MeterProvider alongside the
// configured exporter. Readers are attached even when metric export is
// disabled.
func WithMetricReader(r metric.Reader) Option {
	return func(o *options) {
		if r != nil {
			o.metricReaders = append(o.metricReaders, r)
		}
	}
}

// WithWriter sets where the stdout exporters write. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithInstanceID overrides the generated service.instance.id.
func WithInstanceID(id string) Option {
	return func(o *options) {
		o.instanceID = id
	}
}

// newResource creates a resource describing the service.
func newResource(cfg *Config, o *options) *resource.Resource {
	// Standalone resource to avoid schema URL conflicts with resource.Default().
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		serviceInstanceIDKey.String(o.instanceID),
	)
}

// newTraceExporter returns the span exporter for cfg, or nil when spans are
// not exported.
func newTraceExporter(ctx context.Context, cfg *Config, o *options) (trace.SpanExporter, error) {
	if o.traceExporter != nil {
		return o.traceExporter, nil
	}

	switch cfg.Exporter {
	case ExporterOTLP:
		if cfg.protocol() == ProtocolHTTP {
			opts := []otlptracehttp.Option{
				otlptracehttp.WithEndpoint(stripScheme(cfg.Endpoint)),
			}
			if cfg.Insecure {
				opts = append(opts, otlptracehttp.WithInsecure())
			} else if cfg.TLSSkipVerify {
				opts = append(opts, otlptracehttp.WithTLSClientConfig(skipVerifyTLS()))
			}
			return otlptracehttp.New(ctx, opts...)
		}
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else if cfg.TLSSkipVerify {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(skipVerifyTLS())))
		}
		return otlptracegrpc.New(ctx, opts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(o.writer), stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

// newTracerProvider creates a TracerProvider. Without an exporter spans are
// still created and sampled so log correlation keeps working.
func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource, o *options) (*trace.TracerProvider, error) {
	exporter, err := newTraceExporter(ctx, cfg, o)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	var sampler trace.Sampler
	switch {
	case cfg.Sampling.Rate >= 1.0:
		sampler = trace.AlwaysSample()
	case cfg.Sampling.Rate <= 0:
		sampler = trace.NeverSample()
	default:
		sampler = trace.TraceIDRatioBased(cfg.Sampling.Rate)
	}

	tpOpts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(sampler)),
	}
	if exporter != nil {
		tpOpts = append(tpOpts, trace.WithBatcher(exporter))
	}
	return trace.NewTracerProvider(tpOpts...), nil
}

// newMetricReader returns the reader for the configured exporter and, for the
// prometheus exporter, the registry it registers into. Both are nil when
// metrics are not exported.
func newMetricReader(ctx context.Context, cfg *Config, o *options) (metric.Reader, *prometheus.Registry, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil, nil
	}

	// Cumulative temporality for Prometheus-compatible backends. This
	// overrides OTEL_EXPORTER_OTLP_METRICS_TEMPORALITY_PREFERENCE inherited
	// from a parent process.
	cumulativeSelector := func(metric.InstrumentKind) metricdata.Temporality {
		return metricdata.CumulativeTemporality
	}
	interval := metric.WithInterval(cfg.Metrics.ExportInterval.Duration())

	switch cfg.Exporter {
	case ExporterOTLP:
		var exporter metric.Exporter
		var err error
		if cfg.protocol() == ProtocolHTTP {
			opts := []otlpmetrichttp.Option{
				otlpmetrichttp.WithEndpoint(stripScheme(cfg.Endpoint)),
				otlpmetrichttp.WithTemporalitySelector(cumulativeSelector),
			}
			if cfg.Insecure {
				opts = append(opts, otlpmetrichttp.WithInsecure())
			} else if cfg.TLSSkipVerify {
				opts = append(opts, otlpmetrichttp.WithTLSClientConfig(skipVerifyTLS()))
			}
			exporter, err = otlpmetrichttp.New(ctx, opts...)
		} else {
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
				otlpmetricgrpc.WithTemporalitySelector(cumulativeSelector),
			}
			if cfg.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			} else if cfg.TLSSkipVerify {
				opts = append(opts, otlpmetricgrpc.WithTLSCredentials(credentials.NewTLS(skipVerifyTLS())))
			}
			exporter, err = otlpmetricgrpc.New(ctx, opts...)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter, interval), nil, nil
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(o.writer), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter, interval), nil, nil
	case ExporterPrometheus:
		reg := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		return exporter, reg, nil
	default:
		return nil, nil, nil
	}
}

// newMeterProvider creates a MeterProvider, or nil when there is no reader to
// attach.
func newMeterProvider(ctx context.Context, cfg *Config, res *resource.Resource, o *options) (*metric.MeterProvider, *prometheus.Registry, error) {
	readers := append([]metric.Reader(nil), o.metricReaders...)

	reader, reg, err := newMetricReader(ctx, cfg, o)
	if err != nil {
		// Caller-supplied readers still get a provider.
		if len(readers) == 0 {
			return nil, nil, err
		}
	} else if reader != nil {
		readers = append(readers, reader)
	}

	if len(readers) == 0 {
		return nil, nil, nil
	}

	mpOpts := []metric.Option{metric.WithResource(res)}
	for _, r := range readers {
		mpOpts = append(mpOpts, metric.WithReader(r))
	}
	return metric.NewMeterProvider(mpOpts...), reg, err
}

// newLoggerProvider creates an OTLP LoggerProvider for the zap bridge, or nil
// when logs are not exported.
func newLoggerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	if cfg.Exporter != ExporterOTLP || !cfg.Logs.Enabled {
		return nil, nil
	}

	var exporter sdklog.Exporter
	var err error
	if cfg.protocol() == ProtocolHTTP {
		opts := []otlploghttp.Option{
			otlploghttp.WithEndpoint(stripScheme(cfg.Endpoint)),
		}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		} else if cfg.TLSSkipVerify {
			opts = append(opts, otlploghttp.WithTLSClientConfig(skipVerifyTLS()))
		}
		exporter, err = otlploghttp.New(ctx, opts...)
	} else {
		opts := []otlploggrpc.Option{
			otlploggrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		} else if cfg.TLSSkipVerify {
			opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewTLS(skipVerifyTLS())))
		}
		exporter, err = otlploggrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	), nil
}

func skipVerifyTLS() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // User explicitly requested
	}
}

// stripScheme removes http:// or https:// from an endpoint URL.
// The OTEL HTTP exporters expect just host:port, not full URLs.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return endpoint
}
