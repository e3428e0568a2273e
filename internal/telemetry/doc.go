// Package telemetry configures OpenTelemetry providers for otelfmu.
//
// # Overview
//
// New builds a TracerProvider, MeterProvider and, for OTLP, a LoggerProvider
// from Config and installs the first two as the OTel globals together with
// the W3C Trace Context and Baggage propagators. The exporter selects where
// data goes:
//
//	otlp        traces, metrics and logs to a collector (grpc or http/protobuf)
//	stdout      pretty-printed traces and metrics on stdout
//	prometheus  metrics in a prometheus.Registry, served by internal/http
//	none        providers without exporters; readers come from options
//
// # Usage
//
//	cfg := telemetry.NewDefaultConfig()
//	cfg.Enabled = true
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	inst := otelfmpy.New(
//	    otelfmpy.WithTracerProvider(tel.TracerProvider()),
//	    otelfmpy.WithMeterProvider(tel.MeterProvider()),
//	)
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  exporter: otlp
//	  protocol: grpc
//	  endpoint: "localhost:4317"
//	  service_name: "otelfmu"
//	  sampling:
//	    rate: 1.0
//	  metrics:
//	    enabled: true
//	    export_interval: "15s"
//
// # Error Handling
//
// Telemetry failures do not crash the application. If a provider cannot be
// initialized, the instance is marked degraded, Health reports why, and
// Tracer/Meter fall back to the global providers.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
