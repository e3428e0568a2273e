package otelfmpy

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu/fmutest"
)

const bouncingBallFile = "models/BouncingBall.fmu"

// harness wires an instrumentor to in-memory telemetry and a fake library.
type harness struct {
	lib    *fmutest.Library
	ns     *fmu.Namespace
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *observer.ObservedLogs
	logger *zap.Logger
	inst   *Instrumentor
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		lib:    fmutest.New().AddModel(bouncingBallFile, fmutest.BouncingBall()),
		spans:  tracetest.NewSpanRecorder(),
		reader: sdkmetric.NewManualReader(),
	}
	h.ns = h.lib.Namespace()

	core, logs := observer.New(zapcore.DebugLevel)
	h.logs = logs
	h.logger = zap.New(core)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(h.reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	base := []Option{
		WithTracerProvider(tp),
		WithMeterProvider(mp),
		WithLogger(h.logger),
		WithNamespace(h.ns),
	}
	h.inst = New(append(base, opts...)...)
	return h
}

func (h *harness) enable(t *testing.T) {
	t.Helper()
	require.NoError(t, h.inst.Enable(context.Background()))
	require.True(t, h.inst.IsActive())
}

func (h *harness) span(t *testing.T, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range h.spans.Ended() {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not found", "no ended span named %q", name)
	return nil
}

func (h *harness) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func eventNames(span sdktrace.ReadOnlySpan) []string {
	events := span.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

// funcPtr identifies a function value for reference comparisons.
func funcPtr(f any) uintptr {
	return reflect.ValueOf(f).Pointer()
}

func threeRowResult() *fmu.SimulationResult {
	return fmu.NewResult(
		[]string{"time", "h", "v"},
		[]float64{0, 0.5, 1.0},
		[]float64{1.0, 0.8, 0.2},
		[]float64{0, -4.9, -9.8},
	)
}
