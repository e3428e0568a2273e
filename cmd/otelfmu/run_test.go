package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/otelfmu/internal/telemetry"
)

const modelPath = "models/BouncingBall.fmu"

func TestRun_ShowMetrics(t *testing.T) {
	t.Setenv("OTELFMU_TELEMETRY_ENABLED", "true")
	t.Setenv("OTELFMU_TELEMETRY_EXPORTER", "none")

	r := runCLI(t, context.Background(), "run", modelPath, "--stop-time", "2", "--show-metrics")
	require.Equal(t, 0, r.code, r.stderr)

	assert.Contains(t, r.stdout, "Model:    BouncingBall (FMI 2.0)")
	assert.Contains(t, r.stdout, "Time:     0 .. 2")
	assert.Contains(t, r.stdout, "Columns:  time, h, v")
	assert.Contains(t, r.stdout, "METRIC")
	assert.Contains(t, r.stdout, "fmu.simulations.total")
	assert.Contains(t, r.stdout, "fmu.simulation.duration_seconds")
	assert.Contains(t, r.stdout, "count=1 sum=2")
	assert.Contains(t, r.stdout, "fmu.variable.value")
	assert.Contains(t, r.stdout, "fmu.model_cache.lookups")
	assert.Contains(t, r.stdout, "result=hit")
}

func TestRun_StdoutExporterByDefault(t *testing.T) {
	r := runCLI(t, context.Background(), "run", modelPath)
	require.Equal(t, 0, r.code, r.stderr)

	assert.Contains(t, r.stdout, "fmpy.read_model_description")
	assert.Contains(t, r.stdout, "fmpy.simulate_fmu")
	assert.Contains(t, r.stdout, "Model:    BouncingBall (FMI 2.0)")
}

func TestRun_Serve(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	r := runCLI(t, ctx, "run", modelPath, "--serve=127.0.0.1:0")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Serving telemetry on 127.0.0.1:0")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{
			name:    "missing path",
			args:    []string{"run"},
			wantErr: "Error: accepts 1 arg(s), received 0",
		},
		{
			name:    "non-positive stop time",
			args:    []string{"run", modelPath, "--stop-time", "0"},
			wantErr: "Error running simulation: stop time must be positive",
		},
		{
			name:    "unknown fmi type",
			args:    []string{"run", modelPath, "--fmi-type", "Hybrid"},
			wantErr: `Error running simulation: unknown FMI type "Hybrid"`,
		},
		{
			name:    "library not registered",
			env:     map[string]string{"OTELFMU_INSTRUMENTATION_LIBRARY": "not-installed"},
			args:    []string{"run", modelPath},
			wantErr: `Error running simulation: library "not-installed" is not available (registered: fmpy`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			r := runCLI(t, context.Background(), tt.args...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, tt.wantErr)
		})
	}
}

func TestDemoTelemetryConfig(t *testing.T) {
	disabled := *telemetry.NewDefaultConfig()

	cfg := demoTelemetryConfig(disabled, false)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, telemetry.ExporterStdout, cfg.Exporter)

	cfg = demoTelemetryConfig(disabled, true)
	assert.Equal(t, telemetry.ExporterPrometheus, cfg.Exporter)

	enabled := disabled
	enabled.Enabled = true
	cfg = demoTelemetryConfig(enabled, true)
	assert.Equal(t, telemetry.ExporterOTLP, cfg.Exporter, "explicit configuration wins")
	assert.False(t, disabled.Enabled, "input is not modified")
}

func TestPrintMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")
	ctx := context.Background()

	counter, err := meter.Int64Counter("fmu.simulations.total")
	require.NoError(t, err)
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))

	gauge, err := meter.Float64Gauge("fmu.variable.value")
	require.NoError(t, err)
	for i, v := range []float64{1, 0.8, 0.2} {
		gauge.Record(ctx, v, metric.WithAttributes(
			attribute.String("fmu.variable", "h"),
			attribute.Float64("simulation.time", float64(i)*0.5),
		))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var buf bytes.Buffer
	printMetrics(&buf, rm)
	out := buf.String()

	assert.Contains(t, out, "status=success")
	assert.Contains(t, out, "fmu.variable=h")
	assert.NotContains(t, out, "simulation.time")
	assert.Contains(t, out, "samples=3 min=0.2 max=1")
}
