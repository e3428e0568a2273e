package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/otelfmu/internal/http"
	"github.com/fyrsmithlabs/otelfmu/internal/logging"
	"github.com/fyrsmithlabs/otelfmu/internal/telemetry"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu/fmutest"
	"github.com/fyrsmithlabs/otelfmu/pkg/otelfmpy"
)

// serveFromConfig is the --serve value when the flag is given without an
// address.
const serveFromConfig = "config"

type runOptions struct {
	stopTime    float64
	fmiType     string
	showMetrics bool
	serve       string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <fmu-path>",
		Short: "Simulate an FMU with instrumentation enabled",
		Long: `Simulate an FMU through the instrumented FMPy namespace.

The model description is read and the model simulated with the bundled
reference library. When telemetry is not enabled in the configuration, spans
and metrics are printed to stdout, or exposed on /metrics with --serve.

Examples:
  # Simulate for three seconds
  otelfmu run models/BouncingBall.fmu --stop-time 3

  # Print a metrics summary after the run
  otelfmu run models/BouncingBall.fmu --show-metrics

  # Keep serving /health, /status and /metrics until interrupted
  otelfmu run models/BouncingBall.fmu --serve=:9464`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.runSimulation(cmd.Context(), args[0], opts); err != nil {
				return a.fail("Error running simulation", err)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.stopTime, "stop-time", 1.0, "simulation stop time")
	cmd.Flags().StringVar(&opts.fmiType, "fmi-type", "", "FMI interface to simulate (ModelExchange or CoSimulation)")
	cmd.Flags().BoolVar(&opts.showMetrics, "show-metrics", false, "print a summary of the recorded metrics")
	cmd.Flags().StringVar(&opts.serve, "serve", "", "serve the telemetry endpoint on this address until interrupted (default http.addr)")
	cmd.Flags().Lookup("serve").NoOptDefVal = serveFromConfig

	return cmd
}

// runSimulation instruments the namespace, reads the model description,
// simulates it and reports the outcome.
func (a *app) runSimulation(ctx context.Context, path string, opts runOptions) error {
	if opts.stopTime <= 0 {
		return fmt.Errorf("stop time must be positive, got %g", opts.stopTime)
	}
	switch opts.fmiType {
	case "", fmu.FMITypeModelExchange, fmu.FMITypeCoSimulation:
	default:
		return fmt.Errorf("unknown FMI type %q", opts.fmiType)
	}

	addr := opts.serve
	if addr == serveFromConfig {
		addr = a.cfg.HTTP.Addr
	}

	tcfg := demoTelemetryConfig(a.cfg.Telemetry, addr != "")
	telOpts := []telemetry.Option{telemetry.WithWriter(a.stdout)}
	var reader *sdkmetric.ManualReader
	if opts.showMetrics {
		reader = sdkmetric.NewManualReader()
		telOpts = append(telOpts, telemetry.WithMetricReader(reader))
	}

	tel, err := telemetry.New(ctx, &tcfg, telOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}()

	logger, err := logging.NewLoggerWithWriter(&a.cfg.Logging, tel.LoggerProvider(), a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	telemetry.InstallLogger(logger.Underlying())
	for _, reason := range tel.Health().Reasons {
		logger.Warn(ctx, "telemetry degraded", zap.String("reason", reason))
	}

	a.library.AddModel(path, fmutest.ModelFromPath(path))

	inst := a.instrumentor(
		otelfmpy.WithTracerProvider(tel.TracerProvider()),
		otelfmpy.WithMeterProvider(tel.MeterProvider()),
	)
	if err := inst.Enable(ctx); err != nil {
		return err
	}
	defer func() {
		if err := inst.Disable(context.Background()); err != nil {
			logger.Warn(ctx, "failed to disable instrumentation", zap.Error(err))
		}
	}()

	lib := a.cfg.Instrumentation.Library
	ns, ok := fmu.Lookup(lib)
	if !ok || ns.ReadModelDescription == nil || ns.SimulateFMU == nil {
		return fmt.Errorf("library %q is not available (registered: %s)", lib, strings.Join(fmu.Libraries(), ", "))
	}

	ctx = logging.WithModel(ctx, path)
	md, err := ns.ReadModelDescription(ctx, path)
	if err != nil {
		return fmt.Errorf("reading model description: %w", err)
	}
	res, err := ns.SimulateFMU(ctx, path, fmu.SimulateOptions{
		StopTime: fmu.Float(opts.stopTime),
		FMIType:  opts.fmiType,
	})
	if err != nil {
		return fmt.Errorf("simulating: %w", err)
	}
	logger.Debug(ctx, "simulation finished", zap.Int("rows", res.Rows()))

	if err := tel.ForceFlush(ctx); err != nil {
		logger.Warn(ctx, "telemetry flush failed", zap.Error(err))
	}

	printSummary(a.stdout, md, res)

	if reader != nil {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			return fmt.Errorf("collecting metrics: %w", err)
		}
		printMetrics(a.stdout, rm)
	}

	if addr != "" {
		return a.serve(ctx, inst, tel, addr)
	}
	return nil
}

// demoTelemetryConfig enables telemetry for the demo when the configuration
// leaves it off: console output, or a Prometheus registry when serving.
func demoTelemetryConfig(cfg telemetry.Config, serving bool) telemetry.Config {
	if cfg.Enabled {
		return cfg
	}
	cfg.Enabled = true
	cfg.Exporter = telemetry.ExporterStdout
	if serving {
		cfg.Exporter = telemetry.ExporterPrometheus
	}
	return cfg
}

// serve keeps the telemetry endpoint up until ctx is done or an interrupt
// arrives. Changes to the config file's logging level apply while serving.
func (a *app) serve(ctx context.Context, inst *otelfmpy.Instrumentor, tel *telemetry.Telemetry, addr string) error {
	opts := []httpserver.Option{httpserver.WithHealthSource(tel)}
	if reg := tel.Registry(); reg != nil {
		opts = append(opts, httpserver.WithGatherer(reg))
	}

	cfg := a.cfg.HTTP
	cfg.Addr = addr
	srv, err := httpserver.NewServer(inst, a.logger.Underlying(), &cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopWatch := a.watchConfig(ctx)
	defer stopWatch()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(a.stdout, "Serving telemetry on %s (Ctrl+C to stop)\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.Shutdown.Timeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// printSummary writes a short description of the simulated model.
func printSummary(w io.Writer, md *fmu.ModelDescription, res *fmu.SimulationResult) {
	fmt.Fprintf(w, "Model:    %s (FMI %s)\n", md.ModelName, md.FMIVersion)
	fmt.Fprintf(w, "Samples:  %d\n", res.Rows())
	if t, ok := res.Column(fmu.TimeColumn); ok && len(t) > 0 {
		fmt.Fprintf(w, "Time:     %g .. %g\n", t[0], t[len(t)-1])
	}
	fmt.Fprintf(w, "Columns:  %s\n", strings.Join(res.Names(), ", "))
}
