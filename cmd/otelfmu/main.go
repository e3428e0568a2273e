// Package main implements the otelfmu CLI: instrumentation control commands
// and a demo that simulates an FMU with tracing and metrics enabled.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/otelfmu/internal/config"
	"github.com/fyrsmithlabs/otelfmu/internal/logging"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu/fmutest"
	"github.com/fyrsmithlabs/otelfmu/pkg/otelfmpy"
)

// errReported marks an error whose message was already written to stderr.
var errReported = errors.New("error reported")

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: logging.Nop()}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

// app holds per-invocation state shared by the commands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	configFile string // resolved from configPath, may be empty

	cfg     *appConfig
	logger  *logging.Logger
	library *fmutest.Library
	inst    *otelfmpy.Instrumentor
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "otelfmu",
		Short: "OpenTelemetry instrumentation for FMU simulations",
		Long: `otelfmu traces and measures FMU model description reads and simulations
performed through the FMPy library namespace.

Examples:
  # Enable instrumentation
  otelfmu instrument

  # Check instrumentation status
  otelfmu status

  # Simulate a model and print the collected metrics
  otelfmu run models/BouncingBall.fmu --stop-time 3 --show-metrics`,
		Version:       otelfmpy.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == cmd.Root() {
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help and fail.
			_ = cmd.Help()
			return errReported
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/otelfmu/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	root.AddCommand(newInstrumentCmd(a))
	root.AddCommand(newUninstrumentCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newRunCmd(a))
	return root
}

// setup loads configuration, builds the console logger and registers the
// reference library under the FMPy namespace.
func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return a.fail("Error loading configuration", err)
	}
	a.cfg = cfg
	a.configFile = path

	logger, err := logging.NewLoggerWithWriter(&cfg.Logging, nil, a.stderr)
	if err != nil {
		return a.fail("Error creating logger", err)
	}
	a.logger = logger

	a.library = fmutest.New()
	fmu.Register(fmu.DefaultLibrary, a.library.Namespace())
	return nil
}

// loadConfig reads path over the defaults and applies the --log-level
// override.
func (a *app) loadConfig(path string) (*appConfig, error) {
	cfg := defaultConfig()
	if err := config.Load(path, cfg); err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// instrumentor returns the invocation's instrumentor, creating it on first
// use with opts.
func (a *app) instrumentor(opts ...otelfmpy.Option) *otelfmpy.Instrumentor {
	if a.inst == nil {
		base := []otelfmpy.Option{
			otelfmpy.WithLogger(a.logger.Underlying()),
			otelfmpy.WithLibrary(a.cfg.Instrumentation.Library),
			otelfmpy.WithCacheMaxEntries(a.cfg.Instrumentation.CacheMaxEntries),
		}
		a.inst = otelfmpy.New(append(base, opts...)...)
	}
	return a.inst
}

// fail prints "<prefix>: <err>" to stderr and returns errReported.
func (a *app) fail(prefix string, err error) error {
	fmt.Fprintf(a.stderr, "%s: %v\n", prefix, err)
	return errReported
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
