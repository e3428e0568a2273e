package main

import (
	"errors"
	"fmt"

	httpserver "github.com/fyrsmithlabs/otelfmu/internal/http"
	"github.com/fyrsmithlabs/otelfmu/internal/logging"
	"github.com/fyrsmithlabs/otelfmu/internal/telemetry"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// appConfig is the full otelfmu configuration file layout.
type appConfig struct {
	Logging         logging.Config        `koanf:"logging"`
	Telemetry       telemetry.Config      `koanf:"telemetry"`
	Instrumentation instrumentationConfig `koanf:"instrumentation"`
	HTTP            httpserver.Config     `koanf:"http"`
}

// instrumentationConfig selects the library namespace and cache bound.
type instrumentationConfig struct {
	Library         string `koanf:"library"`
	CacheMaxEntries int    `koanf:"cache_max_entries"` // 0 = unbounded
}

func defaultConfig() *appConfig {
	return &appConfig{
		Logging:   *logging.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
		Instrumentation: instrumentationConfig{
			Library: fmu.DefaultLibrary,
		},
		HTTP: *httpserver.NewDefaultConfig(),
	}
}

// Validate checks every section.
func (c *appConfig) Validate() error {
	var errs []error
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	if err := c.Instrumentation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("instrumentation: %w", err))
	}
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	return errors.Join(errs...)
}

// Validate checks the instrumentation section.
func (c *instrumentationConfig) Validate() error {
	if c.Library == "" {
		return errors.New("library is required")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must be >= 0, got %d", c.CacheMaxEntries)
	}
	return nil
}
