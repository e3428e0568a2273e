// Package config loads otelfmu configuration.
//
// Sections are plain structs with koanf tags owned by the packages that use
// them (logging.Config, telemetry.Config, ...). Load fills a struct that
// already holds its defaults, so keys absent from every source keep their
// default value.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "OTELFMU_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrConfigFile is returned when the config file cannot be used.
var ErrConfigFile = errors.New("config file rejected")

// DefaultPath returns ~/.config/otelfmu/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "otelfmu", "config.yaml"), nil
}

// Load overlays the config file at path and then OTELFMU_* environment
// variables onto out, which must be a pointer to a struct holding defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (OTELFMU_TELEMETRY_ENDPOINT, ...)
//  2. Config file
//  3. The values already in out
//
// Files ending in .toml are parsed as TOML, anything else as YAML. A missing
// file is not an error; an empty path skips the file. The file must have
// 0600 or 0400 permissions and be at most 1MB.
//
// # Environment Variable Mapping
//
// After the prefix, the first underscore separates the section from the
// field and a double underscore descends one level:
//
//	OTELFMU_TELEMETRY_SERVICE_NAME            -> telemetry.service_name
//	OTELFMU_TELEMETRY_METRICS__EXPORT_INTERVAL -> telemetry.metrics.export_interval
//	OTELFMU_HTTP_ADDR                          -> http.addr
//
// If out implements Validator it is validated after loading.
func Load(path string, out any) error {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), parserFor(path)); err != nil {
				return fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", EnvKey), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// EnvKey maps an OTELFMU_* variable name to its config key.
func EnvKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return section
	}
	return section + "." + strings.ReplaceAll(field, "__", ".")
}

// readConfigFile returns the file content, or nil if the file does not
// exist.
func readConfigFile(path string) ([]byte, error) {
	// Open once and validate the descriptor to avoid a TOCTOU race.
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigFile, path, err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// validateConfigFileProperties checks file type, permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}

	// Windows has a different permission model.
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}
