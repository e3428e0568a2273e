package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSection struct {
	Endpoint string   `koanf:"endpoint"`
	Insecure bool     `koanf:"insecure"`
	Rate     float64  `koanf:"rate"`
	Timeout  Duration `koanf:"timeout"`
	Metrics  struct {
		ExportInterval Duration `koanf:"export_interval"`
	} `koanf:"metrics"`
}

type testConfig struct {
	Telemetry testSection `koanf:"telemetry"`
	HTTP      struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`

	validateErr error
}

func (c *testConfig) Validate() error { return c.validateErr }

func defaults() *testConfig {
	c := &testConfig{}
	c.Telemetry.Endpoint = "localhost:4317"
	c.Telemetry.Rate = 1.0
	c.Telemetry.Timeout = Duration(5 * time.Second)
	c.HTTP.Addr = ":9464"
	return c
}

func writeConfig(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg := defaults()
	require.NoError(t, Load("", cfg))
	assert.Equal(t, defaults().Telemetry, cfg.Telemetry)
	assert.Equal(t, ":9464", cfg.HTTP.Addr)
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg := defaults()
	require.NoError(t, Load(filepath.Join(t.TempDir(), "absent.yaml"), cfg))
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  endpoint: collector:4317
  timeout: 10s
  metrics:
    export_interval: 30s
`, 0600)

	cfg := defaults()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Telemetry.Timeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.Telemetry.Metrics.ExportInterval.Duration())
	assert.Equal(t, 1.0, cfg.Telemetry.Rate, "absent keys keep defaults")
	assert.Equal(t, ":9464", cfg.HTTP.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "telemetry:\n  endpoint: collector:4317\n", 0600)
	t.Setenv("OTELFMU_TELEMETRY_ENDPOINT", "env-collector:4317")
	t.Setenv("OTELFMU_TELEMETRY_INSECURE", "true")
	t.Setenv("OTELFMU_TELEMETRY_RATE", "0.25")
	t.Setenv("OTELFMU_TELEMETRY_METRICS__EXPORT_INTERVAL", "1m")
	t.Setenv("OTELFMU_HTTP_ADDR", "127.0.0.1:9000")

	cfg := defaults()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "env-collector:4317", cfg.Telemetry.Endpoint)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, 0.25, cfg.Telemetry.Rate)
	assert.Equal(t, time.Minute, cfg.Telemetry.Metrics.ExportInterval.Duration())
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoad_RejectsInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	path := writeConfig(t, "http:\n  addr: :1\n", 0644)

	err := Load(path, defaults())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigFile)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoad_AcceptsReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	path := writeConfig(t, "http:\n  addr: :1\n", 0400)

	cfg := defaults()
	require.NoError(t, Load(path, cfg))
	assert.Equal(t, ":1", cfg.HTTP.Addr)
}

func TestLoad_RejectsLargeFile(t *testing.T) {
	path := writeConfig(t, "# "+strings.Repeat("x", maxConfigFileSize)+"\n", 0600)

	err := Load(path, defaults())
	assert.ErrorIs(t, err, ErrConfigFile)
	assert.Contains(t, err.Error(), "too large")
}

func TestLoad_RejectsDirectory(t *testing.T) {
	err := Load(t.TempDir(), defaults())
	assert.ErrorIs(t, err, ErrConfigFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "telemetry: [unterminated\n", 0600)
	assert.ErrorContains(t, Load(path, defaults()), "failed to load config file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("OTELFMU_TELEMETRY_TIMEOUT", "soon")
	assert.ErrorContains(t, Load("", defaults()), "failed to unmarshal config")
}

func TestLoad_RunsValidation(t *testing.T) {
	cfg := defaults()
	cfg.validateErr = errors.New("endpoint is required")

	err := Load("", cfg)
	assert.ErrorContains(t, err, "config validation failed: endpoint is required")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"OTELFMU_TELEMETRY_ENDPOINT":                 "telemetry.endpoint",
		"OTELFMU_TELEMETRY_SERVICE_NAME":             "telemetry.service_name",
		"OTELFMU_TELEMETRY_METRICS__EXPORT_INTERVAL": "telemetry.metrics.export_interval",
		"OTELFMU_INSTRUMENTATION_CACHE_MAX_ENTRIES":  "instrumentation.cache_max_entries",
		"OTELFMU_LOGGING":                            "logging",
	}
	for in, want := range tests {
		assert.Equal(t, want, EnvKey(in), in)
	}
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1500ms")))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("later")))
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[telemetry]
endpoint = "collector:4318"
insecure = true
rate = 0.5
timeout = "2s"

[telemetry.metrics]
export_interval = "1m"

[http]
addr = ":9000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := defaults()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "collector:4318", cfg.Telemetry.Endpoint)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, 0.5, cfg.Telemetry.Rate)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.Timeout.Duration())
	assert.Equal(t, time.Minute, cfg.Telemetry.Metrics.ExportInterval.Duration())
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[telemetry\nendpoint = \n"), 0600))

	err := Load(path, defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestParserFor(t *testing.T) {
	assert.IsType(t, tomlParser{}, parserFor("/etc/otelfmu/config.toml"))
	assert.IsType(t, tomlParser{}, parserFor("CONFIG.TOML"))
	assert.NotEqual(t, tomlParser{}, parserFor("config.yaml"))
	assert.NotEqual(t, tomlParser{}, parserFor("config"))
}

func TestTOMLParser_Marshal(t *testing.T) {
	out, err := tomlParser{}.Marshal(map[string]interface{}{
		"http": map[string]interface{}{"addr": ":9464"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "[http]")
	assert.Contains(t, string(out), `addr = ":9464"`)
}
