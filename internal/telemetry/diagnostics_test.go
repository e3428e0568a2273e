package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstallLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	InstallLogger(zap.New(core))
	t.Cleanup(func() { InstallLogger(zap.NewNop()) })

	otel.Handle(errors.New("export failed"))

	entries := logs.FilterMessage("opentelemetry error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "export failed", entries[0].ContextMap()["error"])
}

func TestInstallLogger_Nil(t *testing.T) {
	assert.NotPanics(t, func() { InstallLogger(nil) })
}
