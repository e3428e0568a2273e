package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/otelfmu/internal/config"
)

func TestNewSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	assert.Same(t, core, newSampledCore(core, SamplingConfig{Enabled: false}))
}

func TestNewSampledCore_ErrorsNeverSampled(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled:    true,
		Tick:       config.Duration(time.Minute),
		Initial:    2,
		Thereafter: 0,
	})
	logger := zap.New(sampled)

	for i := 0; i < 10; i++ {
		logger.Info("repeated")
		logger.Error("failure")
	}

	assert.Equal(t, 2, observed.FilterMessage("repeated").Len(), "info is sampled")
	assert.Equal(t, 10, observed.FilterMessage("failure").Len(), "errors always pass")
}

func TestLevelFilterCore(t *testing.T) {
	core, _ := observer.New(TraceLevel)
	f := &levelFilterCore{Core: core, minLevel: zapcore.DebugLevel, maxLevel: zapcore.WarnLevel}

	assert.False(t, f.Enabled(TraceLevel))
	assert.True(t, f.Enabled(zapcore.DebugLevel))
	assert.True(t, f.Enabled(zapcore.InfoLevel))
	assert.True(t, f.Enabled(zapcore.WarnLevel))
	assert.False(t, f.Enabled(zapcore.ErrorLevel))

	child, ok := f.With([]zapcore.Field{zap.String("k", "v")}).(*levelFilterCore)
	if assert.True(t, ok) {
		assert.Equal(t, f.minLevel, child.minLevel)
		assert.Equal(t, f.maxLevel, child.maxLevel)
	}
}
