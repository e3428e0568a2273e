package logging

import (
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerName is the instrumentation scope of logs sent over the bridge.
const loggerName = "github.com/fyrsmithlabs/otelfmu"

// newCore creates a core writing to console and/or the OTEL bridge. Both
// outputs follow level.
func newCore(cfg *Config, level zap.AtomicLevel, otelProvider log.LoggerProvider, w zapcore.WriteSyncer) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, 2)

	if cfg.Output.Console {
		cores = append(cores, zapcore.NewCore(newEncoder(cfg.Format), w, level))
	}

	if cfg.Output.OTEL && otelProvider != nil {
		cores = append(cores, &levelFilterCore{
			Core:     otelzap.NewCore(loggerName, otelzap.WithLoggerProvider(otelProvider)),
			level:    level,
			minLevel: TraceLevel,
			maxLevel: zapcore.FatalLevel,
		})
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	core := cores[0]
	if len(cores) > 1 {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), nil
}
