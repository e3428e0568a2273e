// Package logging provides structured logging for the otelfmu tools.
//
// # Overview
//
// The package wraps Zap with:
//   - a custom Trace level (-2, below Debug)
//   - console output teed with an OpenTelemetry log bridge
//   - trace_id/span_id injection from the span in the context
//   - level-aware sampling (errors never sampled)
//
// Library packages such as otelfmpy take a plain *zap.Logger; pass
// Logger.Underlying to them.
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithModel(ctx, "BouncingBall.fmu")
//	logger.Info(ctx, "simulation finished", zap.Int("rows", n))
//
// # Configuration Precedence
//
//  1. Defaults (NewDefaultConfig)
//  2. File (otelfmu.yaml)
//  3. Environment variables (OTELFMU_LOGGING_*)
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertField(t, "test message", "key", "value")
package logging
