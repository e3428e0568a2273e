package telemetry

import (
	"github.com/go-logr/zapr"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// InstallLogger routes OpenTelemetry SDK diagnostics and export errors to
// logger. It replaces the process-wide otel logger and error handler. A nil
// logger leaves both untouched.
func InstallLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	otel.SetLogger(zapr.NewLogger(logger.Named("otel")))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("opentelemetry error", zap.Error(err))
	}))
}
