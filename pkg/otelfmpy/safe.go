package otelfmpy

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// safely runs fn and swallows whatever goes wrong in it. A returned error or
// a panic is logged at debug level under op and never reaches the caller.
func safely(ctx context.Context, logger *zap.Logger, op string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("telemetry recording panicked",
				zap.String("operation", op),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := fn(ctx); err != nil {
		logger.Debug("telemetry recording failed",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}
