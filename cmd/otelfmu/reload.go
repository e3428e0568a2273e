package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/otelfmu/internal/config"
)

// watchConfig reloads the config file on change while ctx is live and
// applies the new logging level. Other sections take effect on the next
// invocation. It returns a stop function, which is a no-op when there is no
// file to watch.
func (a *app) watchConfig(ctx context.Context) func() {
	if a.configFile == "" {
		return func() {}
	}
	if _, err := os.Stat(a.configFile); err != nil {
		return func() {}
	}

	w, err := config.NewWatcher(a.configFile, config.WithErrorHandler(func(err error) {
		a.logger.Warn(ctx, "config watcher error", zap.Error(err))
	}))
	if err != nil {
		a.logger.Warn(ctx, "config reload disabled", zap.Error(err))
		return func() {}
	}
	if err := w.Start(ctx, func() { a.reloadConfig(ctx) }); err != nil {
		w.Stop()
		a.logger.Warn(ctx, "config reload disabled", zap.Error(err))
		return func() {}
	}
	return w.Stop
}

// reloadConfig re-reads the config file. An invalid file is reported and
// leaves the running configuration unchanged.
func (a *app) reloadConfig(ctx context.Context) {
	cfg, err := a.loadConfig(a.configFile)
	if err != nil {
		a.logger.Warn(ctx, "config reload failed", zap.String("path", a.configFile), zap.Error(err))
		return
	}

	level := cfg.Logging.ZapLevel()
	if level != a.logger.Level() {
		a.logger.SetLevel(level)
	}
	a.logger.Info(ctx, "configuration reloaded",
		zap.String("path", a.configFile),
		zap.String("logging.level", cfg.Logging.Level),
	)
}
