// internal/app/bootstrap/run.go
package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunOnce drives the same lifecycle as Hooks without serving HTTP: load and
// validate config, connect, bootstrap, verify, disconnect. It returns the
// first error so the caller can exit non-zero.
func RunOnce(ctx context.Context, logger *zap.Logger) error {
	coreCfg, appCfg, err := LoadConfig(logger)
	if err != nil {
		logger.Error("config load failed", zap.Error(err))
		return err
	}
	if err := ValidateConfig(coreCfg, appCfg, logger); err != nil {
		logger.Error("config invalid", zap.Error(err))
		return err
	}

	deps, err := ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = Shutdown(sctx, coreCfg, appCfg, deps, logger)
	}()

	if err := EnsureSchema(ctx, coreCfg, appCfg, deps, logger); err != nil {
		return err
	}
	return Startup(ctx, coreCfg, appCfg, deps, logger)
}
