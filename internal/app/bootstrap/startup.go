// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/mongoinit/internal/app/system/logincheck"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after EnsureSchema has bootstrapped the database. When
// verify_login is set it proves the new credential works by connecting with
// it, the same way the application will.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if !appCfg.VerifyLogin {
		logger.Info("login check disabled")
		return nil
	}
	return logincheck.Verify(ctx, appCfg.MongoURI, appCfg.Credential(), appCfg.MongoDatabase, logger)
}
