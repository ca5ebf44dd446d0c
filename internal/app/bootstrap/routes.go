// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/mongoinit/internal/app/features/health"
	statusfeature "github.com/dalemusser/mongoinit/internal/app/features/status"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after the bootstrap (EnsureSchema) and the login check
// (Startup) have completed, so by the time anything is served the database
// is initialized. The routes let orchestrators observe that:
//   - /health: administrative connection is alive
//   - /status: last bootstrap report and the live database state
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	statusHandler := statusfeature.NewHandler(deps.Initializer, deps.Tracker, logger)
	r.Mount("/status", statusfeature.Routes(statusHandler))

	return r, nil
}
