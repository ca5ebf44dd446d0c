// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/mongoinit/internal/app/system/timeouts"
	"github.com/dalemusser/mongoinit/internal/app/system/validators"
	"github.com/dalemusser/mongoinit/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for mongoinit.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, app_username, etc.
//   - Environment variables: MONGOINIT_MONGO_URI, MONGOINIT_APP_USERNAME, etc.
//   - Command-line flags: --mongo_uri, --app_username, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI with administrative privilege"},
	{Name: "mongo_database", Default: "flaskdb", Desc: "Database to bootstrap"},
	{Name: "mongo_timeout", Default: "10s", Desc: "Connect / server selection timeout"},
	{Name: "op_timeout", Default: "5s", Desc: "Timeout for each administrative command"},

	// Application credential
	{Name: "app_username", Default: "flaskuser", Desc: "Application principal to create"},
	{Name: "app_password", Default: "changeme", Desc: "Application principal secret"},
	{Name: "app_role", Default: "readWrite", Desc: "Role granted to the application principal"},
	{Name: "app_role_database", Default: "", Desc: "Database the role is scoped to (blank means mongo_database)"},
	{Name: "app_auth_database", Default: "", Desc: "Authentication database of the principal (blank means mongo_database)"},

	// Collection
	{Name: "collection", Default: "test", Desc: "Collection created so the database exists"},

	// Behaviour
	{Name: "init_mode", Default: models.ModeCreate, Desc: "'create' fails if records exist; 'ensure' accepts them"},
	{Name: "verify_login", Default: true, Desc: "Connect as the new principal after bootstrap"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// MONGOINIT_* environment variables and flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MONGOINIT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		MongoTimeout:  appValues.Duration("mongo_timeout", timeouts.DefaultConnect),
		OpTimeout:     appValues.Duration("op_timeout", timeouts.DefaultShort),

		AppUsername:     appValues.String("app_username"),
		AppPassword:     appValues.String("app_password"),
		AppRole:         appValues.String("app_role"),
		AppRoleDatabase: appValues.String("app_role_database"),
		AppAuthDatabase: appValues.String("app_auth_database"),

		Collection: appValues.String("collection"),

		InitMode:    appValues.String("init_mode"),
		VerifyLogin: appValues.Bool("verify_login"),
	}

	if appCfg.AppPassword == "changeme" {
		logger.Warn("using the default application secret; set MONGOINIT_APP_PASSWORD")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Every name is checked here so a bad setting never reaches the server.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.InitMode {
	case models.ModeCreate, models.ModeEnsure:
	default:
		return fmt.Errorf("init_mode must be %q or %q, got %q", models.ModeCreate, models.ModeEnsure, appCfg.InitMode)
	}

	if err := validators.DatabaseName(appCfg.MongoDatabase); err != nil {
		return fmt.Errorf("mongo_database: %w", err)
	}
	if err := validators.CollectionName(appCfg.Collection); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	if _, err := validators.Credential(appCfg.Credential()); err != nil {
		return fmt.Errorf("application credential: %w", err)
	}

	if appCfg.MongoTimeout < 0 || appCfg.OpTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if appCfg.OpTimeout > 0 && appCfg.OpTimeout < 100*time.Millisecond {
		logger.Warn("op_timeout is very short", zap.Duration("op_timeout", appCfg.OpTimeout))
	}

	return nil
}
