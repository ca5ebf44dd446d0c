// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/mongoinit/internal/app/system/initializer"
	"github.com/dalemusser/mongoinit/internal/domain/models"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// HTTP server and logging; everything about the bootstrap lives here.
type AppConfig struct {
	// Administrative MongoDB connection
	MongoURI      string        // connection string with administrative privilege
	MongoDatabase string        // selected database; the collection is created here
	MongoTimeout  time.Duration // connect / server selection timeout
	OpTimeout     time.Duration // per-command timeout

	// Application credential to create
	AppUsername     string // principal name
	AppPassword     string // plaintext secret, hashed by the server
	AppRole         string // role granted to the principal
	AppRoleDatabase string // database the role is scoped to (default: MongoDatabase)
	AppAuthDatabase string // database the principal authenticates against (default: MongoDatabase)

	// Collection to create so the database is materialized
	Collection string

	// InitMode is "create" (fail on existing records) or "ensure" (accept them).
	InitMode string

	// VerifyLogin connects as the new principal after bootstrap.
	VerifyLogin bool
}

// Credential returns the credential described by the config.
func (c AppConfig) Credential() models.Credential {
	authDB := c.AppAuthDatabase
	if authDB == "" {
		authDB = c.MongoDatabase
	}
	roleDB := c.AppRoleDatabase
	if roleDB == "" {
		roleDB = c.MongoDatabase
	}
	return models.Credential{
		Username:     c.AppUsername,
		Password:     c.AppPassword,
		AuthDatabase: authDB,
		Roles:        []models.RoleBinding{{Role: c.AppRole, Database: roleDB}},
	}
}

// InitializerConfig returns the bootstrap input described by the config.
func (c AppConfig) InitializerConfig() initializer.Config {
	return initializer.Config{
		Credential: c.Credential(),
		Collection: c.Collection,
		Mode:       c.InitMode,
	}
}
