// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/mongoinit/internal/app/system/initializer"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to EnsureSchema, Startup,
// BuildHandler, and Shutdown.
type DBDeps struct {
	// Administrative MongoDB client and the selected database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Bootstrapper for MongoDatabase and the record of its last run
	Initializer *initializer.Initializer
	Tracker     *initializer.Tracker
}
