package testutil

import (
	"context"
	"testing"

	"github.com/dalemusser/mongoinit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// Credential returns the credential the bootstrapper creates by default,
// scoped to the fixture database.
func (f *Fixtures) Credential() models.Credential {
	return models.Credential{
		Username:     "flaskuser",
		Password:     "changeme",
		AuthDatabase: f.db.Name(),
		Roles:        []models.RoleBinding{{Role: "readWrite", Database: f.db.Name()}},
	}
}

// CreatePrincipal creates a user directly, bypassing the stores.
func (f *Fixtures) CreatePrincipal(ctx context.Context, c models.Credential) {
	f.t.Helper()

	roles := bson.A{}
	for _, rb := range c.Roles {
		roles = append(roles, bson.D{{Key: "role", Value: rb.Role}, {Key: "db", Value: rb.Database}})
	}
	cmd := bson.D{
		{Key: "createUser", Value: c.Username},
		{Key: "pwd", Value: c.Password},
		{Key: "roles", Value: roles},
	}
	if err := f.db.Client().Database(c.AuthDatabase).RunCommand(ctx, cmd).Err(); err != nil {
		f.t.Fatalf("failed to create test principal: %v", err)
	}
}

// CreateCollection creates a collection directly, bypassing the stores.
func (f *Fixtures) CreateCollection(ctx context.Context, name string) {
	f.t.Helper()

	if err := f.db.CreateCollection(ctx, name); err != nil {
		f.t.Fatalf("failed to create test collection: %v", err)
	}
}

// CollectionNames lists the collections currently in the database.
func (f *Fixtures) CollectionNames(ctx context.Context) []string {
	f.t.Helper()

	names, err := f.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		f.t.Fatalf("failed to list collections: %v", err)
	}
	return names
}

// DatabaseExists reports whether the server has materialized the database.
func (f *Fixtures) DatabaseExists(ctx context.Context) bool {
	f.t.Helper()

	names, err := f.db.Client().ListDatabaseNames(ctx, bson.D{{Key: "name", Value: f.db.Name()}})
	if err != nil {
		f.t.Fatalf("failed to list databases: %v", err)
	}
	return len(names) == 1
}
