package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultTestURI is used when MONGOINIT_TEST_MONGO_URI is unset.
const DefaultTestURI = "mongodb://localhost:27017"

// TestURI returns the MongoDB URI tests connect to.
func TestURI() string {
	if uri := os.Getenv("MONGOINIT_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultTestURI
}

// TestContext returns a context with a timeout suitable for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// UnreachableURI names a port nothing listens on.
const UnreachableURI = "mongodb://127.0.0.1:1"

// AuthTestURI returns the URI of an access-controlled test server, connecting
// as a user allowed to create users. Empty when MONGOINIT_TEST_AUTH_MONGO_URI
// is unset.
func AuthTestURI() string {
	return os.Getenv("MONGOINIT_TEST_AUTH_MONGO_URI")
}

// SetupTestClient connects to the test server, skipping the test when no
// server is reachable. The client is disconnected on cleanup.
func SetupTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	return connectOrSkip(t, options.Client().ApplyURI(TestURI()))
}

// SetupAuthTestDB is SetupTestDB against the access-controlled server. The
// test is skipped when none is configured.
func SetupAuthTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := AuthTestURI()
	if uri == "" {
		t.Skip("MONGOINIT_TEST_AUTH_MONGO_URI not set")
	}
	return setupDB(t, connectOrSkip(t, options.Client().ApplyURI(uri)))
}

// ConnectAs opens a client to uri authenticated as the given principal. The client is disconnected on cleanup.
func ConnectAs(t *testing.T, uri, username, password, authDB string) *mongo.Client {
	t.Helper()
	return connectOrSkip(t, options.Client().
		ApplyURI(uri).
		SetAuth(options.Credential{Username: username, Password: password, AuthSource: authDB}))
}

// UnreachableDB returns a database handle whose client points at
// UnreachableURI. Every operation on it fails once server selection gives up.
func UnreachableDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI(UnreachableURI).
		SetServerSelectionTimeout(300*time.Millisecond))
	if err != nil {
		t.Fatalf("mongo.Connect: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	return client.Database("flaskdb")
}

func connectOrSkip(t *testing.T, opts *options.ClientOptions) *mongo.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts.SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	return client
}

// UniqueDBName returns a database name no other test uses.
func UniqueDBName() string {
	return "mongoinit_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// SetupTestDB returns a handle to a fresh, not-yet-materialized database.
// Users created in it and the database itself are removed on cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	return setupDB(t, SetupTestClient(t))
}

func setupDB(t *testing.T, client *mongo.Client) *mongo.Database {
	t.Helper()
	db := client.Database(UniqueDBName())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// dropDatabase leaves users scoped to the database in place.
		_ = db.RunCommand(ctx, bson.D{{Key: "dropAllUsersFromDatabase", Value: 1}}).Err()
		_ = db.Drop(ctx)
	})
	return db
}
