// Package logincheck confirms that a freshly created credential can be used
// the way the application will use it: authenticate against its auth
// database and read the database its role is scoped to.
package logincheck

import (
	"context"
	"fmt"

	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/app/system/timeouts"
	"github.com/dalemusser/mongoinit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Verify opens a separate client as cred against the hosts in uri, pings,
// and lists the collections of database. Any credentials embedded in uri
// are replaced by cred.
func Verify(ctx context.Context, uri string, cred models.Credential, database string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(
		zap.String("principal", cred.Username),
		zap.String("auth_database", cred.AuthDatabase),
		zap.String("database", database))

	opts := options.Client().
		ApplyURI(uri).
		SetAuth(options.Credential{
			Username:   cred.Username,
			Password:   cred.Password,
			AuthSource: cred.AuthDatabase,
		}).
		SetServerSelectionTimeout(timeouts.Connect())

	cctx, cancel := context.WithTimeout(ctx, timeouts.Connect())
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return fmt.Errorf("login check connect: %w", dberr.Classify(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn("login check disconnect failed", zap.Error(err))
		}
	}()

	pctx, pcancel := context.WithTimeout(ctx, timeouts.Short())
	defer pcancel()
	if err := client.Ping(pctx, readpref.Primary()); err != nil {
		return fmt.Errorf("login check as %q: %w", cred.Username, dberr.Classify(err))
	}

	if _, err := client.Database(database).ListCollectionNames(pctx, bson.D{}); err != nil {
		return fmt.Errorf("login check read %q as %q: %w", database, cred.Username, dberr.Classify(err))
	}

	log.Info("login check passed")
	return nil
}
