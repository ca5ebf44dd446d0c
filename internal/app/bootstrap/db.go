// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/app/system/initializer"
	"github.com/dalemusser/mongoinit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the administrative client and prepares the bootstrapper.
// Nothing is written here.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{
		Connect: appCfg.MongoTimeout,
		Short:   appCfg.OpTimeout,
	})

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetServerSelectionTimeout(timeouts.Connect())

	cctx, cancel := context.WithTimeout(ctx, timeouts.Connect())
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect: %w", dberr.Classify(err))
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping: %w", dberr.Classify(err))
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps, err := newDeps(client, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	return deps, nil
}

func newDeps(client *mongo.Client, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	db := client.Database(appCfg.MongoDatabase)
	tracker := initializer.NewTracker()
	boot, err := initializer.New(db, appCfg.InitializerConfig(), tracker, logger)
	if err != nil {
		return DBDeps{}, err
	}
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Initializer:   boot,
		Tracker:       tracker,
	}, nil
}

// EnsureSchema runs the bootstrap: create the application credential, then
// the collection. Any failure aborts startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "bootstrap")
	defer cancel()

	report, err := deps.Initializer.Initialize(ctx)
	if err != nil {
		logger.Error("bootstrap aborted",
			zap.String("run_id", report.RunID),
			zap.NamedError("kind", dberr.Kind(err)),
			zap.Error(err))
		return err
	}
	return nil
}
