// Command mongoinit bootstraps a MongoDB instance once and exits: it creates
// the application credential and the application's first collection.
// The exit status is non-zero if any step fails.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/mongoinit/internal/app/bootstrap"
	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunOnce(ctx, logger); err != nil {
		logger.Error("mongoinit failed", zap.NamedError("kind", dberr.Kind(err)), zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("mongoinit complete")
}
