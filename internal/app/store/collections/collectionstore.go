package collectionstore

import (
	"context"

	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store manages collections in one database.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Create runs createCollection. An existing collection yields
// dberr.ErrCollectionExists when the server reports it; servers that treat
// a repeated create as a no-op return nil, so callers that need a strict
// failure check Exists first.
func (s *Store) Create(ctx context.Context, name string) error {
	if err := s.db.CreateCollection(ctx, name); err != nil {
		return dberr.ClassifyCreateCollection(err)
	}
	zap.L().Info("created collection",
		zap.String("database", s.db.Name()),
		zap.String("collection", name))
	return nil
}

// Exists returns true when name already exists.
// Filtering by name avoids listing the whole database.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, dberr.Classify(err)
	}
	return len(names) > 0, nil
}

// Ensure creates name unless it is already present and reports whether this
// call created it. A collection that appears between the check and the
// create counts as present. A failed check is returned as-is.
func (s *Store) Ensure(ctx context.Context, name string) (created bool, err error) {
	exists, err := s.Exists(ctx, name)
	if err != nil || exists {
		return false, err
	}
	err = s.Create(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case dberr.Kind(err) == dberr.ErrCollectionExists:
		return false, nil
	default:
		return false, err
	}
}

// List returns the names of all collections in the database.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, dberr.Classify(err)
	}
	return names, nil
}

// DatabaseExists reports whether the server has materialized the database.
// Databases only exist once something has been written to them.
func (s *Store) DatabaseExists(ctx context.Context) (bool, error) {
	names, err := s.db.Client().ListDatabaseNames(ctx, bson.D{{Key: "name", Value: s.db.Name()}})
	if err != nil {
		return false, dberr.Classify(err)
	}
	return len(names) > 0, nil
}
