package collectionstore_test

import (
	"testing"

	collectionstore "github.com/dalemusser/mongoinit/internal/app/store/collections"
	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/testutil"
)

func TestStore_Create_MaterializesDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collectionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exists, err := store.DatabaseExists(ctx)
	if err != nil {
		t.Fatalf("DatabaseExists failed: %v", err)
	}
	if exists {
		t.Fatal("expected fresh database to not exist yet")
	}

	if err := store.Create(ctx, "test"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err = store.DatabaseExists(ctx)
	if err != nil {
		t.Fatalf("DatabaseExists failed: %v", err)
	}
	if !exists {
		t.Error("expected database to exist after creating a collection")
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "test" {
		t.Errorf("expected exactly [test], got %v", names)
	}
}

func TestStore_Exists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collectionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exists, err := store.Exists(ctx, "test")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected collection to be absent")
	}

	fx.CreateCollection(ctx, "test")

	exists, err = store.Exists(ctx, "test")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected collection to be present")
	}
}

func TestStore_Create_Existing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collectionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateCollection(ctx, "test")

	// Newer servers accept a repeated create with identical options.
	err := store.Create(ctx, "test")
	if err != nil && dberr.Kind(err) != dberr.ErrCollectionExists {
		t.Fatalf("expected nil or ErrCollectionExists, got %v", err)
	}
}

func TestStore_Ensure_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := collectionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Ensure(ctx, "test")
	if err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	if !created {
		t.Error("expected first Ensure to create the collection")
	}

	created, err = store.Ensure(ctx, "test")
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if created {
		t.Error("expected second Ensure to find the existing collection")
	}
}

func TestStore_Ensure_Unreachable(t *testing.T) {
	store := collectionstore.New(testutil.UnreachableDB(t))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Ensure(ctx, "test")
	if dberr.Kind(err) != dberr.ErrConnection {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if created {
		t.Error("expected nothing to be created")
	}
}
