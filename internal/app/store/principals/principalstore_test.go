package principalstore_test

import (
	"testing"

	principalstore "github.com/dalemusser/mongoinit/internal/app/store/principals"
	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := principalstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cred := fx.Credential()
	if err := store.Create(ctx, cred); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, cred.Username)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != "flaskuser" {
		t.Errorf("expected user 'flaskuser', got %q", got.Username)
	}
	if got.AuthDatabase != db.Name() {
		t.Errorf("expected auth db %q, got %q", db.Name(), got.AuthDatabase)
	}
	if len(got.Roles) != 1 || !got.HasRole("readWrite", db.Name()) {
		t.Errorf("expected exactly readWrite@%s, got %+v", db.Name(), got.Roles)
	}
	if got.Password != "" {
		t.Error("password must never be read back")
	}

	// Role scoping alone does not materialize the database.
	if fx.DatabaseExists(ctx) {
		t.Error("expected database to not exist after createUser")
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := principalstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cred := fx.Credential()
	fx.CreatePrincipal(ctx, cred)

	err := store.Create(ctx, cred)
	if dberr.Kind(err) != dberr.ErrDuplicatePrincipal {
		t.Fatalf("expected ErrDuplicatePrincipal, got %v", err)
	}
}

func TestStore_Create_WrongDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := principalstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cred := fx.Credential()
	cred.AuthDatabase = "elsewhere"
	if err := store.Create(ctx, cred); dberr.Kind(err) != dberr.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStore_Exists_And_Drop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := principalstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exists, err := store.Exists(ctx, "flaskuser")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected principal to be absent")
	}

	fx.CreatePrincipal(ctx, fx.Credential())

	exists, err = store.Exists(ctx, "flaskuser")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected principal to be present")
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 principal, got %d", len(all))
	}

	if err := store.Drop(ctx, "flaskuser"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if err := store.Drop(ctx, "flaskuser"); dberr.Kind(err) != dberr.ErrNotFound {
		t.Errorf("expected ErrNotFound on second Drop, got %v", err)
	}
	if _, err := store.Get(ctx, "flaskuser"); dberr.Kind(err) != dberr.ErrNotFound {
		t.Errorf("expected ErrNotFound from Get, got %v", err)
	}
}

func TestStore_RoleExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := principalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ok, err := store.RoleExists(ctx, "readWrite", db.Name())
	if err != nil {
		t.Fatalf("RoleExists failed: %v", err)
	}
	if !ok {
		t.Error("expected built-in readWrite to be recognized")
	}

	ok, err = store.RoleExists(ctx, "noSuchRole", db.Name())
	if err != nil {
		t.Fatalf("RoleExists failed: %v", err)
	}
	if ok {
		t.Error("expected unknown role to be unrecognized")
	}
}
