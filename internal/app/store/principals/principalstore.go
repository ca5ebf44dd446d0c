package principalstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// codeUserNotFound is returned by dropUser for a missing user.
const codeUserNotFound = 11

// Store manages principals whose authentication database is db.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Create runs createUser. The server hashes the secret; it is not kept.
func (s *Store) Create(ctx context.Context, c models.Credential) error {
	if c.AuthDatabase != "" && c.AuthDatabase != s.db.Name() {
		return fmt.Errorf("%w: credential belongs to %q, store manages %q", dberr.ErrInvalidInput, c.AuthDatabase, s.db.Name())
	}

	roles := make(bson.A, 0, len(c.Roles))
	for _, rb := range c.Roles {
		roles = append(roles, bson.D{
			{Key: "role", Value: rb.Role},
			{Key: "db", Value: rb.Database},
		})
	}
	cmd := bson.D{
		{Key: "createUser", Value: c.Username},
		{Key: "pwd", Value: c.Password},
		{Key: "roles", Value: roles},
	}
	if err := s.db.RunCommand(ctx, cmd).Err(); err != nil {
		return dberr.ClassifyCreateUser(err)
	}
	return nil
}

type usersInfoResult struct {
	Users []models.Credential `bson:"users"`
}

// Get loads a principal by name. Returns dberr.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, username string) (*models.Credential, error) {
	cmd := bson.D{{Key: "usersInfo", Value: bson.D{
		{Key: "user", Value: username},
		{Key: "db", Value: s.db.Name()},
	}}}
	var out usersInfoResult
	if err := s.db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return nil, dberr.Classify(err)
	}
	if len(out.Users) == 0 {
		return nil, fmt.Errorf("principal %q in %q: %w", username, s.db.Name(), dberr.ErrNotFound)
	}
	c := out.Users[0]
	return &c, nil
}

// List returns every principal whose authentication database is db.
func (s *Store) List(ctx context.Context) ([]models.Credential, error) {
	var out usersInfoResult
	if err := s.db.RunCommand(ctx, bson.D{{Key: "usersInfo", Value: 1}}).Decode(&out); err != nil {
		return nil, dberr.Classify(err)
	}
	return out.Users, nil
}

// Exists reports whether username is already defined.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.Get(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case dberr.Kind(err) == dberr.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

// RoleExists reports whether the server recognizes role on database roleDB.
// Built-in roles are reported by rolesInfo as well as custom ones.
func (s *Store) RoleExists(ctx context.Context, role, roleDB string) (bool, error) {
	cmd := bson.D{{Key: "rolesInfo", Value: bson.D{
		{Key: "role", Value: role},
		{Key: "db", Value: roleDB},
	}}}
	var out struct {
		Roles []bson.Raw `bson:"roles"`
	}
	if err := s.db.Client().Database(roleDB).RunCommand(ctx, cmd).Decode(&out); err != nil {
		return false, dberr.Classify(err)
	}
	return len(out.Roles) > 0, nil
}

// Drop removes a principal. Returns dberr.ErrNotFound if absent.
func (s *Store) Drop(ctx context.Context, username string) error {
	err := s.db.RunCommand(ctx, bson.D{{Key: "dropUser", Value: username}}).Err()
	if err == nil {
		return nil
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeUserNotFound {
		return fmt.Errorf("principal %q in %q: %w", username, s.db.Name(), dberr.ErrNotFound)
	}
	return dberr.Classify(err)
}
