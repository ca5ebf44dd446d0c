// Package initializer bootstraps a fresh MongoDB instance for an application:
// it creates the application's credential and the first collection of its
// database, so the database exists before the application's first write.
//
// The two steps run in order on one client. In ModeCreate (the default) any
// record that already exists is a failure and stops the run; in ModeEnsure
// existing records are accepted as-is. Nothing is retried or rolled back.
package initializer

import (
	"context"
	"fmt"
	"time"

	collectionstore "github.com/dalemusser/mongoinit/internal/app/store/collections"
	principalstore "github.com/dalemusser/mongoinit/internal/app/store/principals"
	"github.com/dalemusser/mongoinit/internal/app/system/dberr"
	"github.com/dalemusser/mongoinit/internal/app/system/timeouts"
	"github.com/dalemusser/mongoinit/internal/app/system/validators"
	"github.com/dalemusser/mongoinit/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config describes the records to create.
type Config struct {
	// Credential to create. An empty AuthDatabase defaults to the selected
	// database; every role binding must name its database.
	Credential models.Credential
	// Collection to create in the selected database.
	Collection string
	// Mode is models.ModeCreate or models.ModeEnsure. Empty means create.
	Mode string
}

// Initializer runs the bootstrap against one selected database.
type Initializer struct {
	db          *mongo.Database
	principals  *principalstore.Store
	collections *collectionstore.Store
	cfg         Config
	tracker     *Tracker
	log         *zap.Logger
}

// New prepares an Initializer for db. It does not touch the server.
func New(db *mongo.Database, cfg Config, tracker *Tracker, logger *zap.Logger) (*Initializer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = models.ModeCreate
	case models.ModeCreate, models.ModeEnsure:
	default:
		return nil, fmt.Errorf("%w: mode must be %q or %q, got %q", dberr.ErrInvalidInput, models.ModeCreate, models.ModeEnsure, cfg.Mode)
	}

	if cfg.Credential.AuthDatabase == "" {
		cfg.Credential.AuthDatabase = db.Name()
	}

	return &Initializer{
		db:          db,
		principals:  principalstore.New(db.Client().Database(cfg.Credential.AuthDatabase)),
		collections: collectionstore.New(db),
		cfg:         cfg,
		tracker:     tracker,
		log: logger.With(
			zap.String("database", db.Name()),
			zap.String("mode", cfg.Mode)),
	}, nil
}

// Marker returns the collection this initializer creates.
func (i *Initializer) Marker() models.CollectionMarker {
	return models.CollectionMarker{Name: i.cfg.Collection, Database: i.db.Name()}
}

func (i *Initializer) validateCredential() error {
	if err := validators.DatabaseName(i.db.Name()); err != nil {
		return err
	}
	_, err := validators.Credential(i.cfg.Credential)
	return err
}

// Initialize creates the credential and then the collection.
//
// The first failure ends the run; later steps are reported as skipped. The
// returned report is always populated, and is recorded in the tracker when
// one was supplied.
func (i *Initializer) Initialize(ctx context.Context) (models.BootstrapReport, error) {
	report := models.BootstrapReport{
		RunID:      uuid.NewString(),
		Mode:       i.cfg.Mode,
		Database:   i.db.Name(),
		Principal:  i.cfg.Credential.Username,
		Collection: i.cfg.Collection,
		StartedAt:  time.Now().UTC(),
	}
	log := i.log.With(zap.String("run_id", report.RunID))
	log.Info("bootstrap starting",
		zap.String("principal", report.Principal),
		zap.String("auth_database", i.cfg.Credential.AuthDatabase),
		zap.String("collection", report.Collection))

	finish := func(err error) (models.BootstrapReport, error) {
		report.FinishedAt = time.Now().UTC()
		if i.tracker != nil {
			i.tracker.Record(report, err)
		}
		if err != nil {
			log.Error("bootstrap failed", zap.Error(err), zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
		} else {
			log.Info("bootstrap complete", zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
		}
		return report, err
	}

	// Reject bad input before anything is written.
	if err := i.validateCredential(); err != nil {
		report.Steps = []models.StepResult{
			failed(models.StepCredential, err),
			{Name: models.StepCollection, Outcome: models.OutcomeSkipped},
		}
		return finish(err)
	}
	if err := validators.CollectionName(i.cfg.Collection); err != nil {
		report.Steps = []models.StepResult{
			{Name: models.StepCredential, Outcome: models.OutcomeSkipped},
			failed(models.StepCollection, err),
		}
		return finish(err)
	}

	outcome, err := i.CreateCredential(ctx)
	if err != nil {
		report.Steps = append(report.Steps,
			failed(models.StepCredential, err),
			models.StepResult{Name: models.StepCollection, Outcome: models.OutcomeSkipped})
		return finish(err)
	}
	report.Steps = append(report.Steps, models.StepResult{Name: models.StepCredential, Outcome: outcome})

	outcome, err = i.CreateCollection(ctx)
	if err != nil {
		report.Steps = append(report.Steps, failed(models.StepCollection, err))
		return finish(err)
	}
	report.Steps = append(report.Steps, models.StepResult{Name: models.StepCollection, Outcome: outcome})

	return finish(nil)
}

// CreateCredential runs the credential step on its own and returns its outcome.
// The role database is not materialized by this step.
func (i *Initializer) CreateCredential(ctx context.Context) (string, error) {
	cred := i.cfg.Credential
	unknown, err := validators.Credential(cred)
	if err != nil {
		return models.OutcomeFailed, fmt.Errorf("create credential: %w", err)
	}

	for _, rb := range unknown {
		ok, err := i.roleExists(ctx, rb)
		if err != nil {
			return models.OutcomeFailed, fmt.Errorf("create credential %q: resolve role %s@%s: %w", cred.Username, rb.Role, rb.Database, err)
		}
		if !ok {
			return models.OutcomeFailed, fmt.Errorf("create credential %q: %w: %s@%s", cred.Username, dberr.ErrUnknownRole, rb.Role, rb.Database)
		}
	}

	if i.cfg.Mode == models.ModeEnsure {
		existing, err := i.getPrincipal(ctx, cred.Username)
		switch {
		case err == nil:
			i.warnRoleDrift(*existing)
			i.log.Info("principal exists", zap.String("principal", cred.Username))
			return models.OutcomeExisting, nil
		case dberr.Kind(err) != dberr.ErrNotFound:
			return models.OutcomeFailed, fmt.Errorf("create credential %q: %w", cred.Username, err)
		}
	}

	cctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "createUser")
	defer cancel()
	if err := i.principals.Create(cctx, cred); err != nil {
		if i.cfg.Mode == models.ModeEnsure && dberr.Kind(err) == dberr.ErrDuplicatePrincipal {
			i.log.Info("principal exists", zap.String("principal", cred.Username))
			return models.OutcomeExisting, nil
		}
		return models.OutcomeFailed, fmt.Errorf("create credential %q: %w", cred.Username, err)
	}

	i.log.Info("created principal",
		zap.String("principal", cred.Username),
		zap.String("auth_database", cred.AuthDatabase),
		zap.Any("roles", cred.Roles))
	return models.OutcomeCreated, nil
}

// CreateCollection runs the collection step on its own and returns its outcome.
// Creating the collection materializes the selected database.
func (i *Initializer) CreateCollection(ctx context.Context) (string, error) {
	name := i.cfg.Collection
	if err := validators.CollectionName(name); err != nil {
		return models.OutcomeFailed, fmt.Errorf("create collection: %w", err)
	}

	if i.cfg.Mode == models.ModeEnsure {
		ectx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "ensureCollection")
		defer cancel()
		created, err := i.collections.Ensure(ectx, name)
		if err != nil {
			return models.OutcomeFailed, fmt.Errorf("create collection %q: %w", name, err)
		}
		if !created {
			i.log.Info("collection exists", zap.String("collection", name))
			return models.OutcomeExisting, nil
		}
		return models.OutcomeCreated, nil
	}

	// Checked first because recent servers accept a repeated create silently.
	lctx, lcancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "listCollections")
	exists, err := i.collections.Exists(lctx, name)
	lcancel()
	if err != nil {
		return models.OutcomeFailed, fmt.Errorf("create collection %q: %w", name, err)
	}
	if exists {
		return models.OutcomeFailed, fmt.Errorf("create collection %q: %w", name, dberr.ErrCollectionExists)
	}

	cctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "createCollection")
	defer cancel()
	if err := i.collections.Create(cctx, name); err != nil {
		return models.OutcomeFailed, fmt.Errorf("create collection %q: %w", name, err)
	}
	return models.OutcomeCreated, nil
}

// Inspect reports what currently exists for the configured database and
// principal. It never writes.
func (i *Initializer) Inspect(ctx context.Context) (models.DatabaseState, error) {
	state := models.DatabaseState{
		Database:    i.db.Name(),
		Marker:      i.Marker(),
		Collections: []string{},
		Principals:  []models.Credential{},
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "inspect")
	defer cancel()

	exists, err := i.collections.DatabaseExists(ctx)
	if err != nil {
		return state, fmt.Errorf("inspect database: %w", err)
	}
	state.DatabaseExists = exists

	if exists {
		names, err := i.collections.List(ctx)
		if err != nil {
			return state, fmt.Errorf("inspect collections: %w", err)
		}
		state.Collections = names
		for _, n := range names {
			if n == i.cfg.Collection {
				state.MarkerPresent = true
			}
		}
	}

	cred, err := i.principals.Get(ctx, i.cfg.Credential.Username)
	switch {
	case err == nil:
		state.Principals = append(state.Principals, *cred)
	case dberr.Kind(err) != dberr.ErrNotFound:
		return state, fmt.Errorf("inspect principals: %w", err)
	}
	return state, nil
}

func (i *Initializer) getPrincipal(ctx context.Context, username string) (*models.Credential, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "usersInfo")
	defer cancel()
	return i.principals.Get(ctx, username)
}

func (i *Initializer) roleExists(ctx context.Context, rb models.RoleBinding) (bool, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), i.log, "rolesInfo")
	defer cancel()
	return i.principals.RoleExists(ctx, rb.Role, rb.Database)
}

// warnRoleDrift logs when an existing principal lacks a configured binding.
// Existing principals are never modified.
func (i *Initializer) warnRoleDrift(existing models.Credential) {
	for _, rb := range i.cfg.Credential.Roles {
		if !existing.HasRole(rb.Role, rb.Database) {
			i.log.Warn("existing principal is missing configured role",
				zap.String("principal", existing.Username),
				zap.String("role", rb.Role),
				zap.String("role_database", rb.Database))
		}
	}
}

func failed(step string, err error) models.StepResult {
	return models.StepResult{Name: step, Outcome: models.OutcomeFailed, Error: err.Error()}
}
