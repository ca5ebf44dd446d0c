// internal/domain/models/report.go
package models

import "time"

// Bootstrap modes.
const (
	ModeCreate = "create" // fail if a record already exists
	ModeEnsure = "ensure" // treat an existing record as success
)

// Step names.
const (
	StepCredential = "create_credential"
	StepCollection = "create_collection"
)

// Step outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// StepResult records what one bootstrap step did.
type StepResult struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// BootstrapReport summarizes one run of the initializer.
type BootstrapReport struct {
	RunID      string       `json:"run_id"`
	Mode       string       `json:"mode"`
	Database   string       `json:"database"`
	Principal  string       `json:"principal"`
	Collection string       `json:"collection"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
}

// Succeeded reports whether every recorded step created or found its record.
func (r BootstrapReport) Succeeded() bool {
	if len(r.Steps) == 0 {
		return false
	}
	for _, s := range r.Steps {
		if s.Outcome == OutcomeFailed || s.Outcome == OutcomeSkipped {
			return false
		}
	}
	return true
}

// Step returns the result recorded for name, if any.
func (r BootstrapReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// DatabaseState is a read-only view of what exists in the target database.
type DatabaseState struct {
	Database       string           `json:"database"`
	DatabaseExists bool             `json:"database_exists"`
	Marker         CollectionMarker `json:"marker"`
	MarkerPresent  bool             `json:"marker_present"`
	Collections    []string         `json:"collections"`
	Principals     []Credential     `json:"principals"`
}
