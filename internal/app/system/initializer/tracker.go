package initializer

import (
	"sync"

	"github.com/dalemusser/mongoinit/internal/domain/models"
)

// Tracker holds the most recent bootstrap report for readers such as the
// status endpoint.
type Tracker struct {
	mu     sync.RWMutex
	report *models.BootstrapReport
	err    error
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record stores report and the error the run ended with.
func (t *Tracker) Record(report models.BootstrapReport, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report = &report
	t.err = err
}

// Last returns the most recent report, or ok=false if none has run.
func (t *Tracker) Last() (report models.BootstrapReport, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.report == nil {
		return models.BootstrapReport{}, false
	}
	return *t.report, true
}

// LastError returns the error the most recent run ended with.
func (t *Tracker) LastError() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}
