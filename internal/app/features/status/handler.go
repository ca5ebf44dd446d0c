// internal/app/features/status/handler.go
package status

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/mongoinit/internal/app/system/timeouts"
	"github.com/dalemusser/mongoinit/internal/domain/models"
	"go.uber.org/zap"
)

// Inspector reads the live state of the bootstrapped database.
type Inspector interface {
	Inspect(ctx context.Context) (models.DatabaseState, error)
}

// Reports exposes the most recent bootstrap run.
type Reports interface {
	Last() (models.BootstrapReport, bool)
	LastError() error
}

// Handler serves the bootstrap status.
type Handler struct {
	Inspector Inspector
	Reports   Reports
	Log       *zap.Logger
}

// NewHandler constructs a status Handler.
func NewHandler(inspector Inspector, reports Reports, logger *zap.Logger) *Handler {
	return &Handler{
		Inspector: inspector,
		Reports:   reports,
		Log:       logger,
	}
}

type statusResponse struct {
	Ready  bool                    `json:"ready"`
	Report *models.BootstrapReport `json:"report"`
	Error  string                  `json:"error,omitempty"`
	State  *models.DatabaseState   `json:"state,omitempty"`
}

// Serve handles GET /status.
//
// 200 with the last report and current state; "ready" is true once a run
// has succeeded. 503 when the state cannot be read.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	var resp statusResponse
	if report, ok := h.Reports.Last(); ok {
		resp.Report = &report
		resp.Ready = report.Succeeded()
	}
	if err := h.Reports.LastError(); err != nil {
		resp.Error = err.Error()
	}

	state, err := h.Inspector.Inspect(ctx)
	if err != nil {
		h.Log.Error("status: inspect failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Ready = false
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	resp.State = &state

	_ = json.NewEncoder(w).Encode(resp)
}
