package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nadmax/tasktracker/internal/httputil"
)

type MetricsProvider interface {
	GetMetrics(ctx context.Context) (*Snapshot, error)
}

type Handler struct {
	provider MetricsProvider
}

func NewHandler(provider MetricsProvider) *Handler {
	return &Handler{provider: provider}
}

// GetMetrics serves GET /api/dashboard.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.provider.GetMetrics(r.Context())
	if err != nil {
		slog.Error("Error fetching dashboard metrics", "error", err)
		httputil.WriteJSONError(w, http.StatusInternalServerError, httputil.CodeInternalError, "Failed to load dashboard metrics")
		return
	}

	httputil.WriteSuccess(w, snapshot)
}
