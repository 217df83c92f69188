package stats

import (
	"net/http"

	"github.com/ayush/greenprompt/backend/internal/httpx"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
)

type Handler struct {
	agg    *Aggregator
	logger logging.Logger
}

func NewHandler(agg *Aggregator, logger logging.Logger) *Handler {
	return &Handler{agg: agg, logger: logger}
}

// Get returns the current platform totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.agg.Snapshot(r.Context())
	if err != nil {
		httpx.WriteError(r.Context(), w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.StatsResponse{
		Users:            snap.Users,
		CO2SavedKg:       snap.CO2SavedKg,
		CO2SavedG:        snap.CO2SavedKg * 1000,
		PromptsOptimized: snap.PromptsOptimized,
		EnergySavedKWh:   snap.EnergySavedKWh,
		ImpactScore:      snap.ImpactScore,
	})
}
