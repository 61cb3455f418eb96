package handler

import (
	"net/http"

	"github.com/iho/shopbook/internal/adapter/http/dto"
	"github.com/iho/shopbook/internal/usecase"
)

// StatsHandler handles dashboard statistics requests.
type StatsHandler struct {
	statsUC *usecase.StatsUseCase
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsUC *usecase.StatsUseCase) *StatsHandler {
	return &StatsHandler{statsUC: statsUC}
}

// Get returns the dashboard aggregate.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsUC.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}
