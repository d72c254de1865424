package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fleet-billing-service/internal/models"
	"fleet-billing-service/internal/services"
)

type WatchdogHandler struct {
	watchdogService *services.WatchdogService
	logger          *zap.Logger
}

func NewWatchdogHandler(watchdogService *services.WatchdogService, logger *zap.Logger) *WatchdogHandler {
	return &WatchdogHandler{watchdogService: watchdogService, logger: logger}
}

// RunPass triggers one watchdog sweep. The trigger itself (cron, button,
// timer) lives outside this service; this endpoint is its entry point.
// An optional "as_of" date in the body overrides the evaluation date,
// which is useful for replaying a missed day.
func (h *WatchdogHandler) RunPass(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	if r.Body != nil && r.ContentLength > 0 {
		var request struct {
			AsOf string `json:"as_of"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if request.AsOf != "" {
			parsed, err := time.Parse(models.DateLayout, request.AsOf)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid as_of format. Use YYYY-MM-DD")
				return
			}
			now = parsed
		}
	}

	summary, err := h.watchdogService.RunPass(r.Context(), now)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Partial failure is still a completed pass; the summary carries the
	// per-entity failures.
	respondWithJSON(w, http.StatusOK, summary)
}
