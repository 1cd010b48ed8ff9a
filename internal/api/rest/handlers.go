package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fortuna/splash/internal/scheduler"
	"github.com/fortuna/splash/internal/service"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	scheduleService   *service.ScheduleService
	predictionService *service.PredictionService
	orchestrator      *scheduler.Orchestrator
}

// NewHandler creates a new handler
func NewHandler(scheduleSvc *service.ScheduleService, predictionSvc *service.PredictionService, orchestrator *scheduler.Orchestrator) *Handler {
	return &Handler{
		scheduleService:   scheduleSvc,
		predictionService: predictionSvc,
		orchestrator:      orchestrator,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "splash",
		"version": "1.0.0",
	})
}

// GetNextGame returns the next upcoming game from the schedule page.
// Reconciliation never runs on this path; a stale prediction store does
// not affect the response.
func (h *Handler) GetNextGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.scheduleService.NextGame(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch schedule", err)
		return
	}

	if game == nil {
		respondError(w, http.StatusNotFound, "No upcoming game found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"nextGame": game,
	})
}

// GetRecentGames returns the most recent completed games
func (h *Handler) GetRecentGames(w http.ResponseWriter, r *http.Request) {
	countStr := r.URL.Query().Get("count")
	count := 5 // default
	if countStr != "" {
		if c, err := strconv.Atoi(countStr); err == nil && c > 0 && c <= 82 {
			count = c
		}
	}

	games, err := h.scheduleService.RecentGames(r.Context(), count)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

// GetPredictions returns all predictions, newest input date first
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.predictionService.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch predictions", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// GetPendingPrediction returns the prediction still waiting on an outcome
func (h *Handler) GetPendingPrediction(w http.ResponseWriter, r *http.Request) {
	prediction, err := h.predictionService.GetPending(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch pending prediction", err)
		return
	}

	if prediction == nil {
		respondError(w, http.StatusNotFound, "No pending prediction", nil)
		return
	}

	respondJSON(w, http.StatusOK, prediction)
}

// GetAccuracyMetrics returns MSE/MAE/R² over completed predictions
func (h *Handler) GetAccuracyMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.predictionService.GetAccuracyMetrics(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute accuracy metrics", err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// TriggerReconciliation runs a manual reconciliation pass
func (h *Handler) TriggerReconciliation(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.TriggerManualPass(r.Context()); err != nil {
		respondError(w, http.StatusConflict, "Reconciliation pass failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Reconciliation pass complete",
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
