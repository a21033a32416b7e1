// Package handlers provides HTTP handlers for pricing recommendations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/pricing/internal/modules/optimization"
	"github.com/aristath/pricing/internal/modules/recommendation"
	"github.com/aristath/pricing/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BatchObserver is notified after every generated recommendation batch.
type BatchObserver interface {
	ObserveBatch(strategy optimization.Strategy, days int, elapsed time.Duration)
}

// Handler handles pricing HTTP requests
type Handler struct {
	service  *recommendation.Service
	defaults Defaults
	observer BatchObserver
	now      func() time.Time
	log      zerolog.Logger
}

// NewHandler creates a new pricing handler
func NewHandler(service *recommendation.Service, defaults Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		defaults: defaults.withFallbacks(),
		now:      time.Now,
		log:      log.With().Str("handler", "pricing").Logger(),
	}
}

// SetObserver registers a batch observer.
func (h *Handler) SetObserver(o BatchObserver) {
	h.observer = o
}

// HandleRecommendations handles POST /api/pricing/recommendations
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	var body RecommendationsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.defaults.Request(body, h.now())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stop := utils.OperationTimer("pricing_recommendations", h.log)
	result, err := h.service.GenerateRecommendations(req)
	elapsed := stop()
	if err != nil {
		h.writeError(w, StatusFor(err), err.Error())
		return
	}
	if h.observer != nil {
		h.observer.ObserveBatch(req.Constraints.Strategy, len(result.Recommendations), elapsed)
	}

	runID := uuid.New().String()
	h.log.Info().
		Str("run_id", runID).
		Int("days", len(result.Recommendations)).
		Msg("Served pricing recommendations")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"run_id":    runID,
			"timestamp": h.now().UTC().Format(time.RFC3339),
		},
	})
}

// HandleAnalysis handles POST /api/pricing/analysis
func (h *Handler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	var body AnalysisBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	history, err := History(body.History)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.service.Analyze(history),
		"metadata": map[string]interface{}{
			"sample_size": len(history),
			"timestamp":   h.now().UTC().Format(time.RFC3339),
		},
	})
}

// HandleOptimize handles POST /api/pricing/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var body OptimizeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.BasePrice <= 0 {
		h.writeError(w, http.StatusBadRequest, "base_price must be positive")
		return
	}

	constraints, err := h.defaults.Constraints(body.Constraints)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.service.Optimizer().Optimize(optimization.Input{
		Elasticity:         body.Elasticity,
		PredictedOccupancy: body.PredictedOccupancy,
		BasePrice:          body.BasePrice,
		Constraints:        constraints,
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

// HandleStrategies handles GET /api/pricing/strategies
func (h *Handler) HandleStrategies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"strategies": optimization.Profiles(),
			"default":    h.defaults.Strategy,
		},
	})
}

// StatusFor maps core errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, recommendation.ErrInvalidForecastDays),
		errors.Is(err, recommendation.ErrInvalidAveragePrice),
		errors.Is(err, recommendation.ErrMissingToday),
		errors.Is(err, recommendation.ErrInvalidConstraints),
		errors.Is(err, optimization.ErrUnknownStrategy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
