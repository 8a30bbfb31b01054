package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/tool-maintenance/internal/db"
	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/risk"
	"github.com/ukydev/tool-maintenance/internal/scoring"
)

// PredictionHandler exposes the scoring pipeline over HTTP
type PredictionHandler struct {
	store   db.Store
	model   *risk.Model
	service *scoring.Service
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(store db.Store, model *risk.Model, service *scoring.Service) *PredictionHandler {
	return &PredictionHandler{store: store, model: model, service: service}
}

// ListPredictions returns the latest scoring pass results
func (h *PredictionHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.service.CachedPredictions(r.Context())
	if err != nil {
		log.WithError(err).Error("failed to load predictions")
		http.Error(w, "Failed to load predictions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// ToolPredictions returns prediction history for one tool, highest
// confidence first
func (h *PredictionHandler) ToolPredictions(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if _, err := h.store.FindToolByCode(r.Context(), code); err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			http.Error(w, "Tool not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load tool", http.StatusInternalServerError)
		return
	}

	predictions, err := h.store.FindPredictions(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to load predictions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// Recommendations returns the actionable recommendations derived from the
// latest scoring pass. An empty list means no tool clears the action
// threshold.
func (h *PredictionHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	recommendations := h.service.CachedRecommendations()
	if recommendations == nil {
		recommendations = []models.Recommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// RunScoring triggers a scoring pass on demand
func (h *PredictionHandler) RunScoring(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.service.RunScoring(r.Context())
	if err != nil {
		if errors.Is(err, risk.ErrModelNotTrained) {
			http.Error(w, "Model not trained, predictions unavailable", http.StatusConflict)
			return
		}
		log.WithError(err).Error("scoring pass failed")
		http.Error(w, "Scoring pass failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// RunTraining triggers a training run on demand and returns the holdout
// metrics
func (h *PredictionHandler) RunTraining(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.RunTraining(r.Context())
	if err != nil {
		if errors.Is(err, risk.ErrInsufficientData) {
			http.Error(w, "Not enough tools to train the model", http.StatusConflict)
			return
		}
		log.WithError(err).Error("training run failed")
		http.Error(w, "Training run failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
		"trained": true,
	})
}

// FeatureImportance returns the fitted model's per-feature weight share
func (h *PredictionHandler) FeatureImportance(w http.ResponseWriter, r *http.Request) {
	if !h.model.Trained() {
		http.Error(w, "Model not trained", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, h.model.FeatureImportance())
}
