// Package scoring orchestrates the batch jobs that tie storage, the risk
// model and alerting together: training runs, scoring passes and the
// maintenance due check.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/tool-maintenance/internal/db"
	"github.com/ukydev/tool-maintenance/internal/features"
	"github.com/ukydev/tool-maintenance/internal/metrics"
	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/recommend"
	"github.com/ukydev/tool-maintenance/internal/risk"
)

const (
	// cacheKeyPredictions holds the latest scoring pass results so read
	// endpoints do not hit storage on every request.
	cacheKeyPredictions     = "latest_predictions"
	cacheKeyRecommendations = "latest_recommendations"

	cacheTTL = 10 * time.Minute
)

// Alerter is the subset of the alerts service the batch jobs use.
type Alerter interface {
	SendMaintenanceAlert(toolsDue []models.Tool, now time.Time) error
	SendHighRiskAlert(predictions []models.Prediction, now time.Time) error
	SendDailySummary(tools []models.Tool, toolsDue []models.Tool, totalUsageHours float64, now time.Time) error
}

// Service runs the scoring pipeline against a record store.
type Service struct {
	store     db.Store
	model     *risk.Model
	alerter   Alerter
	cache     *gocache.Cache
	modelPath string
	leadDays  int
}

// NewService wires the pipeline. modelPath is where fitted state is
// persisted after each successful training run; empty disables persistence.
func NewService(store db.Store, model *risk.Model, alerter Alerter, modelPath string, leadDays int) *Service {
	return &Service{
		store:     store,
		model:     model,
		alerter:   alerter,
		cache:     gocache.New(cacheTTL, 2*cacheTTL),
		modelPath: modelPath,
		leadDays:  leadDays,
	}
}

// buildFeatures loads the full history and assembles one feature vector per
// tool.
func (s *Service) buildFeatures(ctx context.Context, now time.Time) ([]features.FeatureVector, []models.Tool, error) {
	tools, err := s.store.FindAllTools(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load tools: %w", err)
	}
	usage, err := s.store.FindUsageHistory(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("load usage history: %w", err)
	}
	maintenance, err := s.store.FindMaintenanceHistory(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("load maintenance history: %w", err)
	}
	return features.Build(now, tools, usage, maintenance), tools, nil
}

// RunTraining assembles features and fits a fresh model state. Too little
// data is not an error at this level: the previous model stays active and
// the run is logged as skipped.
func (s *Service) RunTraining(ctx context.Context) (map[string]float64, error) {
	now := time.Now()
	vectors, _, err := s.buildFeatures(ctx, now)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	trainMetrics, err := s.model.Train(vectors)
	if errors.Is(err, risk.ErrInsufficientData) {
		metrics.TrainingRuns.WithLabelValues("skipped").Inc()
		return trainMetrics, err
	}
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TrainingRuns.WithLabelValues("success").Inc()

	if s.modelPath != "" {
		if err := s.model.State().Save(s.modelPath); err != nil {
			// The in-memory model is fine, only the restart path is degraded.
			log.WithError(err).Warn("failed to persist model state")
		}
	}
	return trainMetrics, nil
}

// RunScoring scores every tool against the current model, stores one
// prediction per tool under a shared pass ID, refreshes the cached results
// and sends a high-risk alert when any tool clears the alert threshold.
// Individual storage failures are logged and skipped so one bad write does
// not lose the rest of the pass.
func (s *Service) RunScoring(ctx context.Context) ([]models.Prediction, error) {
	now := time.Now()
	vectors, _, err := s.buildFeatures(ctx, now)
	if err != nil {
		return nil, err
	}

	scores, err := s.model.ScoreAll(now, vectors)
	if err != nil {
		return nil, err
	}

	passID := uuid.NewString()
	predictions := make([]models.Prediction, 0, len(scores))
	for _, score := range scores {
		prediction := models.Prediction{
			ToolCode:             score.ToolCode,
			PassID:               passID,
			PredictionDate:       now,
			PredictedFailureDate: score.PredictedFailureDate,
			ConfidenceScore:      score.CombinedRisk,
			ConditionRisk:        score.ConditionRisk,
			AnomalyRisk:          score.AnomalyRisk,
			DaysUntilMaintenance: score.DaysUntilMaintenance,
			MaintenancePriority:  score.Priority,
			ModelVersion:         score.ModelVersion,
			CreatedAt:            now,
		}
		if err := s.store.InsertPrediction(ctx, prediction); err != nil {
			log.WithError(err).WithField("tool_code", score.ToolCode).Error("failed to store prediction")
			continue
		}
		metrics.PredictionsStored.Inc()
		predictions = append(predictions, prediction)
	}

	recommendations := recommend.FromScores(scores)
	s.cache.Set(cacheKeyPredictions, predictions, cacheTTL)
	s.cache.Set(cacheKeyRecommendations, recommendations, cacheTTL)
	metrics.ScoringPasses.Inc()

	if s.alerter != nil {
		if err := s.alerter.SendHighRiskAlert(predictions, now); err != nil {
			log.WithError(err).Error("failed to send high risk alert")
		} else {
			metrics.NotificationsSent.WithLabelValues("high_risk").Inc()
		}
	}

	log.WithFields(log.Fields{
		"pass_id":         passID,
		"predictions":     len(predictions),
		"recommendations": len(recommendations),
	}).Info("scoring pass complete")
	return predictions, nil
}

// RunDueCheck finds tools due for maintenance within the configured lead
// window and sends the maintenance alert.
func (s *Service) RunDueCheck(ctx context.Context) ([]models.Tool, error) {
	now := time.Now()
	due, err := s.store.FindToolsDueForMaintenance(ctx, now, s.leadDays)
	if err != nil {
		return nil, fmt.Errorf("find tools due: %w", err)
	}
	if s.alerter != nil && len(due) > 0 {
		if err := s.alerter.SendMaintenanceAlert(due, now); err != nil {
			log.WithError(err).Error("failed to send maintenance alert")
		} else {
			metrics.NotificationsSent.WithLabelValues("maintenance_due").Inc()
		}
	}
	return due, nil
}

// RunDailySummary sends the inventory summary: tool counts by status,
// cumulative usage hours and the urgent maintenance subset.
func (s *Service) RunDailySummary(ctx context.Context) error {
	now := time.Now()
	tools, err := s.store.FindAllTools(ctx)
	if err != nil {
		return fmt.Errorf("load tools: %w", err)
	}
	due, err := s.store.FindToolsDueForMaintenance(ctx, now, s.leadDays)
	if err != nil {
		return fmt.Errorf("find tools due: %w", err)
	}

	totalHours := 0.0
	for _, tool := range tools {
		totalHours += tool.UsageHours
	}

	if s.alerter == nil {
		return nil
	}
	if err := s.alerter.SendDailySummary(tools, due, totalHours, now); err != nil {
		return err
	}
	metrics.NotificationsSent.WithLabelValues("daily_summary").Inc()
	return nil
}

// CachedPredictions returns the latest scoring pass results, falling back to
// storage when the cache has expired.
func (s *Service) CachedPredictions(ctx context.Context) ([]models.Prediction, error) {
	if cached, ok := s.cache.Get(cacheKeyPredictions); ok {
		return cached.([]models.Prediction), nil
	}
	predictions, err := s.store.FindPredictions(ctx, "")
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyPredictions, predictions, cacheTTL)
	return predictions, nil
}

// CachedRecommendations returns the recommendations derived from the latest
// scoring pass. An empty result with no pass yet is valid: no action needed.
func (s *Service) CachedRecommendations() []models.Recommendation {
	if cached, ok := s.cache.Get(cacheKeyRecommendations); ok {
		return cached.([]models.Recommendation)
	}
	return nil
}
