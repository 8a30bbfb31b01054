package risk

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/ukydev/tool-maintenance/internal/features"
	"github.com/ukydev/tool-maintenance/internal/models"
)

var (
	// ErrInsufficientData means too few feature rows to train. Training is
	// skipped and any previously trained state stays active.
	ErrInsufficientData = errors.New("insufficient data for training")
	// ErrModelNotTrained means scoring was requested with no fitted model.
	// Callers must treat this as predictions unavailable, never zero risk.
	ErrModelNotTrained = errors.New("model not trained")
)

// MinTrainingSamples is the minimum number of tools required to fit.
const MinTrainingSamples = 11

const (
	modelVersion    = "1.0"
	conditionWeight = 0.7
	anomalyWeight   = 0.3
	ridgeLambda     = 1.0
	maxLeadDays     = 30
)

// ModelState is one complete fitted model: scaler, regressor, anomaly
// detector, frozen categorical encoders and the feature-column order they
// were fit against. It is immutable once built; a retrain produces a fresh
// state swapped in whole.
type ModelState struct {
	Version         string             `json:"version"`
	TrainedAt       time.Time          `json:"trained_at"`
	Columns         []string           `json:"columns"`
	Scaler          *Scaler            `json:"scaler"`
	Regressor       *RidgeRegressor    `json:"regressor"`
	Detector        *AnomalyDetector   `json:"detector"`
	CategoryEncoder *features.Encoder  `json:"category_encoder"`
	LocationEncoder *features.Encoder  `json:"location_encoder"`
	StatusEncoder   *features.Encoder  `json:"status_encoder"`
}

// Score is the per-tool output of one scoring call.
type Score struct {
	ToolCode             string
	ConditionRisk        float64
	AnomalyRisk          float64
	CombinedRisk         float64
	DaysUntilMaintenance int
	PredictedFailureDate time.Time
	Priority             models.Priority
	ModelVersion         string
}

// Model holds the current fitted state behind an atomic pointer: a retrain
// replaces the whole state in one swap, so no reader ever observes an
// encoder mismatched with a different scaler.
type Model struct {
	state atomic.Pointer[ModelState]
}

// NewModel returns an untrained model.
func NewModel() *Model {
	return &Model{}
}

// NewModelWithState returns a model seeded with previously persisted state.
func NewModelWithState(state *ModelState) *Model {
	m := &Model{}
	if state != nil {
		m.state.Store(state)
	}
	return m
}

// State returns the current fitted state, or nil when untrained.
func (m *Model) State() *ModelState {
	return m.state.Load()
}

// Trained reports whether a fitted state is present.
func (m *Model) Trained() bool {
	return m.state.Load() != nil
}

// Train fits a new model state from the feature vectors. With fewer than
// MinTrainingSamples rows it returns an empty metrics map and
// ErrInsufficientData, leaving any prior state untouched. On success the
// returned metrics hold condition_rmse and condition_r2 from a deterministic
// 80/20 holdout, and the new state replaces the old one atomically.
func (m *Model) Train(vectors []features.FeatureVector) (map[string]float64, error) {
	if len(vectors) < MinTrainingSamples {
		log.WithField("rows", len(vectors)).Warn("insufficient data for training, keeping previous model")
		return map[string]float64{}, ErrInsufficientData
	}

	categories := make([]string, len(vectors))
	locations := make([]string, len(vectors))
	statuses := make([]string, len(vectors))
	for i, vec := range vectors {
		categories[i] = vec.Category
		locations[i] = vec.Location
		statuses[i] = vec.Status
	}

	state := &ModelState{
		Version:         modelVersion,
		TrainedAt:       time.Now(),
		Columns:         append([]string(nil), features.Columns...),
		CategoryEncoder: features.FitEncoder(categories),
		LocationEncoder: features.FitEncoder(locations),
		StatusEncoder:   features.FitEncoder(statuses),
	}

	rows := make([][]float64, len(vectors))
	targets := make([]float64, len(vectors))
	for i, vec := range vectors {
		rows[i] = vec.Row(state.CategoryEncoder, state.LocationEncoder, state.StatusEncoder)
		// Degradation target: grows as condition worsens.
		targets[i] = 10 - vec.ConditionScore
	}

	state.Scaler = FitScaler(rows)
	scaled := state.Scaler.TransformAll(rows)

	// Holdout evaluation: fit on 80% and measure on the rest.
	trainIdx, testIdx := holdoutSplit(len(scaled))
	trainRows := make([][]float64, len(trainIdx))
	trainTargets := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainRows[i] = scaled[idx]
		trainTargets[i] = targets[idx]
	}
	holdout, err := FitRidge(trainRows, trainTargets, ridgeLambda)
	if err != nil {
		log.WithError(err).Error("failed to fit degradation regressor")
		return map[string]float64{}, err
	}
	metrics := evaluate(holdout, scaled, targets, testIdx)

	// The shipped regressor is refit on the full dataset.
	regressor, err := FitRidge(scaled, targets, ridgeLambda)
	if err != nil {
		log.WithError(err).Error("failed to fit degradation regressor")
		return map[string]float64{}, err
	}
	state.Regressor = regressor
	state.Detector = FitAnomalyDetector(scaled)
	m.state.Store(state)

	log.WithFields(log.Fields{
		"rows":           len(vectors),
		"condition_rmse": metrics["condition_rmse"],
		"condition_r2":   metrics["condition_r2"],
	}).Info("risk model trained")
	return metrics, nil
}

// ScoreAll scores every feature vector against the current state, returning
// results ordered by combined risk descending. With no fitted state it logs
// a warning and returns ErrModelNotTrained with no scores.
func (m *Model) ScoreAll(now time.Time, vectors []features.FeatureVector) ([]Score, error) {
	state := m.state.Load()
	if state == nil {
		log.Warn("scoring requested before training, predictions unavailable")
		return nil, ErrModelNotTrained
	}

	scores := make([]Score, 0, len(vectors))
	for _, vec := range vectors {
		row := state.Scaler.Transform(vec.Row(state.CategoryEncoder, state.LocationEncoder, state.StatusEncoder))

		conditionRisk := clamp(state.Regressor.Predict(row)/10, 0, 1)
		// Logistic transform of the decision value: more anomalous rows
		// (negative decisions) map closer to 1.
		anomalyRisk := 1 / (1 + math.Exp(state.Detector.Decision(row)))
		combined := conditionWeight*conditionRisk + anomalyWeight*anomalyRisk

		days := int(math.Round(maxLeadDays * (1 - combined)))
		if days < 1 {
			days = 1
		}

		scores = append(scores, Score{
			ToolCode:             vec.ToolCode,
			ConditionRisk:        conditionRisk,
			AnomalyRisk:          anomalyRisk,
			CombinedRisk:         combined,
			DaysUntilMaintenance: days,
			PredictedFailureDate: now.AddDate(0, 0, days),
			Priority:             models.PriorityForRisk(combined),
			ModelVersion:         state.Version,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CombinedRisk > scores[j].CombinedRisk
	})
	return scores, nil
}

// FeatureImportance returns the normalized weight magnitude per feature
// column for the current state, largest contributors first.
func (m *Model) FeatureImportance() map[string]float64 {
	state := m.state.Load()
	if state == nil || state.Regressor == nil {
		return map[string]float64{}
	}
	importance := state.Regressor.Importance()
	out := make(map[string]float64, len(importance))
	for i, v := range importance {
		if i < len(state.Columns) {
			out[state.Columns[i]] = v
		}
	}
	return out
}

// holdoutSplit returns a deterministic 80/20 index split.
func holdoutSplit(n int) (train, test []int) {
	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(n)
	testN := n / 5
	if testN == 0 {
		testN = 1
	}
	return perm[testN:], perm[:testN]
}

func evaluate(regressor *RidgeRegressor, scaled [][]float64, targets []float64, testIdx []int) map[string]float64 {
	estimates := make([]float64, len(testIdx))
	actuals := make([]float64, len(testIdx))
	sumSq := 0.0
	for i, idx := range testIdx {
		estimates[i] = regressor.Predict(scaled[idx])
		actuals[i] = targets[idx]
		diff := estimates[i] - actuals[i]
		sumSq += diff * diff
	}

	metrics := map[string]float64{
		"condition_rmse": math.Sqrt(sumSq / float64(len(testIdx))),
	}
	r2 := stat.RSquaredFrom(estimates, actuals, nil)
	if !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		metrics["condition_r2"] = r2
	}
	return metrics
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
