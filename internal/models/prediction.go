package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority is the maintenance priority tier derived from a combined risk score.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// PriorityForRisk maps a combined risk score to its priority tier. The
// boundaries are strict: exactly 0.8 is High, anything above is Critical.
func PriorityForRisk(risk float64) Priority {
	switch {
	case risk > 0.8:
		return PriorityCritical
	case risk > 0.6:
		return PriorityHigh
	case risk > 0.4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Prediction is one scoring result for one tool. Predictions are append-only:
// each scoring pass stores a new set and never overwrites historical ones.
type Prediction struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ToolCode             string             `bson:"tool_code" json:"tool_code"`
	PassID               string             `bson:"pass_id" json:"pass_id"`
	PredictionDate       time.Time          `bson:"prediction_date" json:"prediction_date"`
	PredictedFailureDate time.Time          `bson:"predicted_failure_date" json:"predicted_failure_date"`
	ConfidenceScore      float64            `bson:"confidence_score" json:"confidence_score"` // combined risk, 0-1
	ConditionRisk        float64            `bson:"condition_risk" json:"condition_risk"`
	AnomalyRisk          float64            `bson:"anomaly_risk" json:"anomaly_risk"`
	DaysUntilMaintenance int                `bson:"days_until_maintenance" json:"days_until_maintenance"`
	MaintenancePriority  Priority           `bson:"maintenance_priority" json:"maintenance_priority"`
	ModelVersion         string             `bson:"model_version" json:"model_version"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
}

// Recommendation is the actionable output derived from a high-risk
// prediction. Recommendations are ephemeral and never persisted.
type Recommendation struct {
	ToolCode          string    `json:"tool_code"`
	Priority          Priority  `json:"priority"`
	RecommendedAction string    `json:"recommended_action"`
	EstimatedCost     float64   `json:"estimated_cost"`
	SuggestedDate     time.Time `json:"suggested_date"`
	Reasoning         string    `json:"reasoning"`
}
