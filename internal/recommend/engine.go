package recommend

import (
	"math"
	"strings"

	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/risk"
)

// RecommendThreshold is the combined-risk cutoff below which no
// recommendation is produced. Absence is a valid outcome meaning no action
// is needed, not an error.
const RecommendThreshold = 0.6

// baseMaintenanceCost anchors the risk-loaded cost estimate, in USD. The
// estimate is a simple linear loading, not a calibrated figure.
const baseMaintenanceCost = 100.0

// componentThreshold is the per-component risk level above which a component
// contributes to the reasoning text.
const componentThreshold = 0.7

// FromScore converts one risk score into an actionable recommendation, or
// nil when the combined risk does not clear RecommendThreshold.
func FromScore(score risk.Score) *models.Recommendation {
	if score.CombinedRisk <= RecommendThreshold {
		return nil
	}

	return &models.Recommendation{
		ToolCode:          score.ToolCode,
		Priority:          score.Priority,
		RecommendedAction: actionFor(score.CombinedRisk),
		EstimatedCost:     estimateCost(score.CombinedRisk),
		SuggestedDate:     score.PredictedFailureDate,
		Reasoning:         reasoningFor(score),
	}
}

// FromScores keeps the input's risk ordering and drops every score below the
// recommendation threshold.
func FromScores(scores []risk.Score) []models.Recommendation {
	recommendations := make([]models.Recommendation, 0, len(scores))
	for _, score := range scores {
		if rec := FromScore(score); rec != nil {
			recommendations = append(recommendations, *rec)
		}
	}
	return recommendations
}

func actionFor(combined float64) string {
	switch {
	case combined > 0.9:
		return "Immediate inspection and preventive maintenance required"
	case combined > 0.8:
		return "Schedule comprehensive maintenance within 3 days"
	case combined > 0.7:
		return "Plan preventive maintenance within 1 week"
	case combined > 0.6:
		return "Monitor closely and schedule routine maintenance"
	default:
		return "Continue normal usage and monitoring"
	}
}

// estimateCost loads the base cost linearly with risk: 1x at zero risk, 3x
// at full risk, rounded to cents.
func estimateCost(combined float64) float64 {
	return math.Round(baseMaintenanceCost*(1+2*combined)*100) / 100
}

func reasoningFor(score risk.Score) string {
	var reasons []string
	if score.ConditionRisk > componentThreshold {
		reasons = append(reasons, "Poor tool condition")
	}
	if score.AnomalyRisk > componentThreshold {
		reasons = append(reasons, "Unusual usage pattern detected")
	}
	if score.CombinedRisk > 0.8 {
		reasons = append(reasons, "High probability of failure")
	}
	if len(reasons) == 0 {
		return "Based on usage patterns and condition"
	}
	return strings.Join(reasons, "; ")
}
