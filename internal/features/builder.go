package features

import (
	"math"
	"time"

	"github.com/ukydev/tool-maintenance/internal/models"
)

// FeatureVector is the per-tool input row for the risk model, recomputed on
// every scoring pass and never persisted. Every numeric field is finite:
// missing source values default to zero before derivation.
type FeatureVector struct {
	ToolCode string

	ConditionScore           float64
	UsageHours               float64
	DaysSincePurchase        float64
	DaysSinceLastMaintenance float64
	TotalUsageHours          float64
	AvgUsageHours            float64
	UsageCount               float64
	CheckoutCount            float64
	TotalMaintenanceCost     float64
	AvgMaintenanceCost       float64
	MaintenanceCount         float64
	UsageIntensity           float64
	MaintenanceFrequency     float64
	CostPerHour              float64

	Category string
	Location string
	Status   string
}

// Columns is the fixed feature-column order the risk model trains and scores
// with. The three trailing columns are the encoded categorical fields.
var Columns = []string{
	"condition_score",
	"usage_hours",
	"days_since_purchase",
	"days_since_last_maintenance",
	"total_usage_hours",
	"avg_usage_hours",
	"usage_count",
	"checkout_count",
	"total_maintenance_cost",
	"avg_maintenance_cost",
	"maintenance_count",
	"usage_intensity",
	"maintenance_frequency",
	"cost_per_hour",
	"category_encoded",
	"location_encoded",
	"status_encoded",
}

// Row materializes the numeric row in Columns order using the given frozen
// encoders for the categorical fields.
func (f *FeatureVector) Row(category, location, status *Encoder) []float64 {
	return []float64{
		f.ConditionScore,
		f.UsageHours,
		f.DaysSincePurchase,
		f.DaysSinceLastMaintenance,
		f.TotalUsageHours,
		f.AvgUsageHours,
		f.UsageCount,
		f.CheckoutCount,
		f.TotalMaintenanceCost,
		f.AvgMaintenanceCost,
		f.MaintenanceCount,
		f.UsageIntensity,
		f.MaintenanceFrequency,
		f.CostPerHour,
		float64(category.Encode(f.Category)),
		float64(location.Encode(f.Location)),
		float64(status.Encode(f.Status)),
	}
}

type usageAggregate struct {
	totalHours    float64
	episodeCount  float64
	checkoutCount float64
}

type maintenanceAggregate struct {
	totalCost  float64
	count      float64
	latestDate time.Time
}

// Build joins tools with their aggregated usage and maintenance history into
// one feature vector per tool. Tools with no matching history aggregate to
// zero-filled defaults so downstream numeric operations are always defined.
func Build(now time.Time, tools []models.Tool, usage []models.UsageRecord, maintenance []models.MaintenanceRecord) []FeatureVector {
	usageByTool := make(map[string]*usageAggregate)
	for _, record := range usage {
		agg := usageByTool[record.ToolCode]
		if agg == nil {
			agg = &usageAggregate{}
			usageByTool[record.ToolCode] = agg
		}
		agg.checkoutCount++
		if !record.Open() {
			agg.totalHours += record.UsageDuration
			agg.episodeCount++
		}
	}

	maintByTool := make(map[string]*maintenanceAggregate)
	for _, record := range maintenance {
		agg := maintByTool[record.ToolCode]
		if agg == nil {
			agg = &maintenanceAggregate{}
			maintByTool[record.ToolCode] = agg
		}
		agg.totalCost += record.Cost
		agg.count++
		if record.MaintenanceDate.After(agg.latestDate) {
			agg.latestDate = record.MaintenanceDate
		}
	}

	vectors := make([]FeatureVector, 0, len(tools))
	for _, tool := range tools {
		vec := FeatureVector{
			ToolCode:       tool.ToolCode,
			ConditionScore: sanitize(tool.ConditionScore),
			UsageHours:     sanitize(tool.UsageHours),
			Category:       tool.Category,
			Location:       tool.Location,
			Status:         string(tool.Status),
		}

		if agg := usageByTool[tool.ToolCode]; agg != nil {
			vec.TotalUsageHours = agg.totalHours
			vec.UsageCount = agg.episodeCount
			vec.CheckoutCount = agg.checkoutCount
			if agg.episodeCount > 0 {
				vec.AvgUsageHours = agg.totalHours / agg.episodeCount
			}
		}

		lastMaintenance := tool.LastMaintenanceDate
		if agg := maintByTool[tool.ToolCode]; agg != nil {
			vec.TotalMaintenanceCost = agg.totalCost
			vec.MaintenanceCount = agg.count
			if agg.count > 0 {
				vec.AvgMaintenanceCost = agg.totalCost / agg.count
			}
			if agg.latestDate.After(lastMaintenance) {
				lastMaintenance = agg.latestDate
			}
		}

		vec.DaysSincePurchase = daysSince(now, tool.PurchaseDate)
		vec.DaysSinceLastMaintenance = daysSince(now, lastMaintenance)

		// Derived ratios; +1 denominators guard divide-by-zero.
		vec.UsageIntensity = vec.TotalUsageHours / (vec.DaysSincePurchase + 1)
		vec.MaintenanceFrequency = vec.MaintenanceCount / (vec.DaysSincePurchase + 1) * 365
		vec.CostPerHour = vec.TotalMaintenanceCost / (vec.TotalUsageHours + 1)

		vec.UsageIntensity = sanitize(vec.UsageIntensity)
		vec.MaintenanceFrequency = sanitize(vec.MaintenanceFrequency)
		vec.CostPerHour = sanitize(vec.CostPerHour)

		vectors = append(vectors, vec)
	}
	return vectors
}

// daysSince returns elapsed whole days, treating missing or future dates as
// zero elapsed days ("just purchased").
func daysSince(now, then time.Time) float64 {
	if then.IsZero() || then.After(now) {
		return 0
	}
	return math.Floor(now.Sub(then).Hours() / 24)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
