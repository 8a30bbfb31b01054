package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToolStatus is the lifecycle status of a tool.
type ToolStatus string

const (
	StatusAvailable   ToolStatus = "available"
	StatusInUse       ToolStatus = "in_use"
	StatusMaintenance ToolStatus = "maintenance"
)

// IsValidStatus checks if a status value is one of the known lifecycle states.
func IsValidStatus(status ToolStatus) bool {
	switch status {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return true
	default:
		return false
	}
}

// Tool represents a tracked physical tool. ToolCode is the stable key that
// identifies the tool for its entire lifecycle; tools are never deleted.
type Tool struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ToolCode            string             `bson:"tool_code" json:"tool_code"`
	ToolName            string             `bson:"tool_name" json:"tool_name"`
	Category            string             `bson:"category" json:"category"` // "power_tool", "hand_tool", "measuring", "lifting", "safety"
	Location            string             `bson:"location" json:"location"`
	Status              ToolStatus         `bson:"status" json:"status"`
	ConditionScore      float64            `bson:"condition_score" json:"condition_score"` // 0-10, 10 = perfect
	UsageHours          float64            `bson:"usage_hours" json:"usage_hours"`         // cumulative
	PurchaseDate        time.Time          `bson:"purchase_date,omitempty" json:"purchase_date,omitempty"`
	LastMaintenanceDate time.Time          `bson:"last_maintenance_date,omitempty" json:"last_maintenance_date,omitempty"`
	NextMaintenanceDue  time.Time          `bson:"next_maintenance_due,omitempty" json:"next_maintenance_due,omitempty"`
	MaintenanceCost     float64            `bson:"maintenance_cost" json:"maintenance_cost"` // cumulative, USD
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}
