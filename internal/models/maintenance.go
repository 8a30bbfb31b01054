package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceRecord represents one service event for a tool. Recording one
// updates the owning tool's condition score, last maintenance date and
// cumulative maintenance cost.
type MaintenanceRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ToolCode        string             `bson:"tool_code" json:"tool_code"`
	MaintenanceDate time.Time          `bson:"maintenance_date" json:"maintenance_date"`
	MaintenanceType string             `bson:"maintenance_type" json:"maintenance_type"` // "routine", "repair", "calibration", "inspection"
	Description     string             `bson:"description" json:"description"`
	Cost            float64            `bson:"cost" json:"cost"` // USD
	Technician      string             `bson:"technician" json:"technician"`
	ConditionBefore float64            `bson:"condition_before" json:"condition_before"` // 0-10
	ConditionAfter  float64            `bson:"condition_after" json:"condition_after"`   // 0-10
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
