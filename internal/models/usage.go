package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageRecord represents one checkout/checkin episode for a tool. A record
// with a zero CheckinTime is an open checkout; at most one open record may
// exist per tool at a time.
type UsageRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ToolCode      string             `bson:"tool_code" json:"tool_code"`
	UserID        string             `bson:"user_id" json:"user_id"`
	CheckoutTime  time.Time          `bson:"checkout_time" json:"checkout_time"`
	CheckinTime   time.Time          `bson:"checkin_time,omitempty" json:"checkin_time,omitempty"`
	UsageDuration float64            `bson:"usage_duration" json:"usage_duration"` // hours, set at checkin
	UsageType     string             `bson:"usage_type" json:"usage_type"`         // "checkout", "checkin"
	Notes         string             `bson:"notes" json:"notes"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// Open reports whether the record is an open checkout (not yet checked in).
func (u *UsageRecord) Open() bool {
	return u.CheckinTime.IsZero()
}
