package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/tool-maintenance/internal/models"
)

var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrDuplicateTool  = errors.New("tool code already exists")
	ErrOpenCheckout   = errors.New("tool already has an open checkout")
	ErrNoOpenCheckout = errors.New("tool has no open checkout")
)

// ToolStore defines the record-store operations for tools.
type ToolStore interface {
	InsertTool(ctx context.Context, tool models.Tool) error
	FindToolByCode(ctx context.Context, toolCode string) (*models.Tool, error)
	FindAllTools(ctx context.Context) ([]models.Tool, error)
	UpdateToolStatus(ctx context.Context, toolCode string, status models.ToolStatus) error
	// FindToolsDueForMaintenance returns tools whose next maintenance due
	// date falls within daysAhead days of now, excluding tools already in
	// maintenance, ordered by due date.
	FindToolsDueForMaintenance(ctx context.Context, now time.Time, daysAhead int) ([]models.Tool, error)
}

// UsageStore defines checkout/checkin episode operations. The single-open-
// checkout invariant is enforced here: OpenCheckout rejects a second open
// record for the same tool with ErrOpenCheckout.
type UsageStore interface {
	OpenCheckout(ctx context.Context, record models.UsageRecord) error
	// CloseCheckout closes the open record for the tool, computing the usage
	// duration and rolling it into the tool's cumulative hours.
	CloseCheckout(ctx context.Context, toolCode string, checkinTime time.Time) (*models.UsageRecord, error)
	// FindUsageHistory returns usage records, newest first. An empty toolCode
	// returns records for all tools.
	FindUsageHistory(ctx context.Context, toolCode string) ([]models.UsageRecord, error)
}

// MaintenanceStore defines maintenance event operations.
type MaintenanceStore interface {
	// RecordMaintenance inserts a service event and updates the owning
	// tool's condition score, last maintenance date and cumulative cost.
	RecordMaintenance(ctx context.Context, record models.MaintenanceRecord) error
	FindMaintenanceHistory(ctx context.Context, toolCode string) ([]models.MaintenanceRecord, error)
}

// PredictionStore defines append-only prediction storage.
type PredictionStore interface {
	InsertPrediction(ctx context.Context, prediction models.Prediction) error
	// FindPredictions returns predictions ordered by confidence descending,
	// then prediction date descending. An empty toolCode returns all.
	FindPredictions(ctx context.Context, toolCode string) ([]models.Prediction, error)
}

// Store bundles every record-store capability the scoring core consumes.
type Store interface {
	ToolStore
	UsageStore
	MaintenanceStore
	PredictionStore
}
