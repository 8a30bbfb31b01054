package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "tool_inventory", cfg.MongoDatabase)
	assert.Equal(t, 30, cfg.MaintenanceLeadDays)
	assert.Equal(t, 3, cfg.UrgentWithinDays)
	assert.Empty(t, cfg.NotificationEmails)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAINTENANCE_LEAD_DAYS", "14")
	t.Setenv("NOTIFICATION_EMAILS", "ops@example.com, lead@example.com ,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 14, cfg.MaintenanceLeadDays)
	assert.Equal(t, []string{"ops@example.com", "lead@example.com"}, cfg.NotificationEmails)
}

func TestLoad_InvalidWindowsFallBack(t *testing.T) {
	t.Setenv("MAINTENANCE_LEAD_DAYS", "-2")
	t.Setenv("URGENT_WITHIN_DAYS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 30, cfg.MaintenanceLeadDays)
	assert.Equal(t, 3, cfg.UrgentWithinDays)
}
