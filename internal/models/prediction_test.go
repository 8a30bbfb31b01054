package models

import (
	"testing"
	"time"
)

func TestPriorityForRisk(t *testing.T) {
	tests := []struct {
		name     string
		risk     float64
		expected Priority
	}{
		{"zero risk", 0.0, PriorityLow},
		{"low band", 0.35, PriorityLow},
		{"exactly 0.4 stays low", 0.4, PriorityLow},
		{"medium band", 0.5, PriorityMedium},
		{"exactly 0.6 stays medium", 0.6, PriorityMedium},
		{"high band", 0.7, PriorityHigh},
		{"exactly 0.8 stays high", 0.8, PriorityHigh},
		{"just above 0.8 is critical", 0.8000001, PriorityCritical},
		{"critical band", 0.95, PriorityCritical},
		{"max risk", 1.0, PriorityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PriorityForRisk(tt.risk)
			if result != tt.expected {
				t.Errorf("PriorityForRisk(%v) = %v, want %v", tt.risk, result, tt.expected)
			}
		})
	}
}

func TestUsageRecord_Open(t *testing.T) {
	open := &UsageRecord{ToolCode: "TL-001", CheckoutTime: time.Now()}
	if !open.Open() {
		t.Errorf("record without checkin time should be open")
	}

	closed := &UsageRecord{ToolCode: "TL-001", CheckoutTime: time.Now(), CheckinTime: time.Now()}
	if closed.Open() {
		t.Errorf("record with checkin time should not be open")
	}
}

func TestIsValidStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   ToolStatus
		expected bool
	}{
		{"available", StatusAvailable, true},
		{"in use", StatusInUse, true},
		{"maintenance", StatusMaintenance, true},
		{"invalid status", "retired", false},
		{"empty status", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidStatus(tt.status)
			if result != tt.expected {
				t.Errorf("IsValidStatus(%s) = %v, want %v", tt.status, result, tt.expected)
			}
		})
	}
}
