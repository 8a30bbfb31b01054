package recommend

import (
	"fmt"
	"time"
)

// UrgencyTier classifies a maintenance due date relative to now.
type UrgencyTier string

const (
	TierOverdue UrgencyTier = "overdue"
	TierDueSoon UrgencyTier = "due_soon"
	TierNotDue  UrgencyTier = "not_due"
)

// UrgencyConfig holds the due-date windows, in days.
type UrgencyConfig struct {
	// LeadDays is how far ahead a due date still counts as due-soon.
	LeadDays int
	// UrgentWithinDays marks due-soon items for urgent styling.
	UrgentWithinDays int
}

// DefaultUrgencyConfig matches the standard 30-day lead window with a 3-day
// escalation window.
func DefaultUrgencyConfig() UrgencyConfig {
	return UrgencyConfig{LeadDays: 30, UrgentWithinDays: 3}
}

// Urgency is the classification of one due date: a tier, urgent styling, and
// the human-readable status used verbatim in reports and alert bodies.
type Urgency struct {
	Tier      UrgencyTier `json:"tier"`
	Urgent    bool        `json:"urgent"`
	DaysUntil int         `json:"days_until"`
	Text      string      `json:"text"`
}

// ClassifyUrgency is a pure function of the two timestamps and the
// configured windows; it is shared by due-date reporting and notification
// text generation.
func ClassifyUrgency(dueDate, now time.Time, cfg UrgencyConfig) Urgency {
	days := int(dueDate.Sub(now).Hours() / 24)

	if dueDate.Before(now) {
		overdueBy := int(now.Sub(dueDate).Hours() / 24)
		return Urgency{
			Tier:      TierOverdue,
			Urgent:    true,
			DaysUntil: days,
			Text:      fmt.Sprintf("OVERDUE by %d days", overdueBy),
		}
	}

	if days <= cfg.LeadDays {
		return Urgency{
			Tier:      TierDueSoon,
			Urgent:    days <= cfg.UrgentWithinDays,
			DaysUntil: days,
			Text:      fmt.Sprintf("Due in %d days", days),
		}
	}

	return Urgency{
		Tier:      TierNotDue,
		DaysUntil: days,
		Text:      fmt.Sprintf("Due in %d days", days),
	}
}
