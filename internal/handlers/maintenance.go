package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/tool-maintenance/internal/db"
	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/recommend"
)

// MaintenanceHandler handles maintenance event requests
type MaintenanceHandler struct {
	store   db.Store
	urgency recommend.UrgencyConfig
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(store db.Store, urgency recommend.UrgencyConfig) *MaintenanceHandler {
	return &MaintenanceHandler{store: store, urgency: urgency}
}

// RecordMaintenance stores a service event and applies its side effects to
// the owning tool.
func (h *MaintenanceHandler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var record models.MaintenanceRecord
	if err := json.Unmarshal(body, &record); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if record.ToolCode == "" {
		http.Error(w, "tool_code is required", http.StatusBadRequest)
		return
	}
	if record.ConditionAfter < 0 || record.ConditionAfter > 10 {
		http.Error(w, "condition_after must be between 0 and 10", http.StatusBadRequest)
		return
	}
	if record.MaintenanceDate.IsZero() {
		record.MaintenanceDate = time.Now()
	}
	record.CreatedAt = time.Now()

	if err := h.store.RecordMaintenance(r.Context(), record); err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			http.Error(w, "Tool not found", http.StatusNotFound)
			return
		}
		log.WithError(err).WithField("tool_code", record.ToolCode).Error("failed to record maintenance")
		http.Error(w, "Failed to record maintenance", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// ListMaintenance returns the maintenance history for one tool
func (h *MaintenanceHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if _, err := h.store.FindToolByCode(r.Context(), code); err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			http.Error(w, "Tool not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load tool", http.StatusInternalServerError)
		return
	}

	records, err := h.store.FindMaintenanceHistory(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to load maintenance history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type dueTool struct {
	Tool    models.Tool       `json:"tool"`
	Urgency recommend.Urgency `json:"urgency"`
}

// DueTools returns tools due for maintenance within the configured lead
// window, each annotated with its urgency classification. A days query
// parameter overrides the window.
func (h *MaintenanceHandler) DueTools(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	days := h.urgency.LeadDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}
	tools, err := h.store.FindToolsDueForMaintenance(r.Context(), now, days)
	if err != nil {
		log.WithError(err).Error("failed to find tools due for maintenance")
		http.Error(w, "Failed to find tools due", http.StatusInternalServerError)
		return
	}

	out := make([]dueTool, len(tools))
	for i, tool := range tools {
		out[i] = dueTool{
			Tool:    tool,
			Urgency: recommend.ClassifyUrgency(tool.NextMaintenanceDue, now, h.urgency),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
