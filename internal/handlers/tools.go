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
	"github.com/ukydev/tool-maintenance/internal/middleware"
	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/qr"
)

// ToolHandler handles tool inventory requests
type ToolHandler struct {
	store db.Store
}

// NewToolHandler creates a new tool handler
func NewToolHandler(store db.Store) *ToolHandler {
	return &ToolHandler{store: store}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CreateTool registers a new tool in the inventory
func (h *ToolHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var tool models.Tool
	if err := json.Unmarshal(body, &tool); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if tool.ToolCode == "" || tool.ToolName == "" {
		http.Error(w, "tool_code and tool_name are required", http.StatusBadRequest)
		return
	}
	if tool.Status == "" {
		tool.Status = models.StatusAvailable
	}
	if !models.IsValidStatus(tool.Status) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if tool.ConditionScore < 0 || tool.ConditionScore > 10 {
		http.Error(w, "condition_score must be between 0 and 10", http.StatusBadRequest)
		return
	}

	if err := h.store.InsertTool(r.Context(), tool); err != nil {
		if errors.Is(err, db.ErrDuplicateTool) {
			http.Error(w, "Tool code already exists", http.StatusConflict)
			return
		}
		log.WithError(err).Error("failed to insert tool")
		http.Error(w, "Failed to create tool", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, tool)
}

// ListTools returns the full inventory
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.store.FindAllTools(r.Context())
	if err != nil {
		log.WithError(err).Error("failed to list tools")
		http.Error(w, "Failed to list tools", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

// GetTool returns one tool with its usage and maintenance history
func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	tool, err := h.store.FindToolByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			http.Error(w, "Tool not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load tool", http.StatusInternalServerError)
		return
	}

	usage, err := h.store.FindUsageHistory(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to load usage history", http.StatusInternalServerError)
		return
	}
	maintenance, err := h.store.FindMaintenanceHistory(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to load maintenance history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tool":                tool,
		"usage_history":       usage,
		"maintenance_history": maintenance,
	})
}

// Checkout opens a usage episode for a tool. A tool with an open checkout
// cannot be checked out again.
func (h *ToolHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req struct {
		UserID string `json:"user_id"`
		Notes  string `json:"notes"`
	}
	if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
		}
	}
	if req.UserID == "" {
		if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
			req.UserID = claims.Username
		}
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	record := models.UsageRecord{
		ToolCode:     code,
		UserID:       req.UserID,
		CheckoutTime: time.Now(),
		UsageType:    "checkout",
		Notes:        req.Notes,
		CreatedAt:    time.Now(),
	}

	if err := h.store.OpenCheckout(r.Context(), record); err != nil {
		switch {
		case errors.Is(err, db.ErrToolNotFound):
			http.Error(w, "Tool not found", http.StatusNotFound)
		case errors.Is(err, db.ErrOpenCheckout):
			http.Error(w, "Tool already checked out", http.StatusConflict)
		default:
			log.WithError(err).WithField("tool_code", code).Error("checkout failed")
			http.Error(w, "Failed to check out tool", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Checkin closes the open usage episode for a tool and rolls the elapsed
// hours into its cumulative usage.
func (h *ToolHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	record, err := h.store.CloseCheckout(r.Context(), code, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, db.ErrToolNotFound):
			http.Error(w, "Tool not found", http.StatusNotFound)
		case errors.Is(err, db.ErrNoOpenCheckout):
			http.Error(w, "Tool is not checked out", http.StatusConflict)
		default:
			log.WithError(err).WithField("tool_code", code).Error("checkin failed")
			http.Error(w, "Failed to check in tool", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// QRLabel renders the tool's printable QR label as PNG
func (h *ToolHandler) QRLabel(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if _, err := h.store.FindToolByCode(r.Context(), code); err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			http.Error(w, "Tool not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load tool", http.StatusInternalServerError)
		return
	}

	png, err := qr.Encode(code)
	if err != nil {
		log.WithError(err).WithField("tool_code", code).Error("failed to encode qr label")
		http.Error(w, "Failed to generate label", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

// DecodeQR reads an uploaded label image and resolves it to a tool
func (h *ToolHandler) DecodeQR(w http.ResponseWriter, r *http.Request) {
	// Limit uploads to 5 MB, labels are tiny.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 5<<20))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	code, err := qr.Decode(body)
	if err != nil {
		http.Error(w, "Could not decode QR label", http.StatusBadRequest)
		return
	}

	tool, err := h.store.FindToolByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			http.Error(w, "Tool not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load tool", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tool_code": code,
		"tool":      tool,
	})
}
