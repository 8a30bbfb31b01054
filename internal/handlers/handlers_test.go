package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/tool-maintenance/internal/auth"
	"github.com/ukydev/tool-maintenance/internal/db"
	"github.com/ukydev/tool-maintenance/internal/middleware"
	"github.com/ukydev/tool-maintenance/internal/models"
	"github.com/ukydev/tool-maintenance/internal/qr"
	"github.com/ukydev/tool-maintenance/internal/recommend"
	"github.com/ukydev/tool-maintenance/internal/risk"
	"github.com/ukydev/tool-maintenance/internal/scoring"
)

type fakeStore struct {
	tools       []models.Tool
	usage       []models.UsageRecord
	maintenance []models.MaintenanceRecord
	predictions []models.Prediction
}

func (f *fakeStore) InsertTool(_ context.Context, tool models.Tool) error {
	for _, t := range f.tools {
		if t.ToolCode == tool.ToolCode {
			return db.ErrDuplicateTool
		}
	}
	f.tools = append(f.tools, tool)
	return nil
}

func (f *fakeStore) FindToolByCode(_ context.Context, toolCode string) (*models.Tool, error) {
	for i := range f.tools {
		if f.tools[i].ToolCode == toolCode {
			return &f.tools[i], nil
		}
	}
	return nil, db.ErrToolNotFound
}

func (f *fakeStore) FindAllTools(_ context.Context) ([]models.Tool, error) {
	return f.tools, nil
}

func (f *fakeStore) UpdateToolStatus(_ context.Context, toolCode string, status models.ToolStatus) error {
	for i := range f.tools {
		if f.tools[i].ToolCode == toolCode {
			f.tools[i].Status = status
			return nil
		}
	}
	return db.ErrToolNotFound
}

func (f *fakeStore) FindToolsDueForMaintenance(_ context.Context, now time.Time, daysAhead int) ([]models.Tool, error) {
	cutoff := now.AddDate(0, 0, daysAhead)
	var due []models.Tool
	for _, tool := range f.tools {
		if !tool.NextMaintenanceDue.IsZero() && !tool.NextMaintenanceDue.After(cutoff) {
			due = append(due, tool)
		}
	}
	return due, nil
}

func (f *fakeStore) OpenCheckout(_ context.Context, record models.UsageRecord) error {
	if _, err := f.FindToolByCode(context.Background(), record.ToolCode); err != nil {
		return err
	}
	for _, rec := range f.usage {
		if rec.ToolCode == record.ToolCode && rec.Open() {
			return db.ErrOpenCheckout
		}
	}
	f.usage = append(f.usage, record)
	f.UpdateToolStatus(context.Background(), record.ToolCode, models.StatusInUse)
	return nil
}

func (f *fakeStore) CloseCheckout(_ context.Context, toolCode string, checkinTime time.Time) (*models.UsageRecord, error) {
	if _, err := f.FindToolByCode(context.Background(), toolCode); err != nil {
		return nil, err
	}
	for i := range f.usage {
		if f.usage[i].ToolCode == toolCode && f.usage[i].Open() {
			f.usage[i].CheckinTime = checkinTime
			f.usage[i].UsageDuration = checkinTime.Sub(f.usage[i].CheckoutTime).Hours()
			f.UpdateToolStatus(context.Background(), toolCode, models.StatusAvailable)
			return &f.usage[i], nil
		}
	}
	return nil, db.ErrNoOpenCheckout
}

func (f *fakeStore) FindUsageHistory(_ context.Context, toolCode string) ([]models.UsageRecord, error) {
	if toolCode == "" {
		return f.usage, nil
	}
	var out []models.UsageRecord
	for _, rec := range f.usage {
		if rec.ToolCode == toolCode {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordMaintenance(_ context.Context, record models.MaintenanceRecord) error {
	tool, err := f.FindToolByCode(context.Background(), record.ToolCode)
	if err != nil {
		return err
	}
	tool.ConditionScore = record.ConditionAfter
	tool.LastMaintenanceDate = record.MaintenanceDate
	tool.MaintenanceCost += record.Cost
	f.maintenance = append(f.maintenance, record)
	return nil
}

func (f *fakeStore) FindMaintenanceHistory(_ context.Context, toolCode string) ([]models.MaintenanceRecord, error) {
	if toolCode == "" {
		return f.maintenance, nil
	}
	var out []models.MaintenanceRecord
	for _, rec := range f.maintenance {
		if rec.ToolCode == toolCode {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertPrediction(_ context.Context, prediction models.Prediction) error {
	f.predictions = append(f.predictions, prediction)
	return nil
}

func (f *fakeStore) FindPredictions(_ context.Context, toolCode string) ([]models.Prediction, error) {
	if toolCode == "" {
		return f.predictions, nil
	}
	var out []models.Prediction
	for _, p := range f.predictions {
		if p.ToolCode == toolCode {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[string]models.User
}

func (f *fakeUsers) InsertUser(_ context.Context, user models.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUsers) FindUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return &u, nil
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, _ string) error { return nil }

type testEnv struct {
	store   *fakeStore
	auth    *auth.Service
	model   *risk.Model
	service *scoring.Service
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &fakeStore{}
	users := &fakeUsers{users: make(map[string]models.User)}
	authService, err := auth.NewService("test-secret", "1h")
	require.NoError(t, err)

	model := risk.NewModel()
	service := scoring.NewService(store, model, nil, "", 30)

	router := NewRouter(
		NewAuthHandler(authService, users),
		NewToolHandler(store),
		NewMaintenanceHandler(store, recommend.DefaultUrgencyConfig()),
		NewPredictionHandler(store, model, service),
		middleware.NewAuthMiddleware(authService),
	)

	return &testEnv{store: store, auth: authService, model: model, service: service, router: router}
}

func (e *testEnv) token(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := e.auth.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: "test-" + string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetTool(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleManager)

	tool := models.Tool{ToolCode: "DRL-001", ToolName: "Cordless Drill", Category: "power_tool", ConditionScore: 9}
	w := env.do(t, "POST", "/api/tools", token, tool)
	assert.Equal(t, http.StatusCreated, w.Code)

	// duplicate code conflicts
	w = env.do(t, "POST", "/api/tools", token, tool)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "GET", "/api/tools/DRL-001", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tool models.Tool `json:"tool"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Cordless Drill", resp.Tool.ToolName)
	assert.Equal(t, models.StatusAvailable, resp.Tool.Status)

	w = env.do(t, "GET", "/api/tools/MISSING", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateToolValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleManager)

	w := env.do(t, "POST", "/api/tools", token, models.Tool{ToolName: "No Code"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/tools", token, models.Tool{ToolCode: "X-1", ToolName: "Bad Score", ConditionScore: 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutCheckinCycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleOperator)

	env.store.tools = []models.Tool{{ToolCode: "SAW-002", ToolName: "Circular Saw", Status: models.StatusAvailable}}

	w := env.do(t, "POST", "/api/tools/SAW-002/checkout", token, map[string]string{"user_id": "worker-7"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.StatusInUse, env.store.tools[0].Status)

	// second checkout conflicts
	w = env.do(t, "POST", "/api/tools/SAW-002/checkout", token, map[string]string{"user_id": "worker-8"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "POST", "/api/tools/SAW-002/checkin", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusAvailable, env.store.tools[0].Status)

	// checkin without open checkout conflicts
	w = env.do(t, "POST", "/api/tools/SAW-002/checkin", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// unknown tool
	w = env.do(t, "POST", "/api/tools/MISSING/checkout", token, map[string]string{"user_id": "worker-7"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutUserFromClaims(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleOperator)

	env.store.tools = []models.Tool{{ToolCode: "GRN-003", Status: models.StatusAvailable}}

	w := env.do(t, "POST", "/api/tools/GRN-003/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, env.store.usage, 1)
	assert.Equal(t, "test-operator", env.store.usage[0].UserID)
}

func TestRecordMaintenance(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleOperator)

	env.store.tools = []models.Tool{{ToolCode: "WLD-004", ConditionScore: 4}}

	record := models.MaintenanceRecord{
		ToolCode:        "WLD-004",
		MaintenanceType: "repair",
		Cost:            75,
		ConditionAfter:  9,
	}
	w := env.do(t, "POST", "/api/maintenance", token, record)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 9.0, env.store.tools[0].ConditionScore)
	assert.Equal(t, 75.0, env.store.tools[0].MaintenanceCost)

	record.ToolCode = "MISSING"
	w = env.do(t, "POST", "/api/maintenance", token, record)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDueToolsWithUrgency(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleViewer)

	now := time.Now()
	env.store.tools = []models.Tool{
		{ToolCode: "OVR-001", NextMaintenanceDue: now.AddDate(0, 0, -5)},
		{ToolCode: "FAR-002", NextMaintenanceDue: now.AddDate(0, 0, 90)},
	}

	w := env.do(t, "GET", "/api/maintenance/due", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var due []dueTool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &due))
	require.Len(t, due, 1)
	assert.Equal(t, "OVR-001", due[0].Tool.ToolCode)
	assert.Equal(t, recommend.TierOverdue, due[0].Urgency.Tier)

	// widening the window with ?days picks up the far-out tool too
	w = env.do(t, "GET", "/api/maintenance/due?days=120", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &due))
	assert.Len(t, due, 2)

	w = env.do(t, "GET", "/api/maintenance/due?days=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRLabelAndDecode(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleViewer)

	env.store.tools = []models.Tool{{ToolCode: "DRL-001", ToolName: "Cordless Drill"}}

	w := env.do(t, "GET", "/api/tools/DRL-001/qr", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// round-trip the generated label through the decode endpoint
	req := httptest.NewRequest("POST", "/api/qr/decode", bytes.NewReader(w.Body.Bytes()))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ToolCode string `json:"tool_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DRL-001", resp.ToolCode)

	w = env.do(t, "GET", "/api/tools/MISSING/qr", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDecodeUnknownToolLabel(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleViewer)

	png, err := qr.Encode("GHOST-999")
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/qr/decode", bytes.NewReader(png))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunScoringUntrainedModel(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleManager)

	w := env.do(t, "POST", "/api/scoring/run", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTrainingAndScoringEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, models.RoleManager)

	now := time.Now()
	for i := 0; i < 12; i++ {
		env.store.tools = append(env.store.tools, models.Tool{
			ToolCode:       fmt.Sprintf("T-%03d", i),
			Category:       "power_tool",
			Location:       "site_a",
			Status:         models.StatusAvailable,
			ConditionScore: 5 + float64(i%5),
			UsageHours:     float64(50 * i),
			PurchaseDate:   now.AddDate(0, -i-1, 0),
		})
	}

	w := env.do(t, "POST", "/api/training/run", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/scoring/run", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Count)

	w = env.do(t, "GET", "/api/predictions", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "GET", "/api/model/importance", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPermissionEnforcement(t *testing.T) {
	env := newTestEnv(t)

	// viewer cannot create tools
	viewer := env.token(t, models.RoleViewer)
	w := env.do(t, "POST", "/api/tools", viewer, models.Tool{ToolCode: "X-1", ToolName: "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// operator cannot trigger scoring
	operator := env.token(t, models.RoleOperator)
	w = env.do(t, "POST", "/api/scoring/run", operator, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// no token at all
	w = env.do(t, "GET", "/api/tools", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthzSkipsAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	register := models.RegisterRequest{
		Username: "jordan",
		Email:    "jordan@example.com",
		Password: "longenoughpassword",
		Role:     models.RoleOperator,
	}
	w := env.do(t, "POST", "/api/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Token)

	w = env.do(t, "POST", "/api/auth/login", "", models.LoginRequest{Username: "jordan", Password: "longenoughpassword"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/auth/login", "", models.LoginRequest{Username: "jordan", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// duplicate username conflicts
	w = env.do(t, "POST", "/api/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, w.Code)
}
