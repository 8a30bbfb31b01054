package handlers

import (
	"net/http"

	"github.com/ukydev/tool-maintenance/internal/middleware"
	"github.com/ukydev/tool-maintenance/internal/metrics"
)

// NewRouter assembles the HTTP API. Auth, tool, maintenance and prediction
// handlers hang off one mux behind the JWT middleware; /healthz and /metrics
// bypass authentication.
func NewRouter(
	authHandler *AuthHandler,
	toolHandler *ToolHandler,
	maintenanceHandler *MaintenanceHandler,
	predictionHandler *PredictionHandler,
	authMW *middleware.AuthMiddleware,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)

	mux.Handle("POST /api/tools",
		authMW.RequirePermission("create_tool")(http.HandlerFunc(toolHandler.CreateTool)))
	mux.Handle("GET /api/tools",
		authMW.RequirePermission("view_tools")(http.HandlerFunc(toolHandler.ListTools)))
	mux.Handle("GET /api/tools/{code}",
		authMW.RequirePermission("view_tools")(http.HandlerFunc(toolHandler.GetTool)))
	mux.Handle("POST /api/tools/{code}/checkout",
		authMW.RequirePermission("checkout_tool")(http.HandlerFunc(toolHandler.Checkout)))
	mux.Handle("POST /api/tools/{code}/checkin",
		authMW.RequirePermission("checkin_tool")(http.HandlerFunc(toolHandler.Checkin)))
	mux.Handle("GET /api/tools/{code}/qr",
		authMW.RequirePermission("view_tools")(http.HandlerFunc(toolHandler.QRLabel)))
	mux.Handle("POST /api/qr/decode",
		authMW.RequirePermission("view_tools")(http.HandlerFunc(toolHandler.DecodeQR)))

	mux.Handle("POST /api/maintenance",
		authMW.RequirePermission("record_maintenance")(http.HandlerFunc(maintenanceHandler.RecordMaintenance)))
	mux.Handle("GET /api/tools/{code}/maintenance",
		authMW.RequirePermission("view_maintenance")(http.HandlerFunc(maintenanceHandler.ListMaintenance)))
	mux.Handle("GET /api/maintenance/due",
		authMW.RequirePermission("view_maintenance")(http.HandlerFunc(maintenanceHandler.DueTools)))

	mux.Handle("GET /api/predictions",
		authMW.RequirePermission("view_predictions")(http.HandlerFunc(predictionHandler.ListPredictions)))
	mux.Handle("GET /api/tools/{code}/predictions",
		authMW.RequirePermission("view_predictions")(http.HandlerFunc(predictionHandler.ToolPredictions)))
	mux.Handle("GET /api/recommendations",
		authMW.RequirePermission("view_predictions")(http.HandlerFunc(predictionHandler.Recommendations)))
	mux.Handle("POST /api/scoring/run",
		authMW.RequirePermission("run_scoring")(http.HandlerFunc(predictionHandler.RunScoring)))
	mux.Handle("POST /api/training/run",
		authMW.RequirePermission("run_scoring")(http.HandlerFunc(predictionHandler.RunTraining)))
	mux.Handle("GET /api/model/importance",
		authMW.RequirePermission("view_predictions")(http.HandlerFunc(predictionHandler.FeatureImportance)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	return authMW.Authenticate(mux)
}
