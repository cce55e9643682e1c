package gateway

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saransh1220/flow-management/internal/gateway/middleware"
	notification_http "github.com/saransh1220/flow-management/internal/modules/notification/interfaces/http"
	workflow_http "github.com/saransh1220/flow-management/internal/modules/workflow/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleWare
	NotificationHandler *notification_http.NotificationHandler
	WorkflowHandler     *workflow_http.WorkflowHandler
	AllowedOrigins      string
	Logger              *slog.Logger
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	// Notification Routes
	notifications := config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Handle))
	mux.Handle("GET /api/notifications", notifications)
	mux.Handle("POST /api/notifications", notifications)
	mux.Handle("GET /ws", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	// Workflow Routes
	mux.Handle("POST /api/workflow", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.WorkflowHandler.Handle)))

	return mux
}

// NewHandler builds the routes and wraps them in the standard chain:
// request ID, metrics, then CORS.
func NewHandler(config RouterConfig) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return NewRouter(SetupRoutes(config)).
		Use(
			middleware.RequestID(logger),
			middleware.PrometheusMiddleware,
			func(next http.Handler) http.Handler {
				return middleware.CORSMiddleware(next, config.AllowedOrigins)
			},
		).
		Handler()
}
