package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/farmops/docs" // Import generated docs
	"github.com/mtlprog/farmops/internal/handler/dto"
	"github.com/mtlprog/farmops/internal/metrics"
	"github.com/mtlprog/farmops/internal/middleware"
	"github.com/mtlprog/farmops/internal/recalc"
	"github.com/mtlprog/farmops/internal/report"
	"github.com/mtlprog/farmops/internal/repository"
	"github.com/mtlprog/farmops/internal/service"
)

// PageLimits bounds the page size report callers may request.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPageLimits are used when no limits are configured.
var DefaultPageLimits = PageLimits{DefaultSize: 20, MaxSize: 100}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool        *pgxpool.Pool
	reports     *report.Service
	taskService *service.TaskService
	paging      PageLimits
}

// New creates a new Handler instance with all dependencies.
// trigger receives recalculation jobs fired by task mutations.
func New(pool *pgxpool.Pool, trigger recalc.Trigger, paging PageLimits) *Handler {
	// Create repositories
	taskRepo := repository.NewTaskRepository(pool)
	eventRepo := repository.NewTaskEventRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	if paging.DefaultSize <= 0 || paging.MaxSize < paging.DefaultSize {
		paging = DefaultPageLimits
	}

	return &Handler{
		pool:        pool,
		reports:     report.NewService(reportRepo),
		taskService: service.NewTaskService(pool, taskRepo, eventRepo, trigger),
		paging:      paging,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	h.handle(mux, "GET /healthz", http.HandlerFunc(h.handleHealthz))

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Reports
	h.handle(mux, "GET /api/v1/reports/efficiency/{kind}", http.HandlerFunc(h.handleEfficiencyReport))
	h.handle(mux, "GET /api/v1/reports/resource-usage", http.HandlerFunc(h.handleResourceUsageReport))

	// Task mutations
	h.handle(mux, "PATCH /api/v1/tasks/{id}", http.HandlerFunc(h.handleUpdateTask))
	h.handle(mux, "DELETE /api/v1/tasks/{id}", http.HandlerFunc(h.handleDeleteTask))
	h.handle(mux, "POST /api/v1/tasks/{id}/review", http.HandlerFunc(h.handleReviewTask))
}

// handle registers next under pattern with request metrics.
func (h *Handler) handle(mux *http.ServeMux, pattern string, next http.Handler) {
	mux.Handle(pattern, middleware.Instrument(pattern, next))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err with dto.MapDomainError and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractTaskID extracts and validates task ID from path parameter.
// Returns (taskID, true) if valid, ("", false) if invalid (error already sent to client).
func extractTaskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	taskID := r.PathValue("id")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id is required")
		return "", false
	}

	if _, err := uuid.Parse(taskID); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task_id must be a valid UUID")
		return "", false
	}

	return taskID, true
}
