// Package chi serves run status over HTTP while a filtering run is in progress.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/metrics"
	healthuc "github.com/kailas-cloud/occfilter/internal/usecase/health"
	"github.com/kailas-cloud/occfilter/internal/usecase/orchestrator"
)

// Error codes returned in ErrorResponse.
const (
	codeUnauthorized = "unauthorized"
	codeInternal     = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	orchestrator.ProgressSnapshot
	Percent        float64 `json:"percent"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// HealthChecker runs component health checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ProgressReader exposes the current run progress.
type ProgressReader interface {
	Progress() orchestrator.ProgressSnapshot
}

// Server serves health, metrics and run progress.
type Server struct {
	health   HealthChecker
	progress ProgressReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewServer creates a status server.
func NewServer(health HealthChecker, progress ProgressReader, logger *zap.Logger) *Server {
	return &Server{health: health, progress: progress, logger: logger, now: time.Now}
}

// Router builds the chi router. Empty apiKeys disables authentication.
func (s *Server) Router(apiKeys []string) http.Handler {
	metrics.RegisterHTTPMetrics()

	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Group(func(r chi.Router) {
		r.Use(requireBearer(apiKeys))
		r.Get("/status", s.Status)
	})
	return r
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Status handles GET /status.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	snap := s.progress.Progress()
	resp := StatusResponse{ProgressSnapshot: snap, Percent: snap.Percent()}
	if !snap.StartedAt.IsZero() {
		resp.ElapsedSeconds = s.now().Sub(snap.StartedAt).Seconds()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
