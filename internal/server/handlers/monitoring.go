package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/napi-rs/docsite/internal/foundation/errors"
	"github.com/napi-rs/docsite/internal/server/responses"
	"github.com/napi-rs/docsite/internal/version"
)

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	startTime    time.Time
	checks       map[string]string
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance. Each entry of
// dirs names a directory that must exist for the server to report ready.
func NewMonitoringHandlers(startTime time.Time, dirs map[string]string) *MonitoringHandlers {
	return &MonitoringHandlers{
		startTime:    startTime,
		checks:       dirs,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if !h.allowRead(w, r) {
		return
	}

	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleReadiness reports 503 until every configured directory exists.
func (h *MonitoringHandlers) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	if !h.allowRead(w, r) {
		return
	}

	resp := &responses.ReadinessResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]bool, len(h.checks)),
	}
	status := http.StatusOK
	for name, dir := range h.checks {
		st, err := os.Stat(dir)
		ok := err == nil && st.IsDir()
		resp.Checks[name] = ok
		if !ok {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
	}

	if err := writeJSONPretty(w, r, status, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write readiness response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

func (h *MonitoringHandlers) allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	err := errors.MethodNotAllowedError("Method not allowed").
		WithContext("method", r.Method).
		Build()
	w.Header().Set("Allow", allowedRawMethods)
	h.errorAdapter.WriteErrorResponse(w, r, err)
	return false
}
