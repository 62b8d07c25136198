package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/napi-rs/docsite/internal/metrics"
	"github.com/napi-rs/docsite/internal/rawdoc"
)

// Options configures additional server wiring that is runtime-specific.
type Options struct {
	// Resolver backs the raw document endpoint. Required.
	Resolver *rawdoc.Resolver

	// Optional: metrics recorder shared with the resolver.
	Recorder metrics.Recorder

	// Optional: Prometheus exposition handler, mounted on monitoring.metrics.path when enabled.
	MetricsHandler http.Handler

	// Optional: logger for request logs and error responses. Defaults to slog.Default().
	Logger *slog.Logger

	// Optional: reported uptime origin. Defaults to time.Now() at construction.
	StartTime time.Time
}
