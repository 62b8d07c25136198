package errors

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: http.StatusOK},
		{name: "validation", err: ValidationError("Invalid path").Build(), expected: http.StatusBadRequest},
		{name: "not found", err: NotFoundError("Not found").Build(), expected: http.StatusNotFound},
		{name: "method not allowed", err: MethodNotAllowedError("Method not allowed").Build(), expected: http.StatusMethodNotAllowed},
		{name: "runtime", err: RuntimeError("shutting down").Build(), expected: http.StatusServiceUnavailable},
		{name: "internal", err: InternalError("boom").Build(), expected: http.StatusInternalServerError},
		{name: "unclassified", err: stdErrors.New("unknown error"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.StatusCodeFor(tt.err); got != tt.expected {
				t.Errorf("StatusCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	var logs bytes.Buffer
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	tests := []struct {
		name       string
		method     string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "invalid path hides context",
			method:     http.MethodGet,
			err:        ValidationError("Invalid path").WithContext("doc_path", "../../etc/passwd").Build(),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid path"}`,
		},
		{
			name:       "not found",
			method:     http.MethodGet,
			err:        NotFoundError("Document not found").Build(),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Document not found"}`,
		},
		{
			name:       "internal message is not leaked",
			method:     http.MethodGet,
			err:        InternalError("nil pointer in resolver").Build(),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "head has no body",
			method:     http.MethodHead,
			err:        NotFoundError("Not found").Build(),
			wantStatus: http.StatusNotFound,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, "/api/raw/x", nil)
			adapter.WriteErrorResponse(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("content-type = %q, want application/json", got)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if tt.wantBody != "" {
				var payload map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}
				if len(payload) != 1 {
					t.Errorf("payload should only carry the error field, got %v", payload)
				}
			}
		})
	}

	if !strings.Contains(logs.String(), "doc_path=../../etc/passwd") {
		t.Errorf("expected context in logs, got:\n%s", logs.String())
	}
}
