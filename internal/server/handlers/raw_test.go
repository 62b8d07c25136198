package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/rawdoc"
)

func newRawHandler(t *testing.T, files map[string]string) *RawHandler {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
	resolver, err := rawdoc.New(rawdoc.Options{
		Root:       root,
		Extensions: []string{".mdx", ".md"},
		Locales:    locale.MustNewSet([]string{"en", "cn", "pt-BR"}, "en", map[string]string{"cn": "zh-CN"}),
	})
	require.NoError(t, err)
	return NewRawHandler(resolver, RawOptions{
		Prefix:       "/api/raw",
		Suffix:       ".md",
		LocaleHeader: "x-raw-md-locale",
		CacheMaxAge:  3600,
	})
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	return body["error"]
}

func TestRawHandlerServesDocument(t *testing.T) {
	h := newRawHandler(t, map[string]string{
		"docs/introduction/getting-started.en.mdx": "# Getting started\n",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/raw/docs/introduction/getting-started", nil)
	req.Header.Set("x-raw-md-locale", "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "# Getting started\n", rec.Body.String())
	require.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, `inline; filename="getting-started.md"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "public, max-age=3600, s-maxage=3600", rec.Header().Get("Cache-Control"))
}

func TestRawHandlerHeadHasNoBody(t *testing.T) {
	h := newRawHandler(t, map[string]string{"docs/cli.en.md": "cli"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/api/raw/docs/cli", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "3", rec.Header().Get("Content-Length"))
	require.Equal(t, `inline; filename="cli.md"`, rec.Header().Get("Content-Disposition"))
}

func TestRawHandlerErrors(t *testing.T) {
	h := newRawHandler(t, map[string]string{"docs/introduction/getting-started.en.mdx": "x"})

	tests := []struct {
		name   string
		method string
		path   string
		status int
		msg    string
	}{
		{"traversal", http.MethodGet, "/api/raw/../../etc/passwd", http.StatusBadRequest, "Invalid path"},
		{"encoded traversal", http.MethodGet, "/api/raw/docs/%2e%2e/%2e%2e/etc/passwd", http.StatusBadRequest, "Invalid path"},
		{"absolute", http.MethodGet, "/api/raw//etc/passwd", http.StatusBadRequest, "Invalid path"},
		{"missing", http.MethodGet, "/api/raw/docs/nonexistent", http.StatusNotFound, "Document not found"},
		{"empty slug", http.MethodGet, "/api/raw/", http.StatusNotFound, "Not found"},
		{"locale only", http.MethodGet, "/api/raw/cn", http.StatusNotFound, "Not found"},
		{"delete", http.MethodDelete, "/api/raw/docs/introduction/getting-started", http.StatusMethodNotAllowed, "Method not allowed"},
		{"post invalid path", http.MethodPost, "/api/raw/../../etc/passwd", http.StatusMethodNotAllowed, "Method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.msg, errorBody(t, rec))
			require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
		})
	}
}

func TestRawHandlerMethodNotAllowedSetsAllow(t *testing.T) {
	h := newRawHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/raw/docs/cli", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestRawHandlerLocalePrecedence(t *testing.T) {
	h := newRawHandler(t, map[string]string{
		"docs/cli.cn.md":       "cn",
		"docs/cli.pt-BR.md":    "pt",
		"pt-BR/docs/cli.cn.md": "header wins, slug kept",
		"docs/cli.en.md":       "en",
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   string
	}{
		{"slug locale", "/api/raw/pt-BR/docs/cli", "", "pt"},
		{"header", "/api/raw/docs/cli", "cn", "cn"},
		{"header overrides slug", "/api/raw/pt-BR/docs/cli", "cn", "header wins, slug kept"},
		{"unsupported header", "/api/raw/docs/cli", "de", "en"},
		{"default", "/api/raw/docs/cli", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("x-raw-md-locale", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRawHandlerIdempotent(t *testing.T) {
	h := newRawHandler(t, map[string]string{"docs/cli.en.mdx": "same bytes"})

	var responses []*httptest.ResponseRecorder
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/raw/docs/cli", nil))
		responses = append(responses, rec)
	}
	for _, rec := range responses[1:] {
		require.Equal(t, responses[0].Code, rec.Code)
		require.Equal(t, responses[0].Body.Bytes(), rec.Body.Bytes())
		require.Equal(t, responses[0].Header(), rec.Header())
	}
}

func TestRawHandlerSlugFromPattern(t *testing.T) {
	h := newRawHandler(t, map[string]string{"docs/cli.en.md": "via pattern"})
	mux := http.NewServeMux()
	mux.Handle("/raw/{slug...}", h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw/docs/cli", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "via pattern", rec.Body.String())
}

func TestContentDispositionEscapesQuotes(t *testing.T) {
	require.Equal(t, `inline; filename="a\"b.md"`, contentDisposition(`a"b.md`))
	require.Equal(t, `inline; filename="a\\b.md"`, contentDisposition(`a\b.md`))
}
