package httpserver

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// staticHandler serves the static site export. Extensionless page URLs map to
// <path>.html before directories, matching how the site is exported; missing
// files get the export's 404.html when it has one.
func (s *Server) staticHandler() http.Handler {
	fileServer := http.FileServer(http.Dir(s.exportDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if st, err := os.Stat(s.exportDir); err != nil || !st.IsDir() {
			s.renderExportPendingPage(w, r)
			return
		}

		resolved, ok := s.resolveExportPath(r.URL.Path)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if resolved != r.URL.Path {
			r = r.Clone(r.Context())
			r.URL.Path = resolved
			r.URL.RawPath = ""
		}
		fileServer.ServeHTTP(w, r)
	})
}

// resolveExportPath maps an URL path to the export path to serve.
func (s *Server) resolveExportPath(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	full := filepath.Join(s.exportDir, filepath.FromSlash(clean))

	st, err := os.Stat(full)
	if err == nil && !st.IsDir() {
		return urlPath, true
	}
	if clean != "/" && path.Ext(clean) == "" {
		if hst, herr := os.Stat(full + ".html"); herr == nil && !hst.IsDir() {
			return clean + ".html", true
		}
	}
	if err == nil && st.IsDir() {
		if _, ierr := os.Stat(filepath.Join(full, "index.html")); ierr == nil {
			return urlPath, true
		}
	}
	return "", false
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(filepath.Join(s.exportDir, "404.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", noCacheControl)
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page)
	}
}

// renderExportPendingPage is shown while the static export directory does not exist.
func (s *Server) renderExportPendingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "30")
	w.WriteHeader(http.StatusServiceUnavailable)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = fmt.Fprint(w, `<!doctype html><html><head><meta charset="utf-8"><title>Site not exported</title></head><body><h1>Documentation is being prepared</h1><p>The static site has not been exported yet. Raw documents remain available by appending .md to a page URL.</p></body></html>`)
}

const (
	immutableCacheControl = "public, max-age=31536000, immutable"
	noCacheControl        = "no-cache, must-revalidate"
)

// addCacheControlHeaders wraps a handler to add appropriate Cache-Control headers for static assets.
// - Content-hashed framework assets under /_next/static/: 1 year, immutable
// - HTML pages: no cache (to ensure content updates are immediately visible)
// - Sitemaps and robots.txt: 1 hour
// - Other assets: 1 day.
func (s *Server) addCacheControlHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCacheControlForPath(w, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// setCacheControlForPath sets appropriate Cache-Control header based on file type.
func setCacheControlForPath(w http.ResponseWriter, urlPath string) {
	if cacheControl := determineCacheControl(urlPath); cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
}

// determineCacheControl returns the appropriate Cache-Control value for a path.
func determineCacheControl(urlPath string) string {
	if strings.HasPrefix(urlPath, "/_next/static/") {
		return immutableCacheControl
	}

	ext := path.Ext(urlPath)
	switch {
	case ext == "" || ext == ".html" || strings.HasSuffix(urlPath, "/"):
		return noCacheControl
	case ext == ".xml" || ext == ".txt":
		return "public, max-age=3600"
	default:
		return "public, max-age=86400"
	}
}
