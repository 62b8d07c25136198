package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/metrics"
	"github.com/napi-rs/docsite/internal/observability"
)

// LocaleRouterConfig configures locale routing for page requests.
type LocaleRouterConfig struct {
	Locales      *locale.Set
	Cookie       string            // Explicit locale choice, e.g. NEXT_LOCALE
	Domains      map[string]string // Optional origin per locale, e.g. cn: https://cn.napi.rs
	Redirect     bool              // Redirect visitors whose preference is not the default locale
	SkipPrefixes []string          // Paths never routed, e.g. /api/ and /_next/
	Recorder     metrics.Recorder
}

// LocaleRouter resolves the locale of page requests.
//
// A path that starts with a supported locale keeps it and records it in the
// request context, unless the locale is served from its own domain. A path
// without a locale is redirected (307) to the preferred locale taken from the
// cookie, then Accept-Language, when that preference is not the default.
// API routes, framework assets and files with an extension are never touched.
func LocaleRouter(cfg LocaleRouterConfig) func(http.Handler) http.Handler {
	recorder := metrics.OrNoop(cfg.Recorder)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if code, rest, ok := cfg.Locales.SplitPrefix(r.URL.Path); ok {
				if target, found := cfg.domainTarget(code, rest, r); found {
					recorder.IncRewrite("locale_domain")
					http.Redirect(w, r, target, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, withLocale(r, code))
				return
			}

			def := cfg.Locales.Default()
			if !cfg.Redirect || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
				next.ServeHTTP(w, withLocale(r, def))
				return
			}

			w.Header().Add("Vary", "Accept-Language, Cookie")
			cookie := ""
			if c, err := r.Cookie(cfg.Cookie); err == nil {
				cookie = c.Value
			}
			preferred := cfg.Locales.Negotiate(cookie, r.Header.Get("Accept-Language"))
			if preferred == def {
				next.ServeHTTP(w, withLocale(r, def))
				return
			}

			target, found := cfg.domainTarget(preferred, r.URL.Path, r)
			if !found {
				target = localizedPath(preferred, r.URL.Path)
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
			}
			recorder.IncRewrite("locale_redirect")
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
		})
	}
}

func (cfg LocaleRouterConfig) skip(p string) bool {
	for _, prefix := range cfg.SkipPrefixes {
		if prefix == "" {
			continue
		}
		if p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	ext := path.Ext(p)
	return ext != "" && ext != ".html"
}

// domainTarget returns the absolute URL on the locale's own origin when one is
// configured and the request is not already there.
func (cfg LocaleRouterConfig) domainTarget(code, rest string, r *http.Request) (string, bool) {
	if code == cfg.Locales.Default() {
		return "", false
	}
	origin, ok := cfg.Domains[code]
	if !ok || origin == "" {
		return "", false
	}
	origin = strings.TrimSuffix(origin, "/")
	if host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"); host == r.Host {
		return "", false
	}
	target := origin + rest
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target, true
}

func localizedPath(code, p string) string {
	if p == "" || p == "/" {
		return "/" + code
	}
	return "/" + code + p
}

func withLocale(r *http.Request, code string) *http.Request {
	ctx := observability.WithLocale(locale.WithContext(r.Context(), code), code)
	return r.WithContext(ctx)
}
