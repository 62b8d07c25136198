package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/logfields"
	"github.com/napi-rs/docsite/internal/metrics"
	"github.com/napi-rs/docsite/internal/observability"
)

// RawMarkdownConfig configures the raw markdown classifier.
type RawMarkdownConfig struct {
	Prefix       string // Internal endpoint the rewrite targets, e.g. /api/raw
	Suffix       string // Public marker, e.g. .md
	LocaleHeader string // Request header carrying the effective locale to the endpoint
	Recorder     metrics.Recorder
	Logger       *slog.Logger
}

// RawMarkdown classifies requests before any locale routing happens.
//
// A path ending in the suffix, after the framework locale prefix is stripped,
// is rewritten in-process to <prefix><path-without-suffix> with the effective
// locale in the forwarded header; every other request goes through router
// (which may redirect) and then next. Requests already addressed to the
// prefix pass through untouched. All responses carry the cross-origin
// isolation headers. This stage never fails.
func RawMarkdown(cfg RawMarkdownConfig, locales *locale.Set, router func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	recorder := metrics.OrNoop(cfg.Recorder)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		routed := next
		if router != nil {
			routed = router(next)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setIsolationHeaders(w.Header())

			if hasPathPrefix(r.URL.Path, cfg.Prefix) {
				next.ServeHTTP(w, r)
				return
			}

			code, rest, ok := locales.SplitPrefix(r.URL.Path)
			if !strings.HasSuffix(rest, cfg.Suffix) {
				routed.ServeHTTP(w, r)
				return
			}

			effective := locales.Default()
			if ok {
				effective = code
			}
			target := cfg.Prefix + strings.TrimSuffix(rest, cfg.Suffix)

			ctx := observability.WithLocale(locale.WithContext(r.Context(), effective), effective)
			rewritten := r.Clone(ctx)
			rewritten.URL.Path = target
			rewritten.URL.RawPath = ""
			rewritten.Header.Set(cfg.LocaleHeader, effective)

			recorder.IncRewrite("raw_markdown")
			logger.DebugContext(ctx, "Rewrote raw markdown request",
				logfields.Path(r.URL.Path),
				logfields.Rewrite(target),
				logfields.Locale(effective))

			next.ServeHTTP(w, rewritten)
		})
	}
}

// hasPathPrefix matches prefix as a whole path segment sequence.
func hasPathPrefix(p, prefix string) bool {
	return prefix != "" && (p == prefix || strings.HasPrefix(p, prefix+"/"))
}
