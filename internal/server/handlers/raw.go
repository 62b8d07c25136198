package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
	"github.com/napi-rs/docsite/internal/logfields"
	"github.com/napi-rs/docsite/internal/metrics"
	"github.com/napi-rs/docsite/internal/rawdoc"
)

const (
	markdownContentType = "text/markdown; charset=utf-8"
	allowedRawMethods   = "GET, HEAD"
)

// RawOptions configures the raw document endpoint.
type RawOptions struct {
	Prefix       string // Mount point, e.g. /api/raw
	Suffix       string // Public suffix, used to recover slugs from unrewritten paths
	LocaleHeader string // Forwarded locale header
	CacheMaxAge  int    // Seconds
	Recorder     metrics.Recorder
	Logger       *slog.Logger
}

// RawHandler serves document sources resolved by a rawdoc.Resolver.
type RawHandler struct {
	resolver     *rawdoc.Resolver
	opts         RawOptions
	recorder     metrics.Recorder
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewRawHandler creates the raw document handler.
func NewRawHandler(resolver *rawdoc.Resolver, opts RawOptions) *RawHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RawHandler{
		resolver:     resolver,
		opts:         opts,
		recorder:     metrics.OrNoop(opts.Recorder),
		logger:       logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}
}

// ServeHTTP resolves the slug carried by the request path. The slug comes from
// a {slug...} path value when mounted on a pattern, otherwise from the URL.
func (h *RawHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	forwarded := r.Header.Get(h.opts.LocaleHeader)

	raw := r.PathValue("slug")
	if raw == "" {
		raw, _ = rawdoc.SlugFromURL(r.URL.Path, h.opts.Prefix, h.opts.Suffix)
	}

	doc, err := h.resolver.Resolve(r.Context(), rawdoc.Request{
		Method:          r.Method,
		Slug:            rawdoc.SplitSlug(raw),
		ForwardedLocale: forwarded,
	})
	h.recorder.ObserveRawResolveDuration(time.Since(start))

	label := h.resolver.Locales().Normalize(forwarded)
	if doc != nil {
		label = doc.Target.Locale
	}
	h.recorder.IncRawRequest(outcomeFor(err), label)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	header := w.Header()
	header.Set("Content-Type", markdownContentType)
	header.Set("Content-Disposition", contentDisposition(doc.Filename))
	header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, s-maxage=%d", h.opts.CacheMaxAge, h.opts.CacheMaxAge))
	header.Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)

	h.logger.DebugContext(r.Context(), "Raw document served",
		logfields.DocPath(doc.Target.DocPath),
		logfields.Locale(doc.Target.Locale),
		logfields.Candidate(doc.Source.FullPath))

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(doc.Content); err != nil {
		h.logger.DebugContext(r.Context(), "Raw document write failed", logfields.Error(err))
	}
}

func (h *RawHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.logger.DebugContext(r.Context(), "Raw document request abandoned", logfields.Error(err))
		return
	}
	if rawdoc.IsMethodNotAllowed(err) {
		w.Header().Set("Allow", allowedRawMethods)
	}
	h.errorAdapter.WriteErrorResponse(w, r, err)
}

func outcomeFor(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeServed
	case rawdoc.IsMethodNotAllowed(err):
		return metrics.OutcomeMethodNotAllowed
	case rawdoc.IsInvalidPath(err):
		return metrics.OutcomeInvalidPath
	case rawdoc.IsNotFound(err):
		return metrics.OutcomeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func contentDisposition(filename string) string {
	return `inline; filename="` + dispositionEscaper.Replace(filename) + `"`
}
