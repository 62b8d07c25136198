package rawdoc

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/logfields"
	"github.com/napi-rs/docsite/internal/metrics"
)

// Candidate is one (extension, path) combination probed during resolution.
type Candidate struct {
	Extension string
	FullPath  string
}

// Document is a successfully read source file.
type Document struct {
	Target   Target
	Source   Candidate
	Content  []byte
	Filename string // Last slug segment plus the display extension
}

// Request is the transport-independent input to Resolve.
type Request struct {
	Method          string
	Slug            []string
	ForwardedLocale string
}

// Options configures a Resolver.
type Options struct {
	Root             string   // Documents root
	Extensions       []string // Probe order, e.g. .mdx then .md
	DisplayExtension string   // Extension used in Filename regardless of the source, e.g. .md
	Locales          *locale.Set
	Recorder         metrics.Recorder
	Logger           *slog.Logger
}

// Resolver locates documents under a fixed root. It holds no per-request state
// and is safe for concurrent use.
type Resolver struct {
	root       string
	extensions []string
	display    string
	locales    *locale.Set
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// New validates opts and pins the documents root to its absolute, symlink-free form.
func New(opts Options) (*Resolver, error) {
	if opts.Locales == nil {
		return nil, derrors.ConfigError("resolver requires a locale set").Build()
	}
	if len(opts.Extensions) == 0 {
		return nil, derrors.ConfigError("resolver requires at least one extension").Build()
	}
	abs, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "invalid documents root").
			Fatal().WithContext("root", opts.Root).Build()
	}
	resolvedRoot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "documents root not found").
			Fatal().WithContext("root", abs).Build()
	}
	if info, err := os.Stat(resolvedRoot); err != nil || !info.IsDir() {
		return nil, derrors.ConfigError("documents root is not a directory").
			WithContext("root", resolvedRoot).Build()
	}

	display := opts.DisplayExtension
	if display == "" {
		display = ".md"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		root:       resolvedRoot,
		extensions: append([]string(nil), opts.Extensions...),
		display:    display,
		locales:    opts.Locales,
		recorder:   metrics.OrNoop(opts.Recorder),
		logger:     logger,
	}, nil
}

// Root returns the resolved documents root.
func (r *Resolver) Root() string { return r.root }

// Locales returns the locale set used for extraction.
func (r *Resolver) Locales() *locale.Set { return r.locales }

// Resolve runs the full pipeline: method gate, locale extraction, slug
// presence, path validation, then Lookup.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Document, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return nil, ErrMethodNotAllowed.WithContext("method", req.Method)
	}
	target, err := NewTarget(req.Slug, req.ForwardedLocale, r.locales)
	if err != nil {
		return nil, err
	}
	return r.Lookup(ctx, target)
}

// Candidates lists the files probed for t, in precedence order.
func (r *Resolver) Candidates(t Target) []Candidate {
	base := filepath.Join(r.root, filepath.FromSlash(t.DocPath))
	out := make([]Candidate, 0, len(r.extensions))
	for _, ext := range r.extensions {
		out = append(out, Candidate{
			Extension: ext,
			FullPath:  base + "." + t.Locale + ext,
		})
	}
	return out
}

// Lookup probes the candidates of t sequentially and returns the first one
// that can be read. Every candidate is checked for containment before it is
// read; an escape fails the whole lookup. Read errors of any kind move on to
// the next candidate.
func (r *Resolver) Lookup(ctx context.Context, t Target) (*Document, error) {
	for _, c := range r.Candidates(t) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.contains(c.FullPath) {
			return nil, ErrInvalidPath.WithContext("doc_path", t.DocPath).WithContext("candidate", c.FullPath)
		}

		content, err := os.ReadFile(c.FullPath)
		r.recorder.IncCandidateProbe(err == nil)
		if err != nil {
			switch {
			case errors.Is(err, fs.ErrPermission):
				r.logger.WarnContext(ctx, "Candidate not readable, treating as missing",
					logfields.Candidate(c.FullPath), logfields.Error(err))
			case !errors.Is(err, fs.ErrNotExist):
				r.logger.DebugContext(ctx, "Candidate unreadable",
					logfields.Candidate(c.FullPath), logfields.Error(err))
			}
			continue
		}
		return &Document{
			Target:   t,
			Source:   c,
			Content:  content,
			Filename: t.LastSegment() + r.display,
		}, nil
	}
	return nil, ErrDocumentNotFound.WithContext("doc_path", t.DocPath).WithContext("locale", t.Locale)
}

// contains reports whether p, with symlinks resolved as far as they exist,
// lies inside the root.
func (r *Resolver) contains(p string) bool {
	resolved, err := resolveExisting(p)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(r.root, resolved)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting evaluates symlinks on the longest existing prefix of p and
// re-appends the missing tail. A missing file inside a symlinked directory is
// therefore judged by where the directory really points.
func resolveExisting(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	var tail []string
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			parts := append([]string{resolved}, tail...)
			return filepath.Join(parts...), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent
	}
}
