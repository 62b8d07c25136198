package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/logfields"
	"github.com/napi-rs/docsite/internal/metrics"
	"github.com/napi-rs/docsite/internal/retry"
)

const (
	// Namespace is the sitemaps.org schema every urlset declares.
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	SitemapFile = "sitemap.xml"
	RobotsFile  = "robots.txt"

	// lastmodLayout matches ISO 8601 timestamps with millisecond precision in UTC.
	lastmodLayout = "2006-01-02T15:04:05.000Z"
)

// Entry is one <url> of the sitemap.
type Entry struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
	Priority string `xml:"priority"`

	Path string `xml:"-"` // URL path relative to the site root
	File string `xml:"-"` // Source HTML file
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// Result describes one generation run.
type Result struct {
	URLs          []Entry
	SitemapPath   string
	RobotsPath    string
	RobotsCreated bool
}

// Options configures a Generator.
type Options struct {
	ExportDir string
	BaseURL   string
	Locales   *locale.Set // Locale roots (/en, /cn) get top priority
	Recorder  metrics.Recorder
	Logger    *slog.Logger
	Retry     retry.Policy // Applied by Run to retryable failures; the zero value never retries
}

// Generator writes sitemap.xml (and robots.txt when missing) into an export directory.
type Generator struct {
	exportDir string
	baseURL   string
	locales   *locale.Set
	recorder  metrics.Recorder
	logger    *slog.Logger
	retry     retry.Policy
}

// NewGenerator creates a Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if strings.TrimSpace(opts.ExportDir) == "" {
		return nil, derrors.ConfigError("sitemap requires an export directory").Build()
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, derrors.ConfigError("sitemap requires a base URL").Build()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		exportDir: opts.ExportDir,
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		locales:   opts.Locales,
		recorder:  metrics.OrNoop(opts.Recorder),
		logger:    logger,
		retry:     opts.Retry,
	}, nil
}

// ExportDir returns the directory the generator scans and writes to.
func (g *Generator) ExportDir() string { return g.exportDir }

// Generate scans the export for HTML pages and writes the sitemap. An export
// without pages is reported with an empty Result and leaves the directory untouched.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	res, err := g.generate(ctx)
	switch {
	case err != nil:
		g.recorder.IncSitemapGeneration(metrics.ResultFailed)
	case len(res.URLs) == 0:
		g.recorder.IncSitemapGeneration(metrics.ResultEmpty)
	default:
		g.recorder.IncSitemapGeneration(metrics.ResultSuccess)
		g.recorder.SetSitemapURLs(len(res.URLs))
	}
	return res, err
}

// Run generates, retrying transient filesystem failures, and logs the outcome.
// It is the task run by the scheduler and the watcher.
func (g *Generator) Run(ctx context.Context) {
	var res *Result
	err := g.retry.Do(ctx, transient, func(ctx context.Context) error {
		var err error
		res, err = g.Generate(ctx)
		if err != nil && transient(err) {
			g.logger.WarnContext(ctx, "Sitemap generation attempt failed", logfields.Error(err))
		}
		return err
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Sitemap generation failed", logfields.Error(err))
		return
	}
	if len(res.URLs) == 0 {
		return
	}
	g.logger.InfoContext(ctx, "Sitemap generated",
		logfields.File(res.SitemapPath),
		logfields.URLCount(len(res.URLs)),
		slog.Bool("robots_created", res.RobotsCreated))
}

func transient(err error) bool {
	ce, ok := derrors.AsClassified(err)
	return ok && ce.CanRetry()
}

func (g *Generator) generate(ctx context.Context) (*Result, error) {
	st, err := os.Stat(g.exportDir)
	if err != nil || !st.IsDir() {
		return nil, derrors.NotFoundError("export directory not found").
			WithContext("export_dir", g.exportDir).
			Build()
	}

	entries, err := g.collect(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		SitemapPath: filepath.Join(g.exportDir, SitemapFile),
		RobotsPath:  filepath.Join(g.exportDir, RobotsFile),
	}
	if len(entries) == 0 {
		g.logger.WarnContext(ctx, "No HTML files found to include in sitemap", slog.String("export_dir", g.exportDir))
		return res, nil
	}
	res.URLs = entries

	body, err := xml.MarshalIndent(urlset{Xmlns: Namespace, URLs: entries}, "", "  ")
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategorySitemap, "failed to encode sitemap").Build()
	}
	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')
	if err := writeFileAtomic(res.SitemapPath, data); err != nil {
		return nil, err
	}

	if _, err := os.Stat(res.RobotsPath); errors.Is(err, fs.ErrNotExist) {
		if err := writeFileAtomic(res.RobotsPath, []byte(RobotsContent(g.baseURL))); err != nil {
			return nil, err
		}
		res.RobotsCreated = true
	}
	return res, nil
}

// collect walks the export and returns the sitemap entries sorted by URL path.
func (g *Generator) collect(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(g.exportDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(g.exportDir, p)
		if err != nil {
			return err
		}
		urlPath, ok := URLPath(rel)
		if !ok {
			return nil
		}

		noindex, err := hasNoindex(p)
		if err != nil {
			g.logger.DebugContext(ctx, "Could not inspect page for robots meta", logfields.File(p), logfields.Error(err))
		}
		if noindex {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Loc:      g.baseURL + urlPath,
			LastMod:  info.ModTime().UTC().Format(lastmodLayout),
			Priority: g.priority(urlPath),
			Path:     urlPath,
			File:     p,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to scan export directory").
			Retryable().
			WithContext("export_dir", g.exportDir).
			Build()
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

// URLPath maps an export-relative HTML file to its public URL path. Error
// pages and files under underscore-prefixed segments are excluded.
func URLPath(rel string) (string, bool) {
	u := strings.TrimSuffix(filepath.ToSlash(rel), ".html")
	switch {
	case u == "index":
		u = ""
	case strings.HasSuffix(u, "/index"):
		u = strings.TrimSuffix(u, "/index")
	}
	u = "/" + u
	if strings.Contains(u, "/404") || strings.Contains(u, "/500") || strings.Contains(u, "/_") {
		return "", false
	}
	return u, true
}

// priority ranks the site root and locale roots highest, then top-level pages,
// then documentation pages.
func (g *Generator) priority(urlPath string) string {
	if urlPath == "/" || (g.locales != nil && g.locales.Supports(strings.TrimPrefix(urlPath, "/"))) {
		return "1.0"
	}
	if strings.Count(urlPath, "/") == 1 {
		return "0.8"
	}
	if strings.Contains(urlPath, "/docs/") {
		return "0.7"
	}
	return "0.5"
}

// RobotsContent is the robots.txt written when the export has none.
func RobotsContent(baseURL string) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + strings.TrimSuffix(baseURL, "/") + "/" + SitemapFile + "\n"
}

// writeFileAtomic replaces path so that readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to create temporary file").
			Retryable().WithContext("path", path).Build()
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write file").
			Retryable().WithContext("path", path).Build()
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to set file mode").
			Retryable().WithContext("path", path).Build()
	}
	if err := tmp.Close(); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to close file").
			Retryable().WithContext("path", path).Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to replace file").
			Retryable().WithContext("path", path).Build()
	}
	return nil
}

// Age reports how long ago the sitemap in dir was written.
func Age(dir string) (time.Duration, bool) {
	st, err := os.Stat(filepath.Join(dir, SitemapFile))
	if err != nil {
		return 0, false
	}
	return time.Since(st.ModTime()), true
}
