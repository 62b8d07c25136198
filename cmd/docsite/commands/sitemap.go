package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/napi-rs/docsite/internal/config"
	"github.com/napi-rs/docsite/internal/retry"
	"github.com/napi-rs/docsite/internal/sitemap"
)

// SitemapCmd groups the sitemap subcommands.
type SitemapCmd struct {
	Generate SitemapGenerateCmd `cmd:"" help:"Write sitemap.xml (and robots.txt when missing) into the static export"`
	Verify   SitemapVerifyCmd   `cmd:"" help:"Check the sitemap and robots.txt in the static export"`
}

// SitemapTarget holds the flags shared by the sitemap subcommands.
type SitemapTarget struct {
	ExportDir string `name:"export-dir" help:"Static export directory; overrides site.export_dir"`
	BaseURL   string `name:"base-url" help:"Public origin; overrides sitemap.base_url"`
}

func (t SitemapTarget) apply(cfg *config.Config) {
	if t.ExportDir != "" {
		cfg.Site.ExportDir = t.ExportDir
	}
	if t.BaseURL != "" {
		cfg.Sitemap.BaseURL = t.BaseURL
	}
}

// SitemapGenerateCmd implements 'sitemap generate'.
type SitemapGenerateCmd struct {
	SitemapTarget `embed:""`

	Watch    bool          `short:"w" help:"Keep running and regenerate when the export changes"`
	Debounce time.Duration `help:"Quiet period before regenerating in watch mode; overrides sitemap.debounce"`
}

func (c *SitemapGenerateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	c.apply(cfg)
	if c.Debounce > 0 {
		cfg.Sitemap.Debounce = c.Debounce
	}

	gen, err := newGenerator(cfg, g.logger())
	if err != nil {
		return err
	}

	if !c.Watch {
		return RunSitemapGenerate(context.Background(), gen, g.out())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunSitemapWatch(ctx, gen, cfg.Sitemap.Debounce, g.out())
}

func newGenerator(cfg *config.Config, logger *slog.Logger) (*sitemap.Generator, error) {
	locales, err := cfg.Locales()
	if err != nil {
		return nil, err
	}
	return sitemap.NewGenerator(sitemap.Options{
		ExportDir: cfg.Site.ExportDir,
		BaseURL:   cfg.Sitemap.BaseURL,
		Locales:   locales,
		Logger:    logger,
		Retry:     retry.FromConfig(cfg.Sitemap.Retry),
	})
}

// RunSitemapGenerate runs one generation and prints a summary.
func RunSitemapGenerate(ctx context.Context, gen *sitemap.Generator, out io.Writer) error {
	res, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	if len(res.URLs) == 0 {
		_, _ = fmt.Fprintf(out, "No HTML pages found in %s; sitemap not written\n", gen.ExportDir())
		return nil
	}
	_, _ = fmt.Fprintf(out, "Sitemap generated with %d URLs\n  %s\n", len(res.URLs), res.SitemapPath)
	if res.RobotsCreated {
		_, _ = fmt.Fprintf(out, "robots.txt created\n  %s\n", res.RobotsPath)
	}
	return nil
}

// RunSitemapWatch generates once, then regenerates on export changes until ctx is done.
func RunSitemapWatch(ctx context.Context, gen *sitemap.Generator, debounce time.Duration, out io.Writer) error {
	if err := RunSitemapGenerate(ctx, gen, out); err != nil {
		return err
	}
	w, err := sitemap.NewWatcher(gen, debounce)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop(context.Background())
}

// SitemapVerifyCmd implements 'sitemap verify'.
type SitemapVerifyCmd struct {
	SitemapTarget `embed:""`
}

func (c *SitemapVerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	c.apply(cfg)
	return RunSitemapVerify(cfg.Site.ExportDir, cfg.Sitemap.BaseURL, g.out())
}

// RunSitemapVerify verifies the export and prints the report.
func RunSitemapVerify(exportDir, baseURL string, out io.Writer) error {
	report, err := sitemap.Verify(exportDir, baseURL)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Sitemap OK: %d URLs (%d bytes), robots.txt %d bytes\n", report.URLCount, report.SitemapSize, report.RobotsSize)
	for _, u := range report.SampleURLs {
		_, _ = fmt.Fprintf(out, "  %s\n", u)
	}
	if report.URLCount > len(report.SampleURLs) {
		_, _ = fmt.Fprintf(out, "  ... and %d more\n", report.URLCount-len(report.SampleURLs))
	}
	_, _ = fmt.Fprintf(out, "Last generated %s ago\n", report.Age.Round(time.Second))
	return nil
}
