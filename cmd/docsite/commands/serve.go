package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/napi-rs/docsite/internal/config"
	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/metrics"
	"github.com/napi-rs/docsite/internal/rawdoc"
	"github.com/napi-rs/docsite/internal/server/httpserver"
	"github.com/napi-rs/docsite/internal/retry"
	"github.com/napi-rs/docsite/internal/sitemap"
	"github.com/napi-rs/docsite/internal/version"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Host      string `help:"Listen host; overrides server.host"`
	Port      int    `short:"p" help:"Listen port; overrides server.port"`
	DocsRoot  string `name:"docs-root" help:"Documents root; overrides docs.root"`
	ExportDir string `name:"export-dir" help:"Static export directory; overrides site.export_dir"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	s.applyOverrides(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, cfg, g.logger())
}

func (s *ServeCmd) applyOverrides(cfg *config.Config) {
	if s.Host != "" {
		cfg.Server.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Server.Port = s.Port
	}
	if s.DocsRoot != "" {
		cfg.Docs.Root = s.DocsRoot
	}
	if s.ExportDir != "" {
		cfg.Site.ExportDir = s.ExportDir
	}
}

// RunServe starts the HTTP server (and the sitemap scheduler when configured)
// and blocks until ctx is done.
func RunServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Starting docsite", slog.String("version", version.Version))
	startTime := time.Now()

	locales, err := cfg.Locales()
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	resolver, err := rawdoc.New(rawdoc.Options{
		Root:       cfg.Docs.Root,
		Extensions: cfg.Docs.Extensions,
		Locales:    locales,
		Recorder:   recorder,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	srv, err := httpserver.New(cfg, httpserver.Options{
		Resolver:       resolver,
		Recorder:       recorder,
		MetricsHandler: metrics.HTTPHandler(reg),
		Logger:         logger,
		StartTime:      startTime,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	var scheduler *sitemap.Scheduler
	if cfg.Sitemap.Interval > 0 {
		scheduler, err = startSitemapScheduler(ctx, cfg, locales, recorder, logger)
		if err != nil {
			_ = srv.Stop(context.Background())
			return err
		}
	}

	logger.Info("docsite ready", slog.String("addr", srv.Addr()))
	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stopCancel()

	if scheduler != nil {
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Warn("Sitemap scheduler did not stop cleanly", slog.String("error", err.Error()))
		}
	}
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	logger.Info("docsite stopped")
	return nil
}

func startSitemapScheduler(ctx context.Context, cfg *config.Config, locales *locale.Set, recorder metrics.Recorder, logger *slog.Logger) (*sitemap.Scheduler, error) {
	gen, err := sitemap.NewGenerator(sitemap.Options{
		ExportDir: cfg.Site.ExportDir,
		BaseURL:   cfg.Sitemap.BaseURL,
		Locales:   locales,
		Recorder:  recorder,
		Logger:    logger,
		Retry:     retry.FromConfig(cfg.Sitemap.Retry),
	})
	if err != nil {
		return nil, err
	}
	scheduler, err := sitemap.NewScheduler()
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.SchedulePeriodic(ctx, cfg.Sitemap.Interval, gen); err != nil {
		_ = scheduler.Stop(ctx)
		return nil, err
	}
	scheduler.Start(ctx)
	logger.Info("Sitemap regeneration scheduled", slog.Duration("interval", cfg.Sitemap.Interval))
	return scheduler, nil
}
