package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/napi-rs/docsite/internal/config"
	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/logfields"
	handlers "github.com/napi-rs/docsite/internal/server/handlers"
	smw "github.com/napi-rs/docsite/internal/server/middleware"
)

// Server serves the documentation site: the raw markdown endpoint, the static
// export, and health/metrics endpoints, all on one listener.
type Server struct {
	docsServer   *http.Server
	listener     net.Listener
	cfg          *config.Config
	opts         Options
	logger       *slog.Logger
	locales      *locale.Set
	exportDir    string
	errorAdapter *derrors.HTTPErrorAdapter

	// Handler modules
	monitoringHandlers *handlers.MonitoringHandlers
	rawHandler         *handlers.RawHandler

	// middleware chain
	mchain func(http.Handler) http.Handler

	handler http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if opts.Resolver == nil {
		return nil, derrors.ConfigError("http server requires a document resolver").Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}

	exportDir := cfg.Site.ExportDir
	if abs, err := filepath.Abs(exportDir); err == nil {
		exportDir = abs
	}

	s := &Server{
		cfg:          cfg,
		opts:         opts,
		logger:       opts.Logger,
		locales:      opts.Resolver.Locales(),
		exportDir:    exportDir,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
	}

	// Initialize handler modules
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.StartTime, map[string]string{
		"docs_root":  opts.Resolver.Root(),
		"export_dir": exportDir,
	})
	s.rawHandler = handlers.NewRawHandler(opts.Resolver, handlers.RawOptions{
		Prefix:       cfg.Raw.Prefix,
		Suffix:       cfg.Raw.Suffix,
		LocaleHeader: cfg.Raw.LocaleHeader,
		CacheMaxAge:  cfg.Raw.CacheMaxAge,
		Recorder:     opts.Recorder,
		Logger:       opts.Logger,
	})

	// Initialize middleware chain
	s.mchain = smw.Chain(opts.Logger, s.errorAdapter)
	s.handler = s.buildHandler()

	return s, nil
}

// Handler returns the fully wired handler, middleware included.
func (s *Server) Handler() http.Handler { return s.handler }

// buildHandler layers the request pipeline: logging and recovery, then the
// raw markdown classifier with locale routing behind it, then dispatch. The
// raw endpoint is matched before the mux so its slug reaches the resolver
// uncleaned and traversal attempts are answered by the resolver itself.
func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	registered := map[string]bool{}
	handle := func(pattern string, h http.Handler) {
		if pattern == "" || registered[pattern] {
			return
		}
		registered[pattern] = true
		mux.Handle(pattern, h)
	}

	// Health/readiness endpoints for common probe configs
	handle(s.cfg.Monitoring.Health.Path, http.HandlerFunc(s.monitoringHandlers.HandleHealthCheck))
	handle("/healthz", http.HandlerFunc(s.monitoringHandlers.HandleHealthCheck)) // Kubernetes-style alias
	handle("/ready", http.HandlerFunc(s.monitoringHandlers.HandleReadiness))
	handle("/readyz", http.HandlerFunc(s.monitoringHandlers.HandleReadiness)) // Kubernetes-style alias

	if s.cfg.Monitoring.Metrics.Enabled && s.opts.MetricsHandler != nil {
		handle(s.cfg.Monitoring.Metrics.Path, s.opts.MetricsHandler)
	}

	handle("/", s.addCacheControlHeaders(s.staticHandler()))

	prefix := s.cfg.Raw.Prefix
	dispatch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
			s.rawHandler.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	router := smw.LocaleRouter(smw.LocaleRouterConfig{
		Locales:  s.locales,
		Cookie:   s.cfg.I18N.Cookie,
		Domains:  s.cfg.I18N.Domains,
		Redirect: s.cfg.I18N.RedirectEnabled(),
		SkipPrefixes: []string{
			prefix + "/", "/api/", "/_next/",
			s.cfg.Monitoring.Health.Path, "/healthz", "/ready", "/readyz",
			s.cfg.Monitoring.Metrics.Path,
		},
		Recorder: s.opts.Recorder,
	})
	classified := smw.RawMarkdown(smw.RawMarkdownConfig{
		Prefix:       prefix,
		Suffix:       s.cfg.Raw.Suffix,
		LocaleHeader: s.cfg.Raw.LocaleHeader,
		Recorder:     s.opts.Recorder,
		Logger:       s.logger,
	}, s.locales, router)(dispatch)

	return s.mchain(classified)
}

// Start binds the listener first so an occupied port fails fast, then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "http startup failed").
			WithContext("addr", addr).
			Fatal().
			Build()
	}
	s.listener = ln

	s.docsServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
	if err := s.startServerWithListener("docs", s.docsServer, ln); err != nil {
		return fmt.Errorf("failed to start docs server: %w", err)
	}

	s.logger.Info("HTTP server started",
		slog.String("addr", ln.Addr().String()),
		slog.String("docs_root", s.opts.Resolver.Root()),
		slog.String("export_dir", s.exportDir))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.docsServer == nil {
		return nil
	}
	if err := s.docsServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("docs server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// startServerWithListener launches an http.Server on a pre-bound listener.
func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) error {
	if ln == nil {
		return errors.New("listener required")
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(fmt.Sprintf("%s server error", kind), logfields.Error(err))
		}
	}()
	return nil
}
