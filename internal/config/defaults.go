package config

import (
	"slices"
	"time"
)

// Built-in values describing the napi.rs documentation site.
const (
	DefaultBaseURL      = "https://napi.rs"
	DefaultExportDir    = ".next/export"
	DefaultLocale       = "en"
	DefaultLocaleCookie = "NEXT_LOCALE"
	DefaultDocsRoot     = "pages"
	DefaultRawPrefix    = "/api/raw"
	DefaultRawSuffix    = ".md"
	DefaultLocaleHeader = "x-raw-md-locale"
	DefaultCacheMaxAge  = 3600
	DefaultPort         = 3000
)

var (
	defaultLocales    = []string{"en", "cn", "pt-BR"}
	defaultLocaleTags = map[string]string{"cn": "zh-CN"}
	defaultExtensions = []string{".mdx", ".md"}
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&siteDefaultApplier{},
		&i18nDefaultApplier{},
		&docsDefaultApplier{},
		&serverDefaultApplier{},
		&sitemapDefaultApplier{},
		&monitoringDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type siteDefaultApplier struct{}

func (siteDefaultApplier) Domain() string { return "site" }

func (siteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = DefaultBaseURL
	}
	if cfg.Site.ExportDir == "" {
		cfg.Site.ExportDir = DefaultExportDir
	}
	return nil
}

type i18nDefaultApplier struct{}

func (i18nDefaultApplier) Domain() string { return "i18n" }

func (i18nDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.I18N.Locales) == 0 {
		cfg.I18N.Locales = slices.Clone(defaultLocales)
	}
	if cfg.I18N.DefaultLocale == "" {
		cfg.I18N.DefaultLocale = cfg.I18N.Locales[0]
		if slices.Contains(cfg.I18N.Locales, DefaultLocale) {
			cfg.I18N.DefaultLocale = DefaultLocale
		}
	}
	if cfg.I18N.Tags == nil {
		cfg.I18N.Tags = map[string]string{}
	}
	for code, tag := range defaultLocaleTags {
		if _, set := cfg.I18N.Tags[code]; !set && slices.Contains(cfg.I18N.Locales, code) {
			cfg.I18N.Tags[code] = tag
		}
	}
	if cfg.I18N.Cookie == "" {
		cfg.I18N.Cookie = DefaultLocaleCookie
	}
	return nil
}

type docsDefaultApplier struct{}

func (docsDefaultApplier) Domain() string { return "docs" }

func (docsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Docs.Root == "" {
		cfg.Docs.Root = DefaultDocsRoot
	}
	if len(cfg.Docs.Extensions) == 0 {
		cfg.Docs.Extensions = slices.Clone(defaultExtensions)
	}
	if cfg.Raw.Prefix == "" {
		cfg.Raw.Prefix = DefaultRawPrefix
	}
	if cfg.Raw.Suffix == "" {
		cfg.Raw.Suffix = DefaultRawSuffix
	}
	if cfg.Raw.LocaleHeader == "" {
		cfg.Raw.LocaleHeader = DefaultLocaleHeader
	}
	if cfg.Raw.CacheMaxAge == 0 {
		cfg.Raw.CacheMaxAge = DefaultCacheMaxAge
	}
	return nil
}

type serverDefaultApplier struct{}

func (serverDefaultApplier) Domain() string { return "server" }

func (serverDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	return nil
}

type sitemapDefaultApplier struct{}

func (sitemapDefaultApplier) Domain() string { return "sitemap" }

func (sitemapDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Sitemap.BaseURL == "" {
		cfg.Sitemap.BaseURL = cfg.Site.BaseURL
	}
	if cfg.Sitemap.Debounce == 0 {
		cfg.Sitemap.Debounce = 2 * time.Second
	}

	r := &cfg.Sitemap.Retry
	if r.isZero() {
		r.MaxRetries = 2
	}
	if r.Backoff == "" {
		r.Backoff = RetryBackoffLinear
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = time.Second
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = 30 * time.Second
	}
	return nil
}

type monitoringDefaultApplier struct{}

func (monitoringDefaultApplier) Domain() string { return "monitoring" }

func (monitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = "/metrics"
	}
	if cfg.Monitoring.Health.Path == "" {
		cfg.Monitoring.Health.Path = "/health"
	}
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatText
	}
	return nil
}
