package config

import (
	"time"

	"github.com/napi-rs/docsite/internal/locale"
)

// Config is the docsite configuration file (YAML).
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	I18N       I18NConfig       `yaml:"i18n"`
	Docs       DocsConfig       `yaml:"docs"`
	Raw        RawConfig        `yaml:"raw"`
	Server     ServerConfig     `yaml:"server"`
	Sitemap    SitemapConfig    `yaml:"sitemap"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// SiteConfig describes the public site.
type SiteConfig struct {
	BaseURL   string `yaml:"base_url"`   // Canonical origin, e.g. https://napi.rs
	ExportDir string `yaml:"export_dir"` // Static export served for non-document routes
}

// I18NConfig lists the supported translations.
type I18NConfig struct {
	Locales       []string          `yaml:"locales"`
	DefaultLocale string            `yaml:"default_locale"`
	Tags          map[string]string `yaml:"tags,omitempty"`    // BCP 47 tag per code when the code is not one (cn -> zh-CN)
	Domains       map[string]string `yaml:"domains,omitempty"` // Optional per-locale origin to redirect to
	Cookie        string            `yaml:"cookie"`            // Cookie holding an explicit locale choice
	Redirect      *bool             `yaml:"redirect,omitempty"`
}

// RedirectEnabled reports whether non-default locale preferences trigger redirects.
func (c I18NConfig) RedirectEnabled() bool {
	return c.Redirect == nil || *c.Redirect
}

// DocsConfig locates document sources.
type DocsConfig struct {
	Root       string   `yaml:"root"`       // Documents root; every served file must resolve inside it
	Extensions []string `yaml:"extensions"` // Probe order, richest markup first
}

// RawConfig shapes the raw markdown endpoint and the rewrite that feeds it.
type RawConfig struct {
	Prefix       string `yaml:"prefix"`        // Internal endpoint, e.g. /api/raw
	Suffix       string `yaml:"suffix"`        // Public marker, e.g. .md
	LocaleHeader string `yaml:"locale_header"` // Forwarded locale hint
	CacheMaxAge  int    `yaml:"cache_max_age"` // Seconds; 0 uses the default
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SitemapConfig configures sitemap.xml generation over the static export.
type SitemapConfig struct {
	BaseURL  string        `yaml:"base_url"` // Defaults to site.base_url
	Interval time.Duration `yaml:"interval"` // Periodic regeneration while serving; 0 disables
	Debounce time.Duration `yaml:"debounce"` // Quiet period for --watch
	Retry    RetryConfig   `yaml:"retry"`    // Retries for transient filesystem failures
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration.
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Locales builds the locale set described by the i18n section.
func (c *Config) Locales() (*locale.Set, error) {
	return locale.NewSet(c.I18N.Locales, c.I18N.DefaultLocale, c.I18N.Tags)
}
