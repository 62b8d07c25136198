package config

import (
	"fmt"
	"net/url"
	"strings"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
)

// ValidateConfig checks cross-field consistency and normalizes enum fields in place.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, step := range []func() error{
		v.validateI18N,
		v.validateDocs,
		v.validateRaw,
		v.validateServer,
		v.validateSite,
		v.validateMonitoring,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func invalid(field, reason string) error {
	return derrors.ConfigError("invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason).
		Build()
}

func (cv *configurationValidator) validateI18N() error {
	set, err := cv.config.Locales()
	if err != nil {
		return invalid("i18n", err.Error())
	}
	for code, origin := range cv.config.I18N.Domains {
		if !set.Supports(code) {
			return invalid("i18n.domains", fmt.Sprintf("locale %q is not supported", code))
		}
		if err := checkOrigin(origin); err != nil {
			return invalid("i18n.domains."+code, err.Error())
		}
	}
	return nil
}

func (cv *configurationValidator) validateDocs() error {
	if strings.TrimSpace(cv.config.Docs.Root) == "" {
		return invalid("docs.root", "must not be empty")
	}
	seen := map[string]bool{}
	for _, ext := range cv.config.Docs.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
			return invalid("docs.extensions", fmt.Sprintf("%q must look like .ext", ext))
		}
		if seen[ext] {
			return invalid("docs.extensions", fmt.Sprintf("%q listed twice", ext))
		}
		seen[ext] = true
	}
	return nil
}

func (cv *configurationValidator) validateRaw() error {
	raw := cv.config.Raw
	if !strings.HasPrefix(raw.Prefix, "/") || strings.HasSuffix(raw.Prefix, "/") {
		return invalid("raw.prefix", "must start with '/' and not end with '/'")
	}
	if !strings.HasPrefix(raw.Suffix, ".") || len(raw.Suffix) < 2 {
		return invalid("raw.suffix", "must look like .ext")
	}
	if strings.TrimSpace(raw.LocaleHeader) == "" || strings.ContainsAny(raw.LocaleHeader, " :") {
		return invalid("raw.locale_header", "must be a valid header name")
	}
	if raw.CacheMaxAge < 0 {
		return invalid("raw.cache_max_age", "must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	if p := cv.config.Server.Port; p < 0 || p > 65535 {
		return invalid("server.port", fmt.Sprintf("%d is out of range", p))
	}
	if cv.config.Server.ReadTimeout < 0 || cv.config.Server.WriteTimeout < 0 || cv.config.Server.IdleTimeout < 0 {
		return invalid("server", "timeouts must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	if err := checkOrigin(cv.config.Site.BaseURL); err != nil {
		return invalid("site.base_url", err.Error())
	}
	if err := checkOrigin(cv.config.Sitemap.BaseURL); err != nil {
		return invalid("sitemap.base_url", err.Error())
	}
	if cv.config.Sitemap.Interval < 0 {
		return invalid("sitemap.interval", "must not be negative")
	}
	r := &cv.config.Sitemap.Retry
	mode, err := retryBackoffNormalizer.NormalizeWithError(string(r.Backoff))
	if err != nil {
		return invalid("sitemap.retry.backoff", err.Error())
	}
	r.Backoff = mode
	if r.MaxRetries < 0 {
		return invalid("sitemap.retry.max_retries", "must not be negative")
	}
	if r.InitialDelay < 0 || r.MaxDelay < 0 {
		return invalid("sitemap.retry", "delays must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	m := &cv.config.Monitoring
	if !strings.HasPrefix(m.Metrics.Path, "/") {
		return invalid("monitoring.metrics.path", "must start with '/'")
	}
	if !strings.HasPrefix(m.Health.Path, "/") {
		return invalid("monitoring.health.path", "must start with '/'")
	}
	level, err := logLevelNormalizer.NormalizeWithError(string(m.Logging.Level))
	if err != nil {
		return invalid("monitoring.logging.level", err.Error())
	}
	format, err := logFormatNormalizer.NormalizeWithError(string(m.Logging.Format))
	if err != nil {
		return invalid("monitoring.logging.format", err.Error())
	}
	m.Logging.Level = level
	m.Logging.Format = format
	return nil
}

func checkOrigin(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
