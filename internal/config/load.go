package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "github.com/napi-rs/docsite/internal/foundation/errors"
)

// envFiles are consulted in order; the first one present is loaded.
var envFiles = []string{".env", ".env.local"}

// Load reads, expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to parse config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return finish(cfg)
}

// LoadOptional behaves like Load but falls back to the built-in defaults when
// the file does not exist.
func LoadOptional(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		loadEnvFile()
		slog.Debug("No configuration file, using defaults", slog.String("path", configPath))
		return finish(&Config{})
	}
	return Load(configPath)
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (*Config, error) {
	return finish(&Config{})
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads the first .env file found. Existing process variables win.
func loadEnvFile() {
	for _, p := range envFiles {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("path", p))
		return
	}
}

// applyEnvOverrides maps deployment variables onto the config. LOCALE keeps the
// name the site's build has always used for the default locale.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOCALE"); v != "" {
		cfg.I18N.DefaultLocale = v
	}
	if v := os.Getenv("DOCSITE_DOCS_ROOT"); v != "" {
		cfg.Docs.Root = v
	}
	if v := os.Getenv("DOCSITE_EXPORT_DIR"); v != "" {
		cfg.Site.ExportDir = v
	}
	if v := os.Getenv("DOCSITE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			slog.Warn("Ignoring invalid DOCSITE_PORT", slog.String("value", v))
		}
	}
}
