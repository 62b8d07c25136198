package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/napi-rs/docsite/internal/config"
	"github.com/napi-rs/docsite/internal/observability"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer // Command output; logs go to stderr
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"docsite.yaml" env:"DOCSITE_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogLevel  string           `name:"log-level" help:"Log level (debug, info, warn, error); overrides the config file" env:"DOCSITE_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"Log format (text, json); overrides the config file" env:"DOCSITE_LOG_FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" help:"Serve the site, raw markdown endpoint included"`
	Resolve ResolveCmd `cmd:"" help:"Show how a path resolves to a document without starting a server"`
	Sitemap SitemapCmd `cmd:"" help:"Generate or verify sitemap.xml for the static export"`
	Ver     VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once from flags. Commands
// that load a config file call applyConfigLogging to honour its logging section.
func (c *CLI) AfterApply(g *Global) error {
	g.setLogger(c.logLevel(""), c.logFormat(""))
	return nil
}

func (c *CLI) logLevel(fromConfig config.LogLevel) config.LogLevel {
	switch {
	case c.Verbose:
		return config.LogLevelDebug
	case c.LogLevel != "":
		return config.NormalizeLogLevel(c.LogLevel)
	case fromConfig != "":
		return fromConfig
	default:
		return config.LogLevelInfo
	}
}

func (c *CLI) logFormat(fromConfig config.LogFormat) config.LogFormat {
	switch {
	case c.LogFormat != "":
		return config.NormalizeLogFormat(c.LogFormat)
	case fromConfig != "":
		return fromConfig
	default:
		return config.LogFormatText
	}
}

func (c *CLI) applyConfigLogging(g *Global, cfg *config.Config) {
	g.setLogger(c.logLevel(cfg.Monitoring.Logging.Level), c.logFormat(cfg.Monitoring.Logging.Format))
}

// loadConfig reads the config file, falling back to defaults when it is absent.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.LoadOptional(c.Config)
	if err != nil {
		return nil, err
	}
	c.applyConfigLogging(g, cfg)
	return cfg, nil
}

func (g *Global) setLogger(level config.LogLevel, format config.LogFormat) {
	g.Logger = newLogger(os.Stderr, level, format)
	slog.SetDefault(g.Logger)
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// newLogger builds the process logger; request-scoped attributes are added by
// the observability context handler.
func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var h slog.Handler
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(observability.NewContextHandler(h))
}
