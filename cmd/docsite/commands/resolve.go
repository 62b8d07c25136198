package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/napi-rs/docsite/internal/config"
	"github.com/napi-rs/docsite/internal/locale"
	"github.com/napi-rs/docsite/internal/rawdoc"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Path   string `arg:"" help:"Public path (/cn/docs/cli.md), raw endpoint path (/api/raw/docs/cli) or bare slug (docs/cli)"`
	Locale string `short:"l" help:"Forwarded locale header value to simulate"`
	Show   bool   `short:"s" help:"Print the document content after the report"`
}

func (c *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	return RunResolve(context.Background(), cfg, c.Path, c.Locale, c.Show, g.out())
}

// RunResolve prints the target, the candidates in probe order, and the match.
// Resolution failures are printed and returned.
func RunResolve(ctx context.Context, cfg *config.Config, input, forwarded string, show bool, out io.Writer) error {
	locales, err := cfg.Locales()
	if err != nil {
		return err
	}
	resolver, err := rawdoc.New(rawdoc.Options{
		Root:       cfg.Docs.Root,
		Extensions: cfg.Docs.Extensions,
		Locales:    locales,
	})
	if err != nil {
		return err
	}

	slug, forwarded := classify(cfg, locales, input, forwarded)
	target, err := rawdoc.NewTarget(slug, forwarded, locales)
	if err != nil {
		_, _ = fmt.Fprintf(out, "path:      %s\nresult:    %v\n", input, err)
		return err
	}

	_, _ = fmt.Fprintf(out, "path:      %s\nlocale:    %s\ndoc path:  %s\ncandidates:\n", input, target.Locale, target.DocPath)
	for i, cand := range resolver.Candidates(target) {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, cand.FullPath)
	}

	doc, err := resolver.Lookup(ctx, target)
	if err != nil {
		_, _ = fmt.Fprintf(out, "result:    %v\n", err)
		return err
	}
	_, _ = fmt.Fprintf(out, "match:     %s (%d bytes, served as %s)\n", doc.Source.FullPath, len(doc.Content), doc.Filename)
	if show {
		_, _ = fmt.Fprintf(out, "\n%s", doc.Content)
	}
	return nil
}

// classify maps input onto the slug and forwarded locale the raw endpoint
// would see, following the same rules as the request classifier.
func classify(cfg *config.Config, locales *locale.Set, input, forwarded string) ([]string, string) {
	if rest, ok := strings.CutPrefix(input, cfg.Raw.Prefix+"/"); ok {
		return rawdoc.SplitSlug(rest), forwarded
	}
	if strings.HasPrefix(input, "/") && strings.HasSuffix(input, cfg.Raw.Suffix) {
		code, rest, ok := locales.SplitPrefix(input)
		if forwarded == "" {
			forwarded = locales.Default()
			if ok {
				forwarded = code
			}
		}
		rest = strings.TrimSuffix(strings.TrimPrefix(rest, "/"), cfg.Raw.Suffix)
		return rawdoc.SplitSlug(rest), forwarded
	}
	return rawdoc.SplitSlug(strings.TrimPrefix(input, "/")), forwarded
}
