// Package locale models the fixed set of document translations the site serves
// and the framework-level locale handling around it: prefix stripping,
// membership checks, and Accept-Language negotiation.
package locale

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Set is an ordered, immutable collection of supported locale codes with a default.
type Set struct {
	codes   []string // default first, then configured order
	def     string
	matcher language.Matcher
}

// NewSet builds a Set. def must be one of codes. Codes that are not valid BCP 47
// tags (the site uses "cn" for Simplified Chinese) need an entry in tags so that
// Accept-Language negotiation can match them.
func NewSet(codes []string, def string, tags map[string]string) (*Set, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("locale set is empty")
	}
	if !slices.Contains(codes, def) {
		return nil, fmt.Errorf("default locale %q is not in %v", def, codes)
	}

	ordered := make([]string, 0, len(codes))
	ordered = append(ordered, def)
	for _, c := range codes {
		if c == "" {
			return nil, fmt.Errorf("empty locale code")
		}
		if strings.Contains(c, "/") || strings.Contains(c, ".") {
			return nil, fmt.Errorf("locale code %q must not contain '/' or '.'", c)
		}
		if !slices.Contains(ordered, c) {
			ordered = append(ordered, c)
		}
	}

	langTags := make([]language.Tag, 0, len(ordered))
	for _, c := range ordered {
		raw := c
		if alias, ok := tags[c]; ok {
			raw = alias
		}
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", c, err)
		}
		langTags = append(langTags, tag)
	}

	return &Set{
		codes:   ordered,
		def:     def,
		matcher: language.NewMatcher(langTags),
	}, nil
}

// MustNewSet is NewSet for static configuration known to be valid.
func MustNewSet(codes []string, def string, tags map[string]string) *Set {
	s, err := NewSet(codes, def, tags)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the default locale code.
func (s *Set) Default() string { return s.def }

// Codes returns the supported codes, default first.
func (s *Set) Codes() []string { return slices.Clone(s.codes) }

// Supports reports whether code is exactly one of the supported codes.
func (s *Set) Supports(code string) bool {
	return slices.Contains(s.codes, code)
}

// Normalize returns code when supported and the default otherwise.
func (s *Set) Normalize(code string) string {
	if s.Supports(code) {
		return code
	}
	return s.def
}

// SplitPrefix strips a leading supported locale segment from an URL path.
// "/pt-BR/docs/cli.md" yields ("pt-BR", "/docs/cli.md", true) and "/cn" yields
// ("cn", "/", true). Paths without a locale prefix come back unchanged.
func (s *Set) SplitPrefix(urlPath string) (code, rest string, ok bool) {
	trimmed := strings.TrimPrefix(urlPath, "/")
	first, remainder, hasMore := strings.Cut(trimmed, "/")
	if !s.Supports(first) {
		return "", urlPath, false
	}
	if !hasMore {
		return first, "/", true
	}
	return first, "/" + remainder, true
}

// Negotiate picks the preferred locale from an explicit cookie value and an
// Accept-Language header. A supported cookie wins; otherwise the best
// Accept-Language match is used; the default applies when nothing matches.
func (s *Set) Negotiate(cookie, acceptLanguage string) string {
	if s.Supports(cookie) {
		return cookie
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return s.def
	}
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return s.def
	}
	_, idx, confidence := s.matcher.Match(desired...)
	if confidence == language.No || idx < 0 || idx >= len(s.codes) {
		return s.def
	}
	return s.codes[idx]
}

type contextKey struct{}

// WithContext records the locale the routing layer resolved for a request.
func WithContext(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, contextKey{}, code)
}

// FromContext returns the routing-resolved locale, if any.
func FromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(contextKey{}).(string)
	return code, ok && code != ""
}
