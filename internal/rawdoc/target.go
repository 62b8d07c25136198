package rawdoc

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/napi-rs/docsite/internal/locale"
)

// Target is a validated request for one logical document.
type Target struct {
	Slug    []string // Segments after locale extraction, as received
	Locale  string   // Always a supported locale
	DocPath string   // Cleaned slash-separated path relative to the documents root
}

// LastSegment names the document for Content-Disposition.
func (t Target) LastSegment() string {
	if len(t.Slug) == 0 {
		return ""
	}
	return t.Slug[len(t.Slug)-1]
}

// SplitSlug splits a catch-all path parameter on '/'. Empty interior and
// leading segments are kept so an absolute path stays detectable; a trailing
// slash is dropped.
func SplitSlug(raw string) []string {
	if raw == "" {
		return nil
	}
	segments := strings.Split(raw, "/")
	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return segments
}

// SlugFromURL recovers the slug from a request path when the router did not
// provide one: "<prefix>/<slug>" for direct calls, "/<slug><suffix>" for
// requests that arrived without being rewritten.
func SlugFromURL(urlPath, prefix, suffix string) (string, bool) {
	if rest, ok := strings.CutPrefix(urlPath, prefix+"/"); ok {
		return rest, rest != ""
	}
	if suffix != "" && strings.HasSuffix(urlPath, suffix) {
		rest := strings.TrimSuffix(strings.TrimPrefix(urlPath, "/"), suffix)
		return rest, rest != ""
	}
	return "", false
}

// NewTarget extracts the locale and validates the document path.
//
// A non-empty forwarded locale always wins over a locale segment in the slug
// and is normalized to the default when unsupported. Without it, a leading
// segment naming a supported locale is consumed.
func NewTarget(slug []string, forwardedLocale string, locales *locale.Set) (Target, error) {
	segments := append([]string(nil), slug...)

	var code string
	switch {
	case forwardedLocale != "":
		code = locales.Normalize(forwardedLocale)
	case len(segments) > 0 && locales.Supports(segments[0]):
		code = segments[0]
		segments = segments[1:]
	default:
		code = locales.Default()
	}

	if len(segments) == 0 {
		return Target{}, ErrNotFound
	}

	docPath, err := ValidatePath(strings.Join(segments, "/"))
	if err != nil {
		return Target{}, err
	}
	return Target{Slug: segments, Locale: code, DocPath: docPath}, nil
}

// ValidatePath normalizes a slash-separated relative path and rejects anything
// that could leave the documents root: parent references (before or after
// cleaning), absolute paths, Windows volume or backslash-rooted forms, NUL
// bytes, and the root itself. It never touches the filesystem.
func ValidatePath(docPath string) (string, error) {
	if slices.Contains(strings.Split(docPath, "/"), "..") {
		return "", ErrInvalidPath.WithContext("doc_path", docPath)
	}
	cleaned := path.Clean(docPath)
	switch {
	case strings.Contains(cleaned, ".."),
		path.IsAbs(cleaned),
		strings.HasPrefix(cleaned, `\`),
		hasDriveLetter(cleaned),
		filepath.IsAbs(filepath.FromSlash(cleaned)),
		filepath.VolumeName(filepath.FromSlash(cleaned)) != "",
		strings.ContainsRune(cleaned, 0),
		cleaned == ".":
		return "", ErrInvalidPath.WithContext("doc_path", docPath)
	}
	return cleaned, nil
}

// hasDriveLetter matches "C:" style prefixes on every platform.
func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}
