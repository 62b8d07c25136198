package rawdoc

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/napi-rs/docsite/internal/locale"
)

var testLocales = locale.MustNewSet([]string{"en", "cn", "pt-BR"}, "en", map[string]string{"cn": "zh-CN"})

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func newTestResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	r, err := New(Options{
		Root:       root,
		Extensions: []string{".mdx", ".md"},
		Locales:    testLocales,
	})
	require.NoError(t, err)
	return r
}

func TestNewRequiresExistingRoot(t *testing.T) {
	_, err := New(Options{
		Root:       filepath.Join(t.TempDir(), "missing"),
		Extensions: []string{".md"},
		Locales:    testLocales,
	})
	require.Error(t, err)

	_, err = New(Options{Root: t.TempDir(), Locales: testLocales})
	require.Error(t, err)

	_, err = New(Options{Root: t.TempDir(), Extensions: []string{".md"}})
	require.Error(t, err)
}

func TestSplitSlug(t *testing.T) {
	require.Nil(t, SplitSlug(""))
	require.Equal(t, []string{"docs", "cli"}, SplitSlug("docs/cli"))
	require.Equal(t, []string{"docs", "cli"}, SplitSlug("docs/cli/"))
	require.Equal(t, []string{"", "etc", "passwd"}, SplitSlug("/etc/passwd"))
	require.Empty(t, SplitSlug("/"))
}

func TestSlugFromURL(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/api/raw/docs/cli", "docs/cli", true},
		{"/api/raw/", "", false},
		{"/api/raw", "", false},
		{"/docs/cli.md", "docs/cli", true},
		{"/.md", "", false},
		{"/docs/cli", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := SlugFromURL(tt.path, "/api/raw", ".md")
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePath(t *testing.T) {
	valid := map[string]string{
		"docs/cli":          "docs/cli",
		"docs//cli":         "docs/cli",
		"docs/./cli":        "docs/cli",
		"docs/introduction": "docs/introduction",
	}
	for in, want := range valid {
		got, err := ValidatePath(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	invalid := []string{
		"../../etc/passwd",
		"docs/../../secret",
		"docs/../cli",
		"..",
		"/etc/passwd",
		`\windows\system32`,
		"C:/Windows/win.ini",
		"c:secret",
		"docs/\x00cli",
		".",
		"./",
	}
	for _, in := range invalid {
		_, err := ValidatePath(in)
		require.True(t, IsInvalidPath(err), "expected invalid path for %q, got %v", in, err)
	}
}

func TestNewTargetLocaleExtraction(t *testing.T) {
	tests := []struct {
		name      string
		slug      []string
		forwarded string
		locale    string
		docPath   string
	}{
		{"default", []string{"docs", "cli"}, "", "en", "docs/cli"},
		{"slug segment", []string{"pt-BR", "docs", "cli"}, "", "pt-BR", "docs/cli"},
		{"forwarded header", []string{"docs", "cli"}, "cn", "cn", "docs/cli"},
		{"header overrides slug", []string{"pt-BR", "docs", "cli"}, "cn", "cn", "pt-BR/docs/cli"},
		{"unsupported header", []string{"cn", "docs"}, "fr", "en", "cn/docs"},
		{"case sensitive", []string{"pt-br", "docs"}, "", "en", "pt-br/docs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NewTarget(tt.slug, tt.forwarded, testLocales)
			require.NoError(t, err)
			require.Equal(t, tt.locale, target.Locale)
			require.Equal(t, tt.docPath, target.DocPath)
		})
	}
}

func TestNewTargetEmptySlug(t *testing.T) {
	for _, slug := range [][]string{nil, {}, {"cn"}} {
		_, err := NewTarget(slug, "", testLocales)
		require.ErrorIs(t, err, ErrNotFound)
	}
}

func TestNewTargetDoesNotMutateSlug(t *testing.T) {
	slug := []string{"cn", "docs"}
	_, err := NewTarget(slug, "", testLocales)
	require.NoError(t, err)
	require.Equal(t, []string{"cn", "docs"}, slug)
}

func TestCandidatesOrder(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, root)

	got := r.Candidates(Target{Slug: []string{"docs", "cli"}, Locale: "pt-BR", DocPath: "docs/cli"})
	require.Len(t, got, 2)
	require.Equal(t, ".mdx", got[0].Extension)
	require.Equal(t, filepath.Join(r.Root(), "docs", "cli.pt-BR.mdx"), got[0].FullPath)
	require.Equal(t, ".md", got[1].Extension)
	require.Equal(t, filepath.Join(r.Root(), "docs", "cli.pt-BR.md"), got[1].FullPath)
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "docs/introduction/getting-started.en.mdx", "# Getting started (mdx)")
	writeDoc(t, root, "docs/introduction/getting-started.en.md", "# Getting started (md)")
	writeDoc(t, root, "docs/cli.pt-BR.md", "# CLI pt-BR")
	writeDoc(t, root, "docs/cli.en.md", "# CLI en")
	r := newTestResolver(t, root)
	ctx := context.Background()

	t.Run("richer markup wins", func(t *testing.T) {
		doc, err := r.Resolve(ctx, Request{Method: http.MethodGet, Slug: SplitSlug("docs/introduction/getting-started")})
		require.NoError(t, err)
		require.Equal(t, "# Getting started (mdx)", string(doc.Content))
		require.Equal(t, ".mdx", doc.Source.Extension)
		require.Equal(t, "getting-started.md", doc.Filename)
	})

	t.Run("plain markup fallback", func(t *testing.T) {
		doc, err := r.Resolve(ctx, Request{Method: http.MethodHead, Slug: []string{"pt-BR", "docs", "cli"}})
		require.NoError(t, err)
		require.Equal(t, "# CLI pt-BR", string(doc.Content))
		require.Equal(t, "cli.md", doc.Filename)
		require.Equal(t, "pt-BR", doc.Target.Locale)
	})

	t.Run("no locale fallback", func(t *testing.T) {
		_, err := r.Resolve(ctx, Request{Method: http.MethodGet, Slug: []string{"docs", "cli"}, ForwardedLocale: "cn"})
		require.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("method gate wins over invalid path", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodDelete, http.MethodPut, http.MethodOptions} {
			_, err := r.Resolve(ctx, Request{Method: method, Slug: []string{"..", "..", "etc", "passwd"}})
			require.True(t, IsMethodNotAllowed(err), method)
		}
	})

	t.Run("traversal", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodHead} {
			for _, fwd := range []string{"", "cn"} {
				_, err := r.Resolve(ctx, Request{Method: method, Slug: SplitSlug("../../etc/passwd"), ForwardedLocale: fwd})
				require.True(t, IsInvalidPath(err))
				_, err = r.Resolve(ctx, Request{Method: method, Slug: SplitSlug("/etc/passwd"), ForwardedLocale: fwd})
				require.True(t, IsInvalidPath(err))
			}
		}
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := r.Resolve(ctx, Request{Method: http.MethodGet, Slug: []string{"docs", "nonexistent"}})
		require.ErrorIs(t, err, ErrDocumentNotFound)
		require.True(t, IsNotFound(err))
	})

	t.Run("idempotent", func(t *testing.T) {
		req := Request{Method: http.MethodGet, Slug: []string{"docs", "cli"}}
		first, err := r.Resolve(ctx, req)
		require.NoError(t, err)
		second, err := r.Resolve(ctx, req)
		require.NoError(t, err)
		require.Equal(t, first.Content, second.Content)
		require.Equal(t, first.Filename, second.Filename)
	})
}

func TestLookupSkipsDirectoriesAndUnreadable(t *testing.T) {
	root := t.TempDir()
	// A directory named like the richer candidate is unreadable as a file.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guide.en.mdx"), 0o755))
	writeDoc(t, root, "guide.en.md", "plain")
	r := newTestResolver(t, root)

	doc, err := r.Resolve(context.Background(), Request{Method: http.MethodGet, Slug: []string{"guide"}})
	require.NoError(t, err)
	require.Equal(t, "plain", string(doc.Content))
}

func TestLookupRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	outside := t.TempDir()
	writeDoc(t, outside, "secret.en.md", "top secret")
	root := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.en.md"), filepath.Join(root, "leak.en.mdx")))
	r := newTestResolver(t, root)

	_, err := r.Resolve(context.Background(), Request{Method: http.MethodGet, Slug: []string{"linked", "secret"}})
	require.True(t, IsInvalidPath(err), "got %v", err)

	_, err = r.Resolve(context.Background(), Request{Method: http.MethodGet, Slug: []string{"leak"}})
	require.True(t, IsInvalidPath(err), "got %v", err)
}

func TestLookupAllowsSymlinkInsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeDoc(t, root, "real/page.en.md", "inside")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))
	r := newTestResolver(t, root)

	doc, err := r.Resolve(context.Background(), Request{Method: http.MethodGet, Slug: []string{"alias", "page"}})
	require.NoError(t, err)
	require.Equal(t, "inside", string(doc.Content))
}

func TestLookupHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "docs/cli.en.md", "x")
	r := newTestResolver(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, Request{Method: http.MethodGet, Slug: []string{"docs", "cli"}})
	require.ErrorIs(t, err, context.Canceled)
}
