package sitemap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherRegeneratesAfterChanges(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "index.html", "<html></html>")
	g := newTestGenerator(t, dir)

	w, err := NewWatcher(g, 50*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop(ctx)) }()

	writePage(t, dir, "docs/new-page.html", "<html></html>")

	require.Eventually(t, func() bool {
		report, err := Verify(dir, "https://napi.rs")
		return err == nil && report.URLCount == 2
	}, 5*time.Second, 25*time.Millisecond)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(newTestGenerator(t, t.TempDir()), 0)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
}

func TestRelevant(t *testing.T) {
	require.True(t, relevant(filepath.Join("x", "page.html")))
	require.True(t, relevant(filepath.Join("x", "docs")))
	require.False(t, relevant(filepath.Join("x", SitemapFile)))
	require.False(t, relevant(filepath.Join("x", RobotsFile)))
	require.False(t, relevant(filepath.Join("x", ".sitemap.xml-12345")))
	require.False(t, relevant(filepath.Join("x", "app.js")))
}
