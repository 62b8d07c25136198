package sitemap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/napi-rs/docsite/internal/logfields"
)

// Watcher monitors the export directory and regenerates the sitemap once
// changes settle.
type Watcher struct {
	root         string
	generator    *Generator
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopOnce     sync.Once
	stopChan     chan struct{}
	triggerChan  chan struct{}
	debounceTime time.Duration
}

// NewWatcher creates a watcher for the generator's export directory.
func NewWatcher(g *Generator, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Resolve absolute path for consistent watching
	absPath, err := filepath.Abs(g.ExportDir())
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve export path: %w", err)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &Watcher{
		root:         absPath,
		generator:    g,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		triggerChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}, nil
}

// Start watches every directory of the export and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return fmt.Errorf("failed to watch export directory %s: %w", w.root, err)
	}

	slog.Info("Starting sitemap watcher", slog.String("export_dir", w.root))

	go w.watchLoop(ctx)
	go w.regenerateLoop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop(_ context.Context) error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		slog.Info("Stopping sitemap watcher")
		close(w.stopChan)
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	})
	return nil
}

// addTree adds root and every directory below it; fsnotify is not recursive.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
}

// watchLoop monitors file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event.Name) {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				// New directories must be watched too; adding a file path fails harmlessly.
				w.mu.Lock()
				_ = w.addTree(event.Name)
				w.mu.Unlock()
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("Export change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
				w.trigger()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Sitemap watcher error", logfields.Error(err))
		}
	}
}

// regenerateLoop handles debounced regeneration.
func (w *Watcher) regenerateLoop(ctx context.Context) {
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.triggerChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				select {
				case <-w.stopChan:
					return
				default:
				}
				w.generator.Run(ctx)
			})
		}
	}
}

// trigger requests a debounced regeneration.
func (w *Watcher) trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default:
		// Regeneration already pending
	}
}

// relevant filters out the files the generator writes itself.
func relevant(name string) bool {
	base := filepath.Base(name)
	if base == SitemapFile || base == RobotsFile {
		return false
	}
	if strings.HasPrefix(base, "."+SitemapFile+"-") || strings.HasPrefix(base, "."+RobotsFile+"-") {
		return false
	}
	ext := filepath.Ext(base)
	return ext == "" || ext == ".html"
}
