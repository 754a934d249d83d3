package characters

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-imports definition files in a directory when they change.
// The importer must read from the OS filesystem for events to line up with
// what it reads.
type Watcher struct {
	dir      string
	importer *Importer

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}

	// onImport is called after each event-driven import; tests use it.
	onImport func(path string, res Result, err error)
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, importer *Importer) *Watcher {
	return &Watcher{dir: dir, importer: importer}
}

// Start performs an initial import of dir and then watches it until ctx is
// canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := w.importer.ImportPath(ctx, w.dir); err != nil {
		slog.ErrorContext(ctx, "Initial character import failed", "dir", w.dir, "error", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(ctx, fw, w.done)
	slog.InfoContext(ctx, "Watching character definitions", "dir", w.dir)
	return nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	fw := w.watcher
	done := w.done
	w.watcher = nil
	w.mu.Unlock()

	if fw == nil {
		return nil
	}
	err := fw.Close()
	<-done
	return err
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.ErrorContext(ctx, "Character watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !IsDefinitionFile(event.Name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	res, err := w.importer.ImportFile(ctx, event.Name)
	switch {
	case err != nil:
		slog.ErrorContext(ctx, "Failed to import changed character file", "path", event.Name, "error", err)
	case len(res.Failed) > 0:
		slog.WarnContext(ctx, "Character file imported with errors", "path", event.Name,
			"created", res.Created, "updated", res.Updated, "error", res.Err())
	default:
		slog.InfoContext(ctx, "Character file reloaded", "path", event.Name,
			"created", res.Created, "updated", res.Updated)
	}
	if w.onImport != nil {
		w.onImport(event.Name, res, err)
	}
}
