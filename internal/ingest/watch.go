package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/farolabs/faro/internal/extract"
)

// DefaultDebounce is the quiet period a changed file must hold before it is
// re-ingested, so editors that write in bursts trigger one ingestion.
const DefaultDebounce = 2 * time.Second

// Watcher re-ingests files as they change under the docs root. Create and
// write events queue the file; after the debounce quiet period it runs
// through the normal ingestion path. Removals are ignored: the index keeps
// the last ingested version of a deleted file.
type Watcher struct {
	ing      *Ingestor
	debounce time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewWatcher(ing *Ingestor, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ing:      ing,
		debounce: debounce,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start watches the docs root and every area directory until the context is
// cancelled or Stop is called. New area directories are picked up as they
// appear.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.doneChan)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.ing.DocsRoot()); err != nil {
		return fmt.Errorf("watch docs root: %w", err)
	}
	areas, err := w.ing.Areas()
	if err != nil {
		return err
	}
	for _, area := range areas {
		if err := fsw.Add(filepath.Join(w.ing.DocsRoot(), area)); err != nil {
			log.Printf("watch: cannot watch area %s: %v", area, err)
		}
	}

	log.Printf("watch: watching %s (%d areas, debounce %v)", w.ing.DocsRoot(), len(areas), w.debounce)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("watch: stopped, context cancelled")
			return nil
		case <-w.stopChan:
			log.Println("watch: stopped")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, pending)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		case <-ticker.C:
			w.flush(ctx, pending)
		}
	}
}

// Stop halts the watch loop and waits for it to drain.
func (w *Watcher) Stop() {
	close(w.stopChan)
	<-w.doneChan
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, pending map[string]time.Time) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		// A new area directory: watch it and queue whatever it already
		// holds, since files may land before the watch is in place.
		if filepath.Dir(ev.Name) != filepath.Clean(w.ing.DocsRoot()) {
			return
		}
		if strings.HasPrefix(filepath.Base(ev.Name), ".") || strings.HasPrefix(filepath.Base(ev.Name), "_") {
			return
		}
		if err := fsw.Add(ev.Name); err != nil {
			log.Printf("watch: cannot watch new area %s: %v", ev.Name, err)
			return
		}
		log.Printf("watch: new area directory %s", ev.Name)
		entries, err := os.ReadDir(ev.Name)
		if err != nil {
			return
		}
		for _, e := range entries {
			path := filepath.Join(ev.Name, e.Name())
			if !e.IsDir() && w.ingestible(path) {
				pending[path] = time.Now()
			}
		}
		return
	}

	if w.ingestible(ev.Name) {
		pending[ev.Name] = time.Now()
	}
}

// flush ingests every queued file whose quiet period has elapsed.
func (w *Watcher) flush(ctx context.Context, pending map[string]time.Time) {
	now := time.Now()
	for path, last := range pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(pending, path)

		area, err := w.areaFor(path)
		if err != nil {
			log.Printf("watch: %v", err)
			continue
		}
		if _, err := w.ing.Ingest(ctx, path, area); err != nil {
			log.Printf("watch: re-ingest %s failed: %v", path, err)
		}
	}
}

func (w *Watcher) ingestible(path string) bool {
	return extract.Supported(path) && !w.ing.ignored(filepath.Base(path))
}

// areaFor derives the owning area from a path's first component below the
// docs root.
func (w *Watcher) areaFor(path string) (string, error) {
	rel, err := filepath.Rel(w.ing.DocsRoot(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the docs root", path)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("%s is not inside an area directory", path)
	}
	return parts[0], nil
}
