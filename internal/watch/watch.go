// Package watch keeps a store in sync with a directory of documents: every
// created or modified *.json file is re-imported after a short debounce
// window, so editor save bursts collapse into one import.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/resumedb/resumedb/internal/importer"
)

// Config configures a Watcher.
type Config struct {
	// Dir is the document directory to watch.
	Dir string
	// DebounceInterval is how long a file must sit quiet before it is
	// imported. Zero means 500ms.
	DebounceInterval time.Duration
	// Logger receives progress and per-file errors; nil means stderr.
	Logger *log.Logger
	// OnResult, when set, receives every import outcome. Import failures
	// are reported here and logged; they never stop the watcher.
	OnResult func(*importer.ImportResult, error)
}

// Watcher re-imports documents as they change on disk.
type Watcher struct {
	config   Config
	importer *importer.Importer

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	queueMu sync.Mutex
	queue   map[string]time.Time

	mu      sync.Mutex
	running bool
}

// New creates a Watcher. It does nothing until Start is called.
func New(im *importer.Importer, config Config) (*Watcher, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 500 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[watch] ", log.LstdFlags)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		config:   config,
		importer: im,
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(map[string]time.Time),
	}, nil
}

// Start begins watching. It returns immediately; events are processed on
// background goroutines until Stop.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.config.Dir, err)
	}

	w.running = true
	w.wg.Add(2)
	go w.processEvents()
	go w.processQueue()

	w.config.Logger.Printf("watching %s", w.config.Dir)
	return nil
}

// Stop shuts the watcher down and waits for in-flight imports to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.cancel()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	return nil
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			// Deletes and renames need no import; the store keeps the
			// last imported state.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.queueMu.Lock()
			w.queue[event.Name] = time.Now()
			w.queueMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.config.Logger.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) processQueue() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.importPending()
		}
	}
}

// importPending imports every queued file that has sat quiet for a full
// debounce interval.
func (w *Watcher) importPending() {
	w.queueMu.Lock()
	now := time.Now()
	var due []string
	for path, queuedAt := range w.queue {
		if now.Sub(queuedAt) >= w.config.DebounceInterval {
			due = append(due, path)
			delete(w.queue, path)
		}
	}
	w.queueMu.Unlock()

	for _, path := range due {
		res, err := w.importer.ImportFile(w.ctx, path, false)
		if err != nil {
			w.config.Logger.Printf("failed to import %s: %v", filepath.Base(path), err)
		} else {
			w.config.Logger.Printf("imported %s as (%s, %s)",
				filepath.Base(path), res.ResumeKey, res.Language)
		}
		if w.config.OnResult != nil {
			w.config.OnResult(res, err)
		}
	}
}
