// Package watch ingests PDFs dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/psyra-labs/psyra-cli/internal/core/ports/driving"
	"github.com/psyra-labs/psyra-cli/internal/logger"
)

// settleDelay is how long a file must stay quiet after its last write
// event before it is considered fully copied.
const settleDelay = 2 * time.Second

// Watcher monitors a drop folder and ingests new PDF files.
type Watcher struct {
	dir      string
	bookType string
	ingest   driving.IngestService

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over dir. Each settled PDF is ingested under
// the given book type label.
func New(dir, bookType string, ingest driving.IngestService) *Watcher {
	return &Watcher{
		dir:      dir,
		bookType: bookType,
		ingest:   ingest,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches the directory until the context is cancelled. Ingestion
// failures for individual files are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for new PDFs", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// schedule (re)arms the settle timer for a file. Every write event
// pushes ingestion back until the file stops changing.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(settleDelay)
		return
	}
	w.timers[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		report, err := w.ingest.IngestBook(ctx, path, w.bookType)
		if err != nil {
			logger.Warn("Ingest %s: %v", path, err)
			return
		}
		logger.Info("Ingested %s: %d passages", report.BookName, report.Passages)
	})
}
