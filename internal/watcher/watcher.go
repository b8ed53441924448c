// Package watcher bridges a drafts directory into the sync engine.
//
// In daemon mode each note may be edited externally as a markdown file
// named {id}.md inside the drafts directory. The watcher feeds file
// writes into the edit coalescer (so rapid editor saves debounce like any
// other edit) and turns file deletions into tombstones.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/driftpad/driftpad/internal/coalescer"
	"github.com/driftpad/driftpad/internal/store"
	"github.com/fsnotify/fsnotify"
)

// Requester is the scheduler hook used after a tombstone.
type Requester interface {
	Request()
}

// Watcher monitors the drafts directory for externally edited notes.
type Watcher struct {
	draftsDir string
	store     store.Store
	coalescer *coalescer.Coalescer
	sched     Requester
	logger    *log.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher. Use Start() to begin watching.
//
// If logger is nil, a default logger writing to stderr is used.
func New(draftsDir string, st store.Store, co *coalescer.Coalescer, sched Requester, logger *log.Logger) (*Watcher, error) {
	if draftsDir == "" {
		return nil, fmt.Errorf("draftsDir cannot be empty")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[watch] ", log.LstdFlags)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		draftsDir: draftsDir,
		store:     st,
		coalescer: co,
		sched:     sched,
		logger:    logger,
		watcher:   fw,
	}, nil
}

// Start begins watching the drafts directory, creating it if needed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	if err := os.MkdirAll(w.draftsDir, 0755); err != nil {
		return fmt.Errorf("failed to create drafts directory: %w", err)
	}
	if err := w.watcher.Add(w.draftsDir); err != nil {
		return fmt.Errorf("failed to watch drafts directory %s: %w", w.draftsDir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Printf("Watching drafts: %s", w.draftsDir)
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false

	w.cancel()
	if err := w.watcher.Close(); err != nil {
		w.logger.Printf("Error closing watcher: %v", err)
	}
	w.wg.Wait()
	return nil
}

// loop consumes filesystem events until stopped.
func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			w.handle(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("Watcher error: %v", err)
		}
	}
}

// handle routes one draft file event. The file is stat'ed rather than
// trusting the event op: editors that save by rename-replace emit Remove
// for files that still exist.
func (w *Watcher) handle(ctx context.Context, path string) {
	id := strings.TrimSuffix(filepath.Base(path), ".md")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		w.logger.Printf("Draft removed, tombstoning note: %s", id)
		if err := w.store.MarkTombstoned(ctx, id); err != nil {
			w.logger.Printf("WARNING: failed to tombstone note %s: %v", id, err)
			return
		}
		w.sched.Request()
		return
	}

	title, content, err := ReadDraft(path)
	if err != nil {
		w.logger.Printf("WARNING: failed to read draft %s: %v", path, err)
		return
	}

	w.coalescer.Edit(id, title, content)
}

// ReadDraft parses a draft file: the first line (with any leading "# "
// stripped) is the title, the remainder is the content.
func ReadDraft(path string) (title, content string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read draft file %s: %w", path, err)
	}

	text := string(data)
	title, content, _ = strings.Cut(text, "\n")
	title = strings.TrimPrefix(strings.TrimSpace(title), "# ")
	content = strings.TrimPrefix(content, "\n")
	return title, content, nil
}

// WriteDraft renders a note back into draft form, the inverse of
// ReadDraft. Used when exporting the active set into the drafts
// directory for external editing.
func WriteDraft(draftsDir, id, title, content string) error {
	if err := os.MkdirAll(draftsDir, 0755); err != nil {
		return fmt.Errorf("failed to create drafts directory: %w", err)
	}

	text := fmt.Sprintf("# %s\n\n%s", title, content)
	path := filepath.Join(draftsDir, id+".md")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write draft file %s: %w", path, err)
	}
	return nil
}
