// Package coalescer debounces rapid local edits into a single durable
// store write and a single sync trigger per quiet period.
//
// The coalescer owns one single-slot timer: each edit replaces the
// buffered values and re-arms the timer (trailing-edge debounce), so a
// burst of keystrokes produces exactly one write reflecting the final
// state, never one per keystroke.
package coalescer

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/driftpad/driftpad/internal/store"
)

// Requester is the scheduler hook the coalescer pokes after a flush.
type Requester interface {
	Request()
}

// Coalescer buffers the latest title/content for the note currently
// being edited.
type Coalescer struct {
	store  store.Store
	sched  Requester
	delay  time.Duration
	logger *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *pendingEdit
}

type pendingEdit struct {
	id      string
	title   string
	content string
}

// New creates a Coalescer flushing after the given quiet period.
//
// If logger is nil, a default logger writing to stderr is used.
func New(st store.Store, sched Requester, delay time.Duration, logger *log.Logger) *Coalescer {
	if logger == nil {
		logger = log.New(os.Stderr, "[coalesce] ", log.LstdFlags)
	}
	return &Coalescer{
		store:  st,
		sched:  sched,
		delay:  delay,
		logger: logger,
	}
}

// Edit buffers the latest values for the note and re-arms the debounce
// timer. An edit for a different note flushes the pending one immediately
// so no buffered work is lost when the user switches notes.
func (c *Coalescer) Edit(id, title, content string) {
	c.mu.Lock()

	// Flushing drops the lock, so a concurrent Edit can buffer a new note
	// in the gap; loop until the slot is empty or already holds this note.
	for c.pending != nil && c.pending.id != id {
		edit := c.takePendingLocked()
		c.mu.Unlock()
		c.write(edit)
		c.mu.Lock()
	}

	c.pending = &pendingEdit{id: id, title: title, content: content}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.fire)

	c.mu.Unlock()
}

// Flush writes any buffered edit immediately and triggers a pass.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	edit := c.takePendingLocked()
	c.mu.Unlock()

	c.write(edit)
}

// Close flushes and stops the coalescer. Call during shutdown so a quiet
// period in progress still reaches the store.
func (c *Coalescer) Close() {
	c.Flush()
}

// fire is the timer callback: one durable write, one sync trigger.
func (c *Coalescer) fire() {
	c.mu.Lock()
	c.timer = nil
	edit := c.takePendingLocked()
	c.mu.Unlock()

	c.write(edit)
}

// takePendingLocked detaches the buffered edit. Callers hold c.mu.
func (c *Coalescer) takePendingLocked() *pendingEdit {
	edit := c.pending
	c.pending = nil
	return edit
}

// write persists the edit and asks the scheduler for an out-of-band pass.
// A store failure is surfaced to the log only; the edit's values are
// gone from the buffer, but the note row itself still holds the previous
// durable state.
func (c *Coalescer) write(edit *pendingEdit) {
	if edit == nil {
		return
	}

	fields := store.Partial{Title: &edit.title, Content: &edit.content}
	if err := c.store.Update(context.Background(), edit.id, fields); err != nil {
		c.logger.Printf("WARNING: failed to persist edit for note %s: %v", edit.id, err)
		return
	}

	c.sched.Request()
}
