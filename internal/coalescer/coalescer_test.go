package coalescer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/store"
)

// countingStore wraps the real store and counts Update calls.
type countingStore struct {
	store.Store
	updates atomic.Int64
}

func (c *countingStore) Update(ctx context.Context, id string, fields store.Partial) error {
	c.updates.Add(1)
	return c.Store.Update(ctx, id, fields)
}

// gateStore wraps the real store and holds Update open for one chosen
// note so tests can land edits while a flush is mid-write.
type gateStore struct {
	store.Store
	gateID  string
	entered chan struct{}
	release chan struct{}
}

func (g *gateStore) Update(ctx context.Context, id string, fields store.Partial) error {
	if id == g.gateID {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.Store.Update(ctx, id, fields)
}

type fakeSched struct {
	requests atomic.Int64
}

func (f *fakeSched) Request() { f.requests.Add(1) }

func setup(t *testing.T, delay time.Duration) (*countingStore, *fakeSched, *Coalescer, *note.Note) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	n := note.New("draft", "")
	if err := st.Create(context.Background(), n); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	cs := &countingStore{Store: st}
	sched := &fakeSched{}
	c := New(cs, sched, delay, log.New(os.Stderr, "[test] ", 0))
	return cs, sched, c, n
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestBurstProducesOneWrite(t *testing.T) {
	cs, sched, c, n := setup(t, 50*time.Millisecond)

	// N rapid edits inside the debounce window.
	for i := 1; i <= 10; i++ {
		c.Edit(n.ID, "draft", fmt.Sprintf("keystroke %d", i))
	}

	waitFor(t, "debounced write", func() bool { return cs.updates.Load() == 1 })

	got, err := cs.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "keystroke 10" {
		t.Errorf("content = %q, want only the final edit", got.Content)
	}
	if sched.requests.Load() != 1 {
		t.Errorf("sync triggers = %d, want exactly 1", sched.requests.Load())
	}

	// Nothing else fires after the quiet period.
	time.Sleep(100 * time.Millisecond)
	if cs.updates.Load() != 1 {
		t.Errorf("writes = %d after quiet period, want 1", cs.updates.Load())
	}
}

func TestSeparateBurstsProduceSeparateWrites(t *testing.T) {
	cs, sched, c, n := setup(t, 30*time.Millisecond)

	c.Edit(n.ID, "draft", "first")
	waitFor(t, "first write", func() bool { return cs.updates.Load() == 1 })

	c.Edit(n.ID, "draft", "second")
	waitFor(t, "second write", func() bool { return cs.updates.Load() == 2 })

	got, err := cs.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "second" {
		t.Errorf("content = %q, want second", got.Content)
	}
	if sched.requests.Load() != 2 {
		t.Errorf("sync triggers = %d, want 2", sched.requests.Load())
	}
}

func TestSwitchingNotesFlushesPendingEdit(t *testing.T) {
	cs, _, c, n := setup(t, time.Hour) // timer never fires on its own

	other := note.New("other", "")
	if err := cs.Create(context.Background(), other); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	c.Edit(n.ID, "draft", "buffered")
	c.Edit(other.ID, "other", "new focus")

	// The first note's edit was flushed by the switch.
	got, err := cs.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "buffered" {
		t.Errorf("content = %q, want buffered edit flushed on switch", got.Content)
	}

	// The second note's edit is still pending.
	got, err = cs.Get(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "" {
		t.Errorf("content = %q, want pending (unflushed) edit", got.Content)
	}
}

func TestFlush(t *testing.T) {
	cs, sched, c, n := setup(t, time.Hour)

	c.Edit(n.ID, "draft", "about to shut down")
	c.Flush()

	got, err := cs.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "about to shut down" {
		t.Errorf("content = %q, want flushed edit", got.Content)
	}
	if sched.requests.Load() != 1 {
		t.Errorf("sync triggers = %d, want 1", sched.requests.Load())
	}

	// Flushing with nothing buffered is a no-op.
	c.Flush()
	if cs.updates.Load() != 1 {
		t.Errorf("writes = %d after empty flush, want 1", cs.updates.Load())
	}
}

func TestEditDuringSwitchFlushIsNotLost(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	first := note.New("first", "")
	second := note.New("second", "")
	third := note.New("third", "")
	for _, n := range []*note.Note{first, second, third} {
		if err := st.Create(context.Background(), n); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	gs := &gateStore{
		Store:   st,
		gateID:  first.ID,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	co := New(gs, &fakeSched{}, time.Hour, log.New(os.Stderr, "[test] ", 0))

	co.Edit(first.ID, "first", "one")

	// Switching notes flushes the first edit; the store holds that write
	// open so another edit can land mid-flush.
	done := make(chan struct{})
	go func() {
		co.Edit(second.ID, "second", "two")
		close(done)
	}()
	<-gs.entered

	co.Edit(third.ID, "third", "three")

	close(gs.release)
	<-done
	co.Flush()

	for _, tc := range []struct {
		n    *note.Note
		want string
	}{
		{first, "one"},
		{second, "two"},
		{third, "three"},
	} {
		got, err := gs.Get(context.Background(), tc.n.ID)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", tc.n.Title, err)
		}
		if got.Content != tc.want {
			t.Errorf("%s content = %q, want %q", tc.n.Title, got.Content, tc.want)
		}
	}
}

func TestEditUnknownNoteLogsAndContinues(t *testing.T) {
	cs, sched, c, _ := setup(t, 10*time.Millisecond)

	c.Edit("no-such-id", "x", "y")

	time.Sleep(50 * time.Millisecond)
	if got := sched.requests.Load(); got != 0 {
		t.Errorf("sync triggers = %d for a failed write, want 0", got)
	}
	_ = cs // write attempted, error swallowed
}
