package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/driftpad/driftpad/internal/note"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *SQLite, title, content string) *note.Note {
	t.Helper()

	n := note.New(title, content)
	if err := s.Create(context.Background(), n); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return n
}

func strptr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "Groceries", "milk")

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != "Groceries" || got.Content != "milk" {
		t.Errorf("Get() = %q/%q, want Groceries/milk", got.Title, got.Content)
	}
	if got.SyncState != note.SyncDirty {
		t.Errorf("fresh note sync state = %q, want dirty", got.SyncState)
	}
	if !got.UpdatedAt.Equal(n.UpdatedAt) {
		t.Errorf("updated_at did not round-trip: got %v, want %v", got.UpdatedAt, n.UpdatedAt)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "a", "")
	if err := s.Create(ctx, n); err == nil {
		t.Error("Create() with duplicate id succeeded, want error")
	}
}

func TestUpdate_MarksDirtyAndRefreshesUpdatedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "a", "old")
	if _, err := s.ClearDirty(ctx, n.ID, n.UpdatedAt); err != nil {
		t.Fatalf("ClearDirty() failed: %v", err)
	}

	if err := s.Update(ctx, n.ID, Partial{Content: strptr("new")}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "new" {
		t.Errorf("content = %q, want %q", got.Content, "new")
	}
	if got.Title != "a" {
		t.Errorf("title changed to %q on a content-only update", got.Title)
	}
	if got.SyncState != note.SyncDirty {
		t.Errorf("sync state = %q after update, want dirty", got.SyncState)
	}
	if !got.UpdatedAt.After(n.UpdatedAt) {
		t.Errorf("updated_at %v not refreshed past %v", got.UpdatedAt, n.UpdatedAt)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.Update(context.Background(), "missing", Partial{Title: strptr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestMarkTombstoned_HidesFromActive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "a", "")
	if err := s.MarkTombstoned(ctx, n.ID); err != nil {
		t.Fatalf("MarkTombstoned() failed: %v", err)
	}

	active, err := s.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListActive() returned %d notes, want 0", len(active))
	}

	dirty, err := s.ListDirty(ctx)
	if err != nil {
		t.Fatalf("ListDirty() failed: %v", err)
	}
	if len(dirty) != 1 || dirty[0].Lifecycle != note.LifecycleTombstoned {
		t.Errorf("ListDirty() = %+v, want one tombstoned note", dirty)
	}
}

func TestPurge_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "a", "")
	if err := s.Purge(ctx, n.ID); err != nil {
		t.Fatalf("Purge() failed: %v", err)
	}
	if err := s.Purge(ctx, n.ID); err != nil {
		t.Errorf("second Purge() failed: %v", err)
	}
	if _, err := s.Get(ctx, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after purge error = %v, want ErrNotFound", err)
	}
}

func TestListDirty_ExcludesClean(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, "a", "")
	mustCreate(t, s, "b", "")

	if _, err := s.ClearDirty(ctx, a.ID, a.UpdatedAt); err != nil {
		t.Fatalf("ClearDirty() failed: %v", err)
	}

	dirty, err := s.ListDirty(ctx)
	if err != nil {
		t.Fatalf("ListDirty() failed: %v", err)
	}
	if len(dirty) != 1 || dirty[0].Title != "b" {
		t.Errorf("ListDirty() = %+v, want only note b", dirty)
	}
}

func TestClearDirty_SnapshotGuard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "a", "v1")

	// Simulate an edit landing while the push was in flight.
	if err := s.Update(ctx, n.ID, Partial{Content: strptr("v2")}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	cleared, err := s.ClearDirty(ctx, n.ID, n.UpdatedAt)
	if err != nil {
		t.Fatalf("ClearDirty() failed: %v", err)
	}
	if cleared {
		t.Error("ClearDirty() cleared a note edited after the snapshot")
	}

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.SyncState != note.SyncDirty {
		t.Errorf("sync state = %q, want dirty after stale clear attempt", got.SyncState)
	}

	// Clearing with the current timestamp works.
	cleared, err = s.ClearDirty(ctx, n.ID, got.UpdatedAt)
	if err != nil {
		t.Fatalf("ClearDirty() failed: %v", err)
	}
	if !cleared {
		t.Error("ClearDirty() with a matching snapshot did not clear")
	}
}

func TestSaveRemote_InsertsMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	r := note.Remote{ID: "r1", Title: "remote", Content: "body", CreatedAt: now, UpdatedAt: now}
	if err := s.SaveRemote(ctx, r); err != nil {
		t.Fatalf("SaveRemote() failed: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.SyncState != note.SyncClean || got.Lifecycle != note.LifecycleActive {
		t.Errorf("pulled note state = %s/%s, want clean/active", got.SyncState, got.Lifecycle)
	}
}

func TestSaveRemote_NeverOverwritesDirty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "local", "unpushed edit")

	r := note.Remote{
		ID:        n.ID,
		Title:     "remote",
		Content:   "remote body",
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt.Add(time.Hour),
	}
	if err := s.SaveRemote(ctx, r); err != nil {
		t.Fatalf("SaveRemote() failed: %v", err)
	}

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Content != "unpushed edit" {
		t.Errorf("dirty local content overwritten by pull: %q", got.Content)
	}
	if got.SyncState != note.SyncDirty {
		t.Errorf("sync state = %q, want dirty", got.SyncState)
	}
}

func TestSaveRemote_NeverResurrectsTombstone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "doomed", "")
	if err := s.MarkTombstoned(ctx, n.ID); err != nil {
		t.Fatalf("MarkTombstoned() failed: %v", err)
	}

	r := note.Remote{ID: n.ID, Title: "back", CreatedAt: n.CreatedAt, UpdatedAt: time.Now().Add(time.Hour)}
	if err := s.SaveRemote(ctx, r); err != nil {
		t.Fatalf("SaveRemote() failed: %v", err)
	}

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Lifecycle != note.LifecycleTombstoned {
		t.Errorf("lifecycle = %q, want tombstoned", got.Lifecycle)
	}
}

func TestSaveRemote_OverwritesClean(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, "old", "old body")
	if _, err := s.ClearDirty(ctx, n.ID, n.UpdatedAt); err != nil {
		t.Fatalf("ClearDirty() failed: %v", err)
	}

	r := note.Remote{
		ID:        n.ID,
		Title:     "new",
		Content:   "new body",
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt.Add(time.Minute),
	}
	if err := s.SaveRemote(ctx, r); err != nil {
		t.Fatalf("SaveRemote() failed: %v", err)
	}

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != "new" || got.Content != "new body" {
		t.Errorf("clean note not overwritten: %q/%q", got.Title, got.Content)
	}
	if got.SyncState != note.SyncClean {
		t.Errorf("sync state = %q, want clean", got.SyncState)
	}
}
