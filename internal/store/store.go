// Package store provides the durable local cache of note records.
//
// The store is the only component with physical persistence. It keeps one
// row per note id and maintains the dirty/tombstone bookkeeping the sync
// engine depends on: every local mutation marks the row dirty and refreshes
// updated_at, and only an acknowledged remote operation clears that state.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/driftpad/driftpad/internal/note"
)

// ErrNotFound is returned by Get when no note with the given id exists.
var ErrNotFound = errors.New("note not found")

// Partial carries the fields an update may change. Nil fields are left
// untouched.
type Partial struct {
	Title   *string
	Content *string
}

// Store is the contract the rest of the application uses to read and
// mutate the local note collection.
//
// All writes are durable before the call returns. Mutating calls
// (Create, Update, MarkTombstoned) always set the note dirty and refresh
// updated_at; they never clear sync state. Clearing is reserved for the
// reconciler via ClearDirty and SaveRemote, which are acknowledged-remote
// transitions.
type Store interface {
	// Create inserts a new note record. The note must carry a
	// client-generated id; ids are immutable for the record's lifetime.
	Create(ctx context.Context, n *note.Note) error

	// Update applies the non-nil fields to the note, marks it dirty and
	// refreshes updated_at. Returns ErrNotFound if the note doesn't exist.
	Update(ctx context.Context, id string, fields Partial) error

	// MarkTombstoned flags the note as locally deleted. The row stays in
	// the store, dirty and tombstoned, until the remote delete is
	// acknowledged and Purge removes it.
	MarkTombstoned(ctx context.Context, id string) error

	// Purge removes the row entirely. Called only after the remote delete
	// was acknowledged (success or already absent). Idempotent.
	Purge(ctx context.Context, id string) error

	// Get returns the note with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*note.Note, error)

	// ListActive returns all non-tombstoned notes. This is the set the
	// rest of the application sees.
	ListActive(ctx context.Context) ([]*note.Note, error)

	// ListDirty returns all dirty notes, tombstoned ones included. This
	// is the push phase's work list.
	ListDirty(ctx context.Context) ([]*note.Note, error)

	// ClearDirty transitions the note dirty->clean, but only if the
	// stored updated_at still equals snapshotUpdatedAt. This guards the
	// push acknowledgement race: an edit made during the network round
	// trip bumps updated_at, the compare fails, and the note stays dirty
	// for the next pass. Returns whether the transition happened.
	ClearDirty(ctx context.Context, id string, snapshotUpdatedAt time.Time) (bool, error)

	// SaveRemote writes a remote record into the store as clean and
	// active. If a local row exists it is overwritten only when it is
	// itself clean and active; dirty or tombstoned rows are never
	// touched, so unpushed local work always survives a pull.
	SaveRemote(ctx context.Context, r note.Remote) error

	// Close releases the underlying storage.
	Close() error
}
