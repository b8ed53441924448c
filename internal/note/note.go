// Package note defines the document record that the local store persists
// and the sync engine reconciles against the remote authority.
package note

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncState tracks whether a note's local content has been acknowledged
// by the remote authority.
type SyncState string

const (
	// SyncClean means the local content matches the last acknowledged
	// remote state.
	SyncClean SyncState = "clean"

	// SyncDirty means the note has local changes that have not yet been
	// pushed, or whose push has not yet been acknowledged.
	SyncDirty SyncState = "dirty"
)

// Lifecycle tracks whether a note is visible to the application or
// pending remote deletion.
type Lifecycle string

const (
	// LifecycleActive is the normal state for a live note.
	LifecycleActive Lifecycle = "active"

	// LifecycleTombstoned means the note was deleted locally but the
	// remote delete has not been confirmed. Tombstoned notes are hidden
	// from listings and purged once the remote acknowledges the delete.
	LifecycleTombstoned Lifecycle = "tombstoned"
)

// Note is a single document record. IDs are generated on the client at
// creation time, never by the server, so creation works offline and a
// retried push is an idempotent upsert.
//
// UpdatedAt is the sole ordering signal for conflict resolution:
// whichever side of a conflict carries the greater UpdatedAt wins,
// except that an unpushed local edit always wins locally.
type Note struct {
	ID string `json:"id" yaml:"id" toml:"id"`

	Title   string `json:"title" yaml:"title" toml:"title"`
	Content string `json:"content" yaml:"content" toml:"content"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" toml:"updated_at"`

	SyncState SyncState `json:"sync_state" yaml:"sync_state" toml:"sync_state"`
	Lifecycle Lifecycle `json:"lifecycle" yaml:"lifecycle" toml:"lifecycle"`
}

// New creates a note with a client-generated UUID, timestamps set to now,
// and the dirty/active state a freshly created record starts in.
func New(title, content string) *Note {
	now := time.Now().UTC()
	return &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		SyncState: SyncDirty,
		Lifecycle: LifecycleActive,
	}
}

// Validate checks that the note has valid field values.
func (n *Note) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(n.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(n.Title))
	}
	if n.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	if n.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}
	switch n.SyncState {
	case SyncClean, SyncDirty:
	default:
		return fmt.Errorf("invalid sync state %q", n.SyncState)
	}
	switch n.Lifecycle {
	case LifecycleActive, LifecycleTombstoned:
	default:
		return fmt.Errorf("invalid lifecycle %q", n.Lifecycle)
	}
	return nil
}

// Remote is the view of a note held by the remote authority. The remote
// has no tombstone concept; absence from the remote set means deleted.
type Remote struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteView projects the note onto the fields the remote authority stores.
func (n *Note) RemoteView() Remote {
	return Remote{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
