// Package remote wraps the remote authority behind a narrow
// create/read/update/delete contract.
//
// The client never mutates local state; the reconciler owns all decisions
// about what a remote success or failure means for the local store.
package remote

import (
	"context"
	"errors"

	"github.com/driftpad/driftpad/internal/note"
)

// ErrNotFound is returned by Delete when the remote has no record with the
// given id. The reconciler treats it as success: the desired end state,
// absence, already holds.
var ErrNotFound = errors.New("remote note not found")

// Client is the contract the reconciler consumes.
//
// CreateOrReplace is an upsert keyed by the client-supplied id, so a
// retried push of the same record is idempotent. Delete is idempotent for
// the same reason. ListAll returns the full current remote set; there is
// no delta protocol.
type Client interface {
	// CreateOrReplace upserts the record under its client-assigned id.
	CreateOrReplace(ctx context.Context, r note.Remote) error

	// Delete removes the record. Returns ErrNotFound if it was already
	// absent; any other error means the delete must be retried.
	Delete(ctx context.Context, id string) error

	// ListAll returns every record the remote currently holds.
	ListAll(ctx context.Context) ([]note.Remote, error)

	// Ping reports whether the remote is reachable. The scheduler probes
	// it before each pass to decide between Syncing and Offline.
	Ping(ctx context.Context) error
}
