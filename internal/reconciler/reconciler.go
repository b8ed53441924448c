// Package reconciler implements the push/pull reconciliation pass between
// the local store and the remote authority.
//
// A pass runs the push phase, then the pull phase, always in that order.
// Push offers every dirty record to the remote; pull merges the full
// remote set back into the store. Individual push failures never abort
// the pass; a pull failure is the pass's terminal failure signal.
//
// The reconciler is resilient by design: a record whose push fails stays
// dirty and is retried on the next pass, and nothing here ever discards
// unacknowledged local work.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/driftpad/driftpad/internal/note"
	"github.com/driftpad/driftpad/internal/remote"
	"github.com/driftpad/driftpad/internal/store"
)

// Summary reports what a pass did.
type Summary struct {
	// Pushed counts records upserted to the remote and acknowledged.
	Pushed int
	// Purged counts tombstones confirmed deleted remotely and removed
	// from the store.
	Purged int
	// Failed counts push-phase items left dirty for the next pass.
	Failed int
	// Pulled counts local records created or overwritten from the
	// remote set.
	Pulled int
}

// Reconciler orchestrates reconciliation passes. It is safe for one pass
// to run at a time; the scheduler provides that serialization.
type Reconciler struct {
	store  store.Store
	remote remote.Client
	logger *log.Logger
}

// New creates a Reconciler.
//
// If logger is nil, a default logger writing to stderr is used.
func New(st store.Store, rc remote.Client, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(os.Stderr, "[reconcile] ", log.LstdFlags)
	}
	return &Reconciler{
		store:  st,
		remote: rc,
		logger: logger,
	}
}

// Run executes one complete pass: push, then pull.
//
// The pass fails if the dirty set cannot be read (the store is the one
// dependency a pass cannot proceed without) or if the pull phase fails.
// Push-phase item failures are logged, counted in the summary, and
// retried on the next pass.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	dirty, err := r.store.ListDirty(ctx)
	if err != nil {
		return sum, fmt.Errorf("cannot read dirty set: %w", err)
	}

	r.push(ctx, dirty, &sum)

	if err := r.pull(ctx, &sum); err != nil {
		return sum, err
	}

	r.logger.Printf("Pass complete: pushed=%d purged=%d failed=%d pulled=%d",
		sum.Pushed, sum.Purged, sum.Failed, sum.Pulled)
	return sum, nil
}

// push offers every dirty record to the remote. Each record is handled
// independently; a failure on one never stops the loop.
func (r *Reconciler) push(ctx context.Context, dirty []*note.Note, sum *Summary) {
	for _, n := range dirty {
		var err error
		if n.Lifecycle == note.LifecycleTombstoned {
			err = r.pushDelete(ctx, n, sum)
		} else {
			err = r.pushUpsert(ctx, n, sum)
		}
		if err != nil {
			r.logger.Printf("WARNING: failed to push note %s: %v", n.ID, err)
			sum.Failed++
		}
	}
}

// pushDelete confirms a tombstone with the remote and purges the row.
// A remote "not found" is success: absence is the desired end state.
func (r *Reconciler) pushDelete(ctx context.Context, n *note.Note, sum *Summary) error {
	if err := r.remote.Delete(ctx, n.ID); err != nil && !errors.Is(err, remote.ErrNotFound) {
		return fmt.Errorf("remote delete: %w", err)
	}
	if err := r.store.Purge(ctx, n.ID); err != nil {
		return fmt.Errorf("purge after remote delete: %w", err)
	}
	sum.Purged++
	return nil
}

// pushUpsert pushes the record's current snapshot and clears the dirty
// flag, guarded against edits that landed during the round trip: the
// clear only happens if the stored updated_at still matches the snapshot,
// otherwise the record stays dirty for the next pass.
func (r *Reconciler) pushUpsert(ctx context.Context, n *note.Note, sum *Summary) error {
	if err := r.remote.CreateOrReplace(ctx, n.RemoteView()); err != nil {
		return fmt.Errorf("remote upsert: %w", err)
	}

	cleared, err := r.store.ClearDirty(ctx, n.ID, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clear dirty flag: %w", err)
	}
	if !cleared {
		// Edited (or tombstoned) mid-flight; the newer state syncs on
		// the next pass.
		r.logger.Printf("Note %s changed during push, staying dirty", n.ID)
	}
	sum.Pushed++
	return nil
}

// pull merges the full remote set into the store. A remote record wins
// only against a clean, active local record with an older updated_at;
// dirty and tombstoned locals are never touched.
func (r *Reconciler) pull(ctx context.Context, sum *Summary) error {
	remotes, err := r.remote.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	for _, rr := range remotes {
		local, err := r.store.Get(ctx, rr.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if err := r.store.SaveRemote(ctx, rr); err != nil {
				return fmt.Errorf("save pulled note %s: %w", rr.ID, err)
			}
			sum.Pulled++

		case err != nil:
			return fmt.Errorf("read local note %s: %w", rr.ID, err)

		case local.SyncState == note.SyncDirty || local.Lifecycle == note.LifecycleTombstoned:
			// Unpushed local work always wins locally; tombstones are
			// resolved by the next push phase's delete.

		case rr.UpdatedAt.After(local.UpdatedAt):
			if err := r.store.SaveRemote(ctx, rr); err != nil {
				return fmt.Errorf("save pulled note %s: %w", rr.ID, err)
			}
			sum.Pulled++
		}
	}

	return nil
}
