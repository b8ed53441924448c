package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/driftpad/driftpad/internal/note"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// timeLayout is the canonical persisted timestamp format. RFC3339Nano keeps
// full precision so the ClearDirty snapshot compare is exact.
const timeLayout = time.RFC3339Nano

// SQLite is the production Store backed by an embedded SQLite database
// opened in WAL mode. A write is durable once the statement returns.
type SQLite struct {
	conn *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

// Open creates a store at the given path, creating the parent directory
// and schema as needed.
//
// The caller MUST call Close() when done.
//
// Example:
//
//	st, err := store.Open(".driftpad/notes.db")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	s := &SQLite{conn: conn, path: path}

	// WAL keeps readers unblocked during the reconciler's writes.
	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA synchronous=FULL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if err := s.initSchema(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// initSchema creates the notes table and its indexes. Idempotent.
//
// sync_state and lifecycle are indexed so ListDirty and ListActive never
// scan unrelated rows.
func (s *SQLite) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		sync_state TEXT NOT NULL DEFAULT 'dirty',
		lifecycle TEXT NOT NULL DEFAULT 'active'
	);

	CREATE INDEX IF NOT EXISTS idx_notes_sync_state ON notes(sync_state);
	CREATE INDEX IF NOT EXISTS idx_notes_lifecycle ON notes(lifecycle);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the store, checkpointing the WAL first.
func (s *SQLite) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	s.conn = nil
	return nil
}

// Create implements Store.Create.
func (s *SQLite) Create(ctx context.Context, n *note.Note) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid note: %w", err)
	}

	query := `
	INSERT INTO notes (id, title, content, created_at, updated_at, sync_state, lifecycle)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.ExecContext(ctx, query,
		n.ID,
		n.Title,
		n.Content,
		n.CreatedAt.UTC().Format(timeLayout),
		n.UpdatedAt.UTC().Format(timeLayout),
		string(n.SyncState),
		string(n.Lifecycle),
	)
	if err != nil {
		return fmt.Errorf("failed to create note %s: %w", n.ID, err)
	}
	return nil
}

// Update implements Store.Update. The single UPDATE statement keeps the
// field changes, dirty flag and updated_at refresh atomic.
func (s *SQLite) Update(ctx context.Context, id string, fields Partial) error {
	query := `
	UPDATE notes SET
		title = COALESCE(?, title),
		content = COALESCE(?, content),
		updated_at = ?,
		sync_state = 'dirty'
	WHERE id = ?
	`
	res, err := s.conn.ExecContext(ctx, query,
		nullString(fields.Title),
		nullString(fields.Content),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update note %s: %w", id, err)
	}
	return checkExisted(res, id)
}

// MarkTombstoned implements Store.MarkTombstoned.
func (s *SQLite) MarkTombstoned(ctx context.Context, id string) error {
	query := `
	UPDATE notes SET
		lifecycle = 'tombstoned',
		sync_state = 'dirty',
		updated_at = ?
	WHERE id = ?
	`
	res, err := s.conn.ExecContext(ctx, query, time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("failed to tombstone note %s: %w", id, err)
	}
	return checkExisted(res, id)
}

// Purge implements Store.Purge. Purging a missing row is not an error.
func (s *SQLite) Purge(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to purge note %s: %w", id, err)
	}
	return nil
}

// Get implements Store.Get.
func (s *SQLite) Get(ctx context.Context, id string) (*note.Note, error) {
	row := s.conn.QueryRowContext(ctx, `
	SELECT id, title, content, created_at, updated_at, sync_state, lifecycle
	FROM notes WHERE id = ?
	`, id)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	return n, nil
}

// ListActive implements Store.ListActive.
func (s *SQLite) ListActive(ctx context.Context) ([]*note.Note, error) {
	return s.list(ctx, `
	SELECT id, title, content, created_at, updated_at, sync_state, lifecycle
	FROM notes WHERE lifecycle = 'active'
	ORDER BY updated_at DESC
	`)
}

// ListDirty implements Store.ListDirty.
func (s *SQLite) ListDirty(ctx context.Context) ([]*note.Note, error) {
	return s.list(ctx, `
	SELECT id, title, content, created_at, updated_at, sync_state, lifecycle
	FROM notes WHERE sync_state = 'dirty'
	ORDER BY updated_at ASC
	`)
}

func (s *SQLite) list(ctx context.Context, query string) ([]*note.Note, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

// ClearDirty implements Store.ClearDirty. The updated_at compare happens
// inside the UPDATE so the check-and-clear is atomic: if an edit landed
// during the push round trip the stored timestamp no longer matches and
// the row stays dirty.
func (s *SQLite) ClearDirty(ctx context.Context, id string, snapshotUpdatedAt time.Time) (bool, error) {
	query := `
	UPDATE notes SET sync_state = 'clean'
	WHERE id = ? AND sync_state = 'dirty' AND updated_at = ?
	`
	res, err := s.conn.ExecContext(ctx, query, id, snapshotUpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("failed to clear dirty flag for %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	return affected > 0, nil
}

// SaveRemote implements Store.SaveRemote. The conditional DO UPDATE makes
// the dirty/tombstone skip atomic with the overwrite: a row that went
// dirty between the reconciler's read and this write is left alone.
func (s *SQLite) SaveRemote(ctx context.Context, r note.Remote) error {
	query := `
	INSERT INTO notes (id, title, content, created_at, updated_at, sync_state, lifecycle)
	VALUES (?, ?, ?, ?, ?, 'clean', 'active')
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at,
		sync_state = 'clean',
		lifecycle = 'active'
	WHERE notes.sync_state = 'clean' AND notes.lifecycle = 'active'
	`
	_, err := s.conn.ExecContext(ctx, query,
		r.ID,
		r.Title,
		r.Content,
		r.CreatedAt.UTC().Format(timeLayout),
		r.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save remote note %s: %w", r.ID, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (*note.Note, error) {
	var n note.Note
	var createdAt, updatedAt, syncState, lifecycle string

	err := sc.Scan(&n.ID, &n.Title, &n.Content, &createdAt, &updatedAt, &syncState, &lifecycle)
	if err != nil {
		return nil, err
	}

	n.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	n.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	n.SyncState = note.SyncState(syncState)
	n.Lifecycle = note.Lifecycle(lifecycle)

	return &n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func checkExisted(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}
