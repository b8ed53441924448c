package remote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/driftpad/driftpad/internal/note"
	_ "github.com/tursodatabase/go-libsql"
)

// timeLayout matches the store's persisted timestamp format so ordering
// comparisons survive a round trip through the remote.
const timeLayout = time.RFC3339Nano

// LibSQL is the production Client backed by a libSQL/Turso database.
//
// The remote schema is the record as the authority sees it: no tombstone
// column, absence means deleted.
type LibSQL struct {
	conn *sql.DB
}

var _ Client = (*LibSQL)(nil)

// Dial connects to the remote database and ensures the notes table exists.
//
// url accepts anything the libsql driver does: libsql://host?authToken=...,
// http(s)://host, or file: paths for local testing.
//
// The caller MUST call Close() when done.
func Dial(url string) (*LibSQL, error) {
	conn, err := sql.Open("libsql", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote connection: %w", err)
	}

	c := &LibSQL{conn: conn}

	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)
	`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize remote schema: %w", err)
	}

	return c, nil
}

// Close closes the remote connection.
func (c *LibSQL) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close remote connection: %w", err)
	}
	c.conn = nil
	return nil
}

// CreateOrReplace implements Client.CreateOrReplace.
func (c *LibSQL) CreateOrReplace(ctx context.Context, r note.Remote) error {
	query := `
	INSERT INTO notes (id, title, content, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		updated_at = excluded.updated_at
	`
	_, err := c.conn.ExecContext(ctx, query,
		r.ID,
		r.Title,
		r.Content,
		r.CreatedAt.UTC().Format(timeLayout),
		r.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert remote note %s: %w", r.ID, err)
	}
	return nil
}

// Delete implements Client.Delete.
func (c *LibSQL) Delete(ctx context.Context, id string) error {
	res, err := c.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete remote note %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll implements Client.ListAll.
func (c *LibSQL) ListAll(ctx context.Context) ([]note.Remote, error) {
	rows, err := c.conn.QueryContext(ctx, `
	SELECT id, title, content, created_at, updated_at FROM notes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote notes: %w", err)
	}
	defer rows.Close()

	var notes []note.Remote
	for rows.Next() {
		var r note.Remote
		var createdAt, updatedAt string

		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan remote note: %w", err)
		}

		r.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		r.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		notes = append(notes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote notes: %w", err)
	}
	return notes, nil
}

// Ping implements Client.Ping.
func (c *LibSQL) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("remote unreachable: %w", err)
	}
	return nil
}
