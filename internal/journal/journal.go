// Package journal records reflected playback states in SQLite so past
// sessions can be inspected with `mediakeys history`.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jfmyers9/mediakeys/internal/media"
)

// Journal is a persistent log of reflected states
type Journal struct {
	db *sql.DB
}

// Entry is one recorded reflect step
type Entry struct {
	ID       int64
	Session  string
	Status   media.PlaybackStatus
	Cursor   uint8
	Metadata media.Metadata
	At       time.Time
}

// Open opens or creates the journal database at dbPath
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS reflections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			status TEXT NOT NULL,
			cursor INTEGER NOT NULL,
			title TEXT,
			artist TEXT,
			album TEXT,
			cover_url TEXT,
			at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reflections_at ON reflections(at);
		CREATE INDEX IF NOT EXISTS idx_reflections_session ON reflections(session);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends an entry and returns its id
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	query := `
		INSERT INTO reflections (session, status, cursor, title, artist, album, cover_url, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := j.db.ExecContext(ctx, query,
		e.Session,
		e.Status.String(),
		int64(e.Cursor),
		e.Metadata.Title,
		e.Metadata.Artist,
		e.Metadata.Album,
		e.Metadata.CoverURL,
		e.At.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Recent returns the newest entries first. A non-positive limit returns all.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, session, status, cursor,
			COALESCE(title, ''), COALESCE(artist, ''), COALESCE(album, ''), COALESCE(cover_url, ''), at
		FROM reflections
		ORDER BY id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		var cursor int64
		var atMillis int64

		err := rows.Scan(
			&e.ID,
			&e.Session,
			&status,
			&cursor,
			&e.Metadata.Title,
			&e.Metadata.Artist,
			&e.Metadata.Album,
			&e.Metadata.CoverURL,
			&atMillis,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		if err := e.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		e.Cursor = uint8(cursor)
		e.At = time.UnixMilli(atMillis)

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded entries
func (j *Journal) Count(ctx context.Context) (int, error) {
	var count int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reflections").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Cleanup removes entries older than maxAge and returns how many were deleted
func (j *Journal) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()

	result, err := j.db.ExecContext(ctx, "DELETE FROM reflections WHERE at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
