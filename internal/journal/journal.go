// Package journal persists the history of executed statements to a local
// SQLite file so it survives the process.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one executed statement
type Entry struct {
	ID           int64
	Driver       string
	Database     string
	Query        string
	AffectedRows int64
	Error        string
	ErrorCode    string
	Duration     time.Duration
	ExecutedAt   time.Time
}

// Journal stores entries in the query_history table
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the journal at path
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// single writer keeps SQLITE_BUSY out of concurrent appends
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, path: path}
	if err := j.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal tables: %w", err)
	}
	return j, nil
}

func (j *Journal) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		driver TEXT NOT NULL DEFAULT '',
		database_name TEXT NOT NULL DEFAULT '',
		query TEXT NOT NULL,
		affected_rows INTEGER DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		error_code TEXT NOT NULL DEFAULT '',
		duration_us INTEGER DEFAULT 0,
		executed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_query_history_executed_at ON query_history(executed_at);
	`
	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// Path returns the journal file path
func (j *Journal) Path() string {
	return j.path
}

// Append stores e. A zero ExecutedAt is replaced by the current time.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO query_history (driver, database_name, query, affected_rows, error, error_code, duration_us, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Driver, e.Database, e.Query, e.AffectedRows, e.Error, e.ErrorCode,
		e.Duration.Microseconds(), e.ExecutedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all entries.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, driver, database_name, query, affected_rows, error, error_code, duration_us, executed_at
		FROM query_history
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationUS, executedAt int64
		if err := rows.Scan(&e.ID, &e.Driver, &e.Database, &e.Query, &e.AffectedRows,
			&e.Error, &e.ErrorCode, &durationUS, &executedAt); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		e.ExecutedAt = time.Unix(0, executedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the journal database
func (j *Journal) Close() error {
	return j.db.Close()
}
