package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/thapedict/mydb/internal/journal"
	"github.com/thapedict/mydb/internal/schema"
)

// ErrUnsupportedDriver is returned by Open for URL schemes without a client
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Row is one materialized result row keyed by column name
type Row = map[string]any

// Result describes the outcome of one executed statement.
// Failures are reported through ErrorMessage and ErrorCode, never as Go errors.
type Result struct {
	Query        string
	AffectedRows int64
	LastInsertID int64
	Columns      []string
	Rows         []Row
	ErrorMessage string
	ErrorCode    string
	Duration     time.Duration
}

// OK reports whether the statement executed without error
func (r Result) OK() bool {
	return r.ErrorMessage == ""
}

// QueryRecord is an entry of a connection's in-memory statement history
type QueryRecord struct {
	Query        string
	Error        string
	ErrorCode    string
	AffectedRows int64
}

// Options configures a client's bookkeeping
type Options struct {
	// LogFile receives LogError messages. Empty disables the file sink.
	LogFile string
	// Journal, when set, persists every executed statement.
	Journal *journal.Journal
}

// Client is the connection contract implemented by every driver
type Client interface {
	Driver() string
	Execute(ctx context.Context, query string) Result
	AffectedRows() int64
	LastInsertID() int64
	EscapeString(s string) string
	ActiveDatabase(ctx context.Context) string
	SelectDatabase(ctx context.Context, name string) bool
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context) ([]string, error)
	HasTable(ctx context.Context, name string) bool
	ListColumns(ctx context.Context, table string) ([]schema.ColumnRow, error)
	LogError(msg string) bool
	SetLogFile(path string)
	Queries() []QueryRecord
	Close() error
}

// returnsRows reports whether a statement produces a result set
func returnsRows(query string) bool {
	switch firstKeyword(query) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "PRAGMA", "WITH", "VALUES":
		return true
	}
	return false
}

func isInsert(query string) bool {
	return firstKeyword(query) == "INSERT"
}

func firstKeyword(query string) string {
	q := strings.TrimLeft(query, " \t\r\n(")
	end := strings.IndexAny(q, " \t\r\n(;")
	if end >= 0 {
		q = q[:end]
	}
	return strings.ToUpper(q)
}

// escapeQuotes doubles single quotes, the standard SQL string escape
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// normalizeValue converts driver values into plain Go values for rows
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
