package mydb

import (
	"context"
	"errors"

	"github.com/thapedict/mydb/internal/db"
	"github.com/thapedict/mydb/internal/schema"
)

// Row is a column→value mapping, used both for input data and for result rows.
type Row = db.Row

// Result describes one executed statement.
type Result = db.Result

// Column describes one reflected table column.
type Column = schema.Column

// ColumnRow is one raw row of column metadata, in SHOW COLUMNS shape.
type ColumnRow = schema.ColumnRow

var (
	// ErrNoDatabase is returned when the connection has no active database.
	ErrNoDatabase = errors.New("no database selected")
	// ErrInvalidDatabase is returned when a requested database cannot be selected.
	ErrInvalidDatabase = errors.New("invalid database name")
	// ErrNoTable is returned by NewTable for names the database does not have.
	ErrNoTable = errors.New("table does not exist")
)

// Connection is the session a Database and its Tables run statements on.
//
// Execute never returns a Go error; failures are carried in the Result.
// LogError is a best-effort diagnostic sink and reports whether the message
// was written.
type Connection interface {
	Execute(ctx context.Context, query string) Result
	AffectedRows() int64
	LastInsertID() int64
	EscapeString(s string) string
	ActiveDatabase(ctx context.Context) string
	SelectDatabase(ctx context.Context, name string) bool
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]ColumnRow, error)
	LogError(msg string) bool
}
