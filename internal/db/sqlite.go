package db

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// SQLiteClient manages a session with a SQLite database file.
// The "database" of a SQLite session is one of its attached schemas, "main" by default.
type SQLiteClient struct {
	*sqlClient
	schemaName string
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string, opts Options) (*SQLiteClient, error) {
	c, err := openSQLClient(ctx, "sqlite3", path, opts)
	if err != nil {
		return nil, err
	}
	c.codeOf = sqliteErrorCode
	c.database = "main"

	return &SQLiteClient{sqlClient: c, schemaName: "main"}, nil
}

func sqliteErrorCode(err error) string {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return strconv.Itoa(int(se.Code))
	}
	return ""
}

// EscapeString escapes s for use inside a single-quoted SQLite literal
func (c *SQLiteClient) EscapeString(s string) string {
	return escapeQuotes(s)
}

func quoteSQLiteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ActiveDatabase returns the selected schema name
func (c *SQLiteClient) ActiveDatabase(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schemaName
}

// SelectDatabase selects one of the attached schemas
func (c *SQLiteClient) SelectDatabase(ctx context.Context, name string) bool {
	names, err := c.ListDatabases(ctx)
	if err != nil {
		c.log.Warn("failed to list attached databases", "error", err)
		return false
	}

	for _, n := range names {
		if n == name {
			c.mu.Lock()
			c.schemaName = name
			c.database = name
			c.mu.Unlock()
			return true
		}
	}
	return false
}
