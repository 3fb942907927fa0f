package db

import (
	"context"
	"database/sql"
	"slices"

	"github.com/thapedict/mydb/internal/schema"
)

// ListDatabases returns every database visible to the session
func (c *MySQLClient) ListDatabases(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.queryStrings(ctx, "SHOW DATABASES")
}

// ListTables returns the tables and views of the active database
func (c *MySQLClient) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.queryStrings(ctx, query)
}

// HasTable reports whether name is a table of the active database
func (c *MySQLClient) HasTable(ctx context.Context, name string) bool {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return false
	}
	return slices.Contains(tables, name)
}

// ListColumns returns column metadata for a table in SHOW COLUMNS shape
func (c *MySQLClient) ListColumns(ctx context.Context, table string) ([]schema.ColumnRow, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_key,
			c.column_default,
			c.extra
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.ColumnRow
	for rows.Next() {
		var col schema.ColumnRow
		var defaultVal, extra sql.NullString

		if err := rows.Scan(&col.Field, &col.Type, &col.Null, &col.Key, &defaultVal, &extra); err != nil {
			return nil, err
		}

		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		col.Extra = extra.String

		columns = append(columns, col)
	}

	return columns, rows.Err()
}
