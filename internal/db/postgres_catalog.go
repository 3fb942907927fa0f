package db

import (
	"context"
	"slices"
	"strings"

	"github.com/thapedict/mydb/internal/schema"
)

// ListDatabases returns the user schemas of the connected database
func (c *PostgresClient) ListDatabases(ctx context.Context) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT LIKE 'pg\_%' AND schema_name <> 'information_schema'
		ORDER BY schema_name
	`
	return c.queryStrings(ctx, query)
}

// ListTables returns the tables and views of the current schema
func (c *PostgresClient) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		ORDER BY table_name
	`
	return c.queryStrings(ctx, query)
}

// HasTable reports whether name is a table of the current schema
func (c *PostgresClient) HasTable(ctx context.Context, name string) bool {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return false
	}
	return slices.Contains(tables, name)
}

func (c *PostgresClient) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListColumns returns column metadata for a table in SHOW COLUMNS shape.
// Types are reported by udt_name (int4, varchar, timestamptz, ...). Serial and
// identity columns are reported as auto_increment without a default, the way
// MySQL reports its auto-increment columns.
func (c *PostgresClient) ListColumns(ctx context.Context, table string) ([]schema.ColumnRow, error) {
	query := `
		SELECT
			c.column_name,
			c.udt_name,
			c.is_nullable,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) THEN 'PRI' ELSE '' END AS column_key,
			c.column_default,
			c.is_identity
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = $1
		ORDER BY c.ordinal_position
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.Query(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.ColumnRow
	for rows.Next() {
		var col schema.ColumnRow
		var defaultVal *string
		var isIdentity string

		if err := rows.Scan(&col.Field, &col.Type, &col.Null, &col.Key, &defaultVal, &isIdentity); err != nil {
			return nil, err
		}

		switch {
		case isIdentity == "YES":
			col.Extra = "auto_increment"
		case defaultVal != nil && strings.HasPrefix(*defaultVal, "nextval("):
			col.Extra = "auto_increment"
			defaultVal = nil
		}
		col.Default = defaultVal

		columns = append(columns, col)
	}

	return columns, rows.Err()
}
