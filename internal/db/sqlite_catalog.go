package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/thapedict/mydb/internal/schema"
)

// ListDatabases returns the names of the attached schemas
func (c *SQLiteClient) ListDatabases(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var seq int
		var name string
		var file sql.NullString
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// ListTables returns the tables and views of the selected schema
func (c *SQLiteClient) ListTables(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := fmt.Sprintf(`
		SELECT name
		FROM %s.sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'
		ORDER BY name
	`, quoteSQLiteIdentifier(c.schemaName))

	return c.queryStrings(ctx, query)
}

// HasTable reports whether name is a table of the selected schema
func (c *SQLiteClient) HasTable(ctx context.Context, name string) bool {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return false
	}
	return slices.Contains(tables, name)
}

// ListColumns returns column metadata for a table in SHOW COLUMNS shape.
// Declared types are lower-cased since SQLite type names are case-insensitive.
// A single INTEGER PRIMARY KEY column aliases the rowid and is reported as auto_increment.
func (c *SQLiteClient) ListColumns(ctx context.Context, table string) ([]schema.ColumnRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteSQLiteIdentifier(c.schemaName), quoteSQLiteIdentifier(table))

	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.ColumnRow
	var pkColumns []int

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col := schema.ColumnRow{
			Field: name,
			Type:  strings.ToLower(colType),
			Null:  "YES",
		}
		if notNull != 0 {
			col.Null = "NO"
		}
		if defaultValue.Valid {
			col.Default = &defaultValue.String
		}

		// Track primary key columns
		if pk > 0 {
			col.Key = "PRI"
			pkColumns = append(pkColumns, len(columns))
		}

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(pkColumns) == 1 && columns[pkColumns[0]].Type == "integer" {
		columns[pkColumns[0]].Extra = "auto_increment"
	}

	return columns, nil
}
