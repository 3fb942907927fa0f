package mydb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/thapedict/mydb/internal/logging"
	"github.com/thapedict/mydb/internal/schema"
)

// Table is one table of a database. Its column schema is loaded once at
// construction and never changes, so a Table is safe for concurrent use.
// Statement state lives in the Query values it hands out.
type Table struct {
	conn     Connection
	name     string
	info     schema.Info
	index    map[string]int
	insertID atomic.Int64
}

// NewTable loads the columns of name from conn.
// It fails when the connection has no active database or does not have the table.
func NewTable(ctx context.Context, conn Connection, name string) (*Table, error) {
	if conn.ActiveDatabase(ctx) == "" {
		return nil, ErrNoDatabase
	}

	tables, err := conn.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	if !slices.Contains(tables, name) {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, name)
	}

	return loadTable(ctx, conn, name)
}

// loadTable builds a Table without checking that it exists. A table that has
// vanished loads with no columns, and every operation on it then fails.
func loadTable(ctx context.Context, conn Connection, name string) (*Table, error) {
	rows, err := conn.ListColumns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns of %s: %w", name, err)
	}

	t := &Table{
		conn:  conn,
		name:  name,
		info:  schema.Load(rows),
		index: make(map[string]int, len(rows)),
	}
	for i, c := range t.info.Columns {
		t.index[c.Name] = i
	}

	if len(rows) == 0 {
		t.logger().Warn("table has no columns")
	}
	return t, nil
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Columns returns the columns in schema order
func (t *Table) Columns() []Column {
	return slices.Clone(t.info.Columns)
}

// Column returns the named column
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.info.Columns[i], true
}

// HasField reports whether name is a column of the table
func (t *Table) HasField(name string) bool {
	_, ok := t.index[name]
	return ok
}

// FieldNames returns the column names in schema order
func (t *Table) FieldNames() []string {
	return slices.Clone(t.info.FieldNames)
}

// PrimaryKeys returns the primary key column names in schema order
func (t *Table) PrimaryKeys() []string {
	return slices.Clone(t.info.PrimaryKeys)
}

// RequiredFields returns the columns an insert must supply
func (t *Table) RequiredFields() []string {
	return slices.Clone(t.info.RequiredFields)
}

// Schema returns a description of the table for formatting
func (t *Table) Schema() schema.Table {
	return schema.Table{
		Name:       t.name,
		Columns:    t.Columns(),
		PrimaryKey: t.PrimaryKeys(),
		Required:   t.RequiredFields(),
	}
}

// InsertID returns the id generated by the last successful Add on this table
func (t *Table) InsertID() int64 {
	return t.insertID.Load()
}

// Strip returns a copy of data holding only the keys that are columns of the table
func (t *Table) Strip(data Row) Row {
	out := make(Row, len(data))
	for k, v := range data {
		if t.HasField(k) {
			out[k] = v
		}
	}
	return out
}

// Escape renders value as a SQL literal for column. It returns false when
// the table has no such column.
func (t *Table) Escape(column string, value any) (string, bool) {
	col, ok := t.Column(column)
	if !ok {
		return "", false
	}
	return escapeValue(t.conn, col, value), true
}

// EscapeFields renders every known column of data. Columns come back in
// schema order so generated SQL is deterministic.
func (t *Table) EscapeFields(data Row) (columns, values []string) {
	for _, name := range t.orderedKeys(data) {
		lit, _ := t.Escape(name, data[name])
		columns = append(columns, name)
		values = append(values, lit)
	}
	return columns, values
}

// orderedKeys returns the keys of data that are columns, in schema order
func (t *Table) orderedKeys(data Row) []string {
	var keys []string
	for _, name := range t.info.FieldNames {
		if _, ok := data[name]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}

// logError sends an operational failure to the connection's error log
func (t *Table) logError(op, format string, args ...any) {
	msg := fmt.Sprintf("mydb: %s %s: %s", op, t.name, fmt.Sprintf(format, args...))
	t.logger().Debug("operation failed", "op", op, "reason", msg)
	t.conn.LogError(msg)
}

// logger returns the current process logger tagged with the table name
func (t *Table) logger() *slog.Logger {
	return logging.WithTable(t.name)
}

// Query starts a new statement on the table
func (t *Table) Query() *Query {
	return &Query{table: t}
}

// Where starts a new statement filtered by data; see Query.Where
func (t *Table) Where(data Row, operator ...string) *Query {
	return t.Query().Where(data, operator...)
}

// SetLimit starts a new statement with a LIMIT; see Query.SetLimit
func (t *Table) SetLimit(limit string) *Query {
	return t.Query().SetLimit(limit)
}

// Add inserts a row; see Query.Add
func (t *Table) Add(ctx context.Context, data Row) bool {
	return t.Query().Add(ctx, data)
}

// Get selects rows without a filter; see Query.Get
func (t *Table) Get(ctx context.Context, fields []string, limit string) []Row {
	return t.Query().Get(ctx, fields, limit)
}

// Delete deletes the rows matching data; see Query.Delete
func (t *Table) Delete(ctx context.Context, data Row) bool {
	return t.Query().Delete(ctx, data)
}

// Update updates the row identified by the primary key values in data; see Query.Update
func (t *Table) Update(ctx context.Context, data Row) bool {
	return t.Query().Update(ctx, data)
}
