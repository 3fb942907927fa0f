package mydb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"runtime"
	"slices"

	"github.com/thapedict/mydb/internal/logging"
	"github.com/thapedict/mydb/internal/schema"
)

// Database is the registry of every table in one database. It lists and
// loads all tables when it is built and is read-only afterwards.
type Database struct {
	conn   Connection
	name   string
	names  []string
	tables map[string]*Table

	// closers run after the connection is closed
	closers []io.Closer
}

// NewDatabase builds the registry for the database conn is using.
//
// A non-empty name is selected first and must exist, otherwise
// ErrInvalidDatabase is returned. ErrNoDatabase is returned when the
// connection ends up without an active database.
func NewDatabase(ctx context.Context, conn Connection, name string) (*Database, error) {
	if name != "" && !conn.SelectDatabase(ctx, name) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDatabase, name)
	}

	active := conn.ActiveDatabase(ctx)
	if active == "" {
		return nil, ErrNoDatabase
	}

	d := &Database{
		conn:   conn,
		name:   active,
		tables: make(map[string]*Table),
	}
	if err := d.loadTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	logging.GetLogger().Debug("database loaded", "database", active, "tables", len(d.names))
	return d, nil
}

func (d *Database) loadTables(ctx context.Context) error {
	names, err := d.conn.ListTables(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		t, err := loadTable(ctx, d.conn, name)
		if err != nil {
			return err
		}
		d.tables[name] = t
		d.names = append(d.names, name)
	}
	return nil
}

// Name returns the name of the active database
func (d *Database) Name() string {
	return d.name
}

// Conn returns the connection the registry runs on
func (d *Database) Conn() Connection {
	return d.conn
}

// TableNames returns the table names in the order the connection listed them
func (d *Database) TableNames() []string {
	return slices.Clone(d.names)
}

// Tables returns every table keyed by name
func (d *Database) Tables() map[string]*Table {
	return maps.Clone(d.tables)
}

// Table returns the named table
func (d *Database) Table(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// IsTable reports whether the database has a table called name
func (d *Database) IsTable(name string) bool {
	_, ok := d.tables[name]
	return ok
}

// MustTable returns the named table and panics if there is none.
// The panic message names the caller's file and line.
func (d *Database) MustTable(name string) *Table {
	if t, ok := d.tables[name]; ok {
		return t
	}

	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	panic(fmt.Sprintf("mydb: table %s does not exist in database %s (called from %s:%d)", name, d.name, file, line))
}

// Schema describes every table for formatting
func (d *Database) Schema() *schema.Schema {
	s := &schema.Schema{
		Database: d.name,
		Tables:   make([]schema.Table, 0, len(d.names)),
	}
	for _, name := range d.names {
		s.Tables = append(s.Tables, d.tables[name].Schema())
	}
	return s
}

// Close closes the connection when it can be closed, then any resources
// opened alongside it by Open
func (d *Database) Close() error {
	var errs []error
	if c, ok := d.conn.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
