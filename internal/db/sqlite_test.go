package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/thapedict/mydb/internal/journal"
)

func newTestSQLite(t *testing.T, opts Options) *SQLiteClient {
	t.Helper()

	c, err := NewSQLiteClient(context.Background(), ":memory:", opts)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	res := c.Execute(context.Background(), `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email TEXT,
			status TEXT NOT NULL DEFAULT 'active'
		)`)
	if !res.OK() {
		t.Fatalf("Failed to create table: %s", res.ErrorMessage)
	}
	return c
}

func TestSQLiteListColumns(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLite(t, Options{})

	cols, err := c.ListColumns(ctx, "users")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}

	if len(cols) != 4 {
		t.Fatalf("ListColumns() returned %d columns, want 4", len(cols))
	}

	id := cols[0]
	if id.Field != "id" || id.Type != "integer" || id.Key != "PRI" || id.Extra != "auto_increment" {
		t.Errorf("id column = %+v, want integer PRI auto_increment", id)
	}
	if cols[1].Null != "NO" || cols[1].Type != "varchar(255)" {
		t.Errorf("name column = %+v, want NOT NULL varchar(255)", cols[1])
	}
	if cols[2].Null != "YES" || cols[2].Default != nil {
		t.Errorf("email column = %+v, want nullable without default", cols[2])
	}
	if cols[3].Default == nil || *cols[3].Default != "'active'" {
		t.Errorf("status column default = %v, want 'active'", cols[3].Default)
	}

	missing, err := c.ListColumns(ctx, "nope")
	if err != nil {
		t.Fatalf("ListColumns(nope) error = %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("ListColumns(nope) returned %d columns, want 0", len(missing))
	}
}

func TestSQLiteExecute(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLite(t, Options{})

	res := c.Execute(ctx, "INSERT INTO users (name) VALUES ('Ann')")
	if !res.OK() {
		t.Fatalf("INSERT failed: %s", res.ErrorMessage)
	}
	if res.AffectedRows != 1 || c.AffectedRows() != 1 {
		t.Errorf("AffectedRows = %d/%d, want 1", res.AffectedRows, c.AffectedRows())
	}
	if c.LastInsertID() != 1 {
		t.Errorf("LastInsertID() = %d, want 1", c.LastInsertID())
	}

	res = c.Execute(ctx, "SELECT id, name FROM users")
	if !res.OK() {
		t.Fatalf("SELECT failed: %s", res.ErrorMessage)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("SELECT returned %d rows, want 1", len(res.Rows))
	}
	if res.Rows[0]["name"] != "Ann" {
		t.Errorf("row name = %v, want Ann", res.Rows[0]["name"])
	}
	if len(res.Columns) != 2 || res.Columns[0] != "id" {
		t.Errorf("Columns = %v, want [id name]", res.Columns)
	}
	// non-INSERT statements keep the last insert id
	if c.LastInsertID() != 1 {
		t.Errorf("LastInsertID() after SELECT = %d, want 1", c.LastInsertID())
	}

	res = c.Execute(ctx, "DELETE FROM missing_table")
	if res.OK() {
		t.Fatal("DELETE on a missing table succeeded")
	}
	if res.ErrorCode == "" {
		t.Error("ErrorCode is empty for a failed statement")
	}
	if c.AffectedRows() != 0 {
		t.Errorf("AffectedRows() after failure = %d, want 0", c.AffectedRows())
	}

	history := c.Queries()
	if len(history) != 4 {
		t.Fatalf("Queries() returned %d records, want 4", len(history))
	}
	if history[3].Error == "" {
		t.Error("last history record has no error")
	}
}

func TestSQLiteDatabases(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLite(t, Options{})

	if got := c.ActiveDatabase(ctx); got != "main" {
		t.Errorf("ActiveDatabase() = %s, want main", got)
	}
	if c.SelectDatabase(ctx, "nope") {
		t.Error("SelectDatabase(nope) = true, want false")
	}

	if res := c.Execute(ctx, "ATTACH DATABASE ':memory:' AS aux"); !res.OK() {
		t.Fatalf("ATTACH failed: %s", res.ErrorMessage)
	}
	if res := c.Execute(ctx, "CREATE TABLE aux.tags (id INTEGER PRIMARY KEY, label TEXT)"); !res.OK() {
		t.Fatalf("CREATE failed: %s", res.ErrorMessage)
	}

	if !c.SelectDatabase(ctx, "aux") {
		t.Fatal("SelectDatabase(aux) = false, want true")
	}
	tables, err := c.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 1 || tables[0] != "tags" {
		t.Errorf("ListTables() = %v, want [tags]", tables)
	}
	if c.HasTable(ctx, "users") {
		t.Error("HasTable(users) = true in aux, want false")
	}

	if !c.SelectDatabase(ctx, "main") {
		t.Fatal("SelectDatabase(main) = false, want true")
	}
	if !c.HasTable(ctx, "users") {
		t.Error("HasTable(users) = false in main, want true")
	}
}

func TestSQLiteJournal(t *testing.T) {
	ctx := context.Background()

	j, err := journal.Open(ctx, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("journal.Open() error = %v", err)
	}
	defer j.Close()

	c := newTestSQLite(t, Options{Journal: j})
	c.Execute(ctx, "INSERT INTO users (name) VALUES ('Bo')")

	entries, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent(1) returned %d entries, want 1", len(entries))
	}
	if entries[0].Query != "INSERT INTO users (name) VALUES ('Bo')" || entries[0].Driver != "sqlite3" || entries[0].Database != "main" {
		t.Errorf("journal entry = %+v", entries[0])
	}
}

func TestSQLiteEscapeString(t *testing.T) {
	c := &SQLiteClient{}
	if got := c.EscapeString("O'Brien"); got != "O''Brien" {
		t.Errorf("EscapeString() = %s, want O''Brien", got)
	}
}

func TestSQLiteLogError(t *testing.T) {
	c := newTestSQLite(t, Options{})
	if c.LogError("no sink") {
		t.Error("LogError() = true without a log file, want false")
	}

	c.SetLogFile(filepath.Join(t.TempDir(), "errors.log"))
	if !c.LogError("written") {
		t.Error("LogError() = false with a log file, want true")
	}
}
