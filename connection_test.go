package mydb

import (
	"context"
	"strings"
	"sync"
)

// fakeConn is an in-memory Connection that records every statement
type fakeConn struct {
	mu        sync.Mutex
	database  string
	databases []string
	order     []string
	columns   map[string][]ColumnRow
	listErr   error

	// result decides the outcome of Execute; nil means one affected row
	result func(query string) Result

	executed []string
	errors   []string
	affected int64
	insertID int64
	closed   bool
}

func strPtr(s string) *string { return &s }

// usersRows is the column metadata of
//
//	CREATE TABLE users (
//		id int(11) NOT NULL AUTO_INCREMENT PRIMARY KEY,
//		name varchar(255) NOT NULL,
//		email varchar(255) NULL,
//		age INT NULL,
//		score double NULL,
//		created_at datetime NULL,
//		meta json NULL
//	)
func usersRows() []ColumnRow {
	return []ColumnRow{
		{Field: "id", Type: "int(11)", Null: "NO", Key: "PRI", Extra: "auto_increment"},
		{Field: "name", Type: "varchar(255)", Null: "NO"},
		{Field: "email", Type: "varchar(255)", Null: "YES"},
		{Field: "age", Type: "INT", Null: "YES"},
		{Field: "score", Type: "double", Null: "YES"},
		{Field: "created_at", Type: "datetime", Null: "YES"},
		{Field: "meta", Type: "json", Null: "YES"},
	}
}

// logsRows describes a table without a primary key
func logsRows() []ColumnRow {
	return []ColumnRow{
		{Field: "level", Type: "varchar(16)", Null: "NO", Default: strPtr("info")},
		{Field: "message", Type: "text", Null: "YES"},
	}
}

// rolesRows describes a table with a composite primary key
func rolesRows() []ColumnRow {
	return []ColumnRow{
		{Field: "user_id", Type: "int unsigned", Null: "NO", Key: "PRI"},
		{Field: "role", Type: "varchar(32)", Null: "NO", Key: "PRI"},
		{Field: "granted_by", Type: "varchar(32)", Null: "YES"},
	}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		database:  "shop",
		databases: []string{"shop", "archive"},
		order:     []string{"users", "logs", "roles"},
		columns: map[string][]ColumnRow{
			"users": usersRows(),
			"logs":  logsRows(),
			"roles": rolesRows(),
		},
	}
}

func (c *fakeConn) Execute(_ context.Context, query string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.executed = append(c.executed, query)

	res := Result{Query: query, AffectedRows: 1}
	if c.result != nil {
		res = c.result(query)
		res.Query = query
	}
	c.affected = res.AffectedRows
	if strings.HasPrefix(query, "INSERT") {
		c.insertID = res.LastInsertID
	}
	return res
}

func (c *fakeConn) AffectedRows() int64 { return c.affected }

func (c *fakeConn) LastInsertID() int64 { return c.insertID }

func (c *fakeConn) EscapeString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func (c *fakeConn) ActiveDatabase(context.Context) string { return c.database }

func (c *fakeConn) SelectDatabase(_ context.Context, name string) bool {
	for _, d := range c.databases {
		if d == name {
			c.database = name
			return true
		}
	}
	return false
}

func (c *fakeConn) ListTables(context.Context) ([]string, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return append([]string(nil), c.order...), nil
}

func (c *fakeConn) ListColumns(_ context.Context, table string) ([]ColumnRow, error) {
	return c.columns[table], nil
}

func (c *fakeConn) LogError(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
	return true
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) lastExecuted() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.executed) == 0 {
		return ""
	}
	return c.executed[len(c.executed)-1]
}
