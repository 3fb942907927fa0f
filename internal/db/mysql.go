package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages a session with a MySQL server
type MySQLClient struct {
	*sqlClient
}

// NewMySQLClient creates a new MySQL client from a go-sql-driver DSN
func NewMySQLClient(ctx context.Context, dsn string, opts Options) (*MySQLClient, error) {
	c, err := openSQLClient(ctx, "mysql", dsn, opts)
	if err != nil {
		return nil, err
	}
	c.codeOf = mysqlErrorCode

	if name, err := ParseDatabaseName(dsn); err == nil {
		c.database = name
	}
	return &MySQLClient{sqlClient: c}, nil
}

// ParseDatabaseName extracts the database name from a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("no database name in DSN")
	}
	return cfg.DBName, nil
}

func mysqlErrorCode(err error) string {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return strconv.Itoa(int(me.Number))
	}
	return ""
}

// EscapeString escapes s for use inside a single-quoted MySQL literal,
// following mysql_real_escape_string.
func (c *MySQLClient) EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ActiveDatabase returns the session's current database, or "" when none is selected
func (c *MySQLClient) ActiveDatabase(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var name sql.NullString
	if err := c.conn.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		c.log.Warn("failed to read active database", "error", err)
		return ""
	}
	c.database = name.String
	return name.String
}

// SelectDatabase switches the session to name
func (c *MySQLClient) SelectDatabase(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.ExecContext(ctx, "USE "+quoteMySQLIdentifier(name)); err != nil {
		c.log.Debug("failed to select database", "database", name, "error", err)
		return false
	}
	c.database = name
	return true
}
