package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgresClient manages a session with PostgreSQL.
// The "database" of a PostgreSQL session is its current schema (search_path).
type PostgresClient struct {
	*session
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string, opts Options) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{session: newSession("postgres", opts), conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.conn.Close(ctx)
}

func postgresErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// EscapeString escapes s for use inside a single-quoted literal.
// It assumes standard_conforming_strings is on, the default since 9.1.
func (c *PostgresClient) EscapeString(s string) string {
	return escapeQuotes(s)
}

// Execute runs query and records its result
func (c *PostgresClient) Execute(ctx context.Context, query string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	res := Result{Query: query}

	var err error
	if returnsRows(query) {
		err = c.runQuery(ctx, &res)
	} else {
		err = c.runExec(ctx, &res)
	}
	res.Duration = time.Since(start)

	if err != nil {
		res.ErrorMessage = err.Error()
		res.ErrorCode = postgresErrorCode(err)
		res.AffectedRows = 0
		res.Rows = nil
	}

	c.record(ctx, res)
	return res
}

func (c *PostgresClient) runExec(ctx context.Context, res *Result) error {
	tag, err := c.conn.Exec(ctx, res.Query)
	if err != nil {
		return err
	}
	res.AffectedRows = tag.RowsAffected()

	if isInsert(res.Query) && res.AffectedRows > 0 {
		res.LastInsertID = c.insertedID(ctx, insertTarget(res.Query))
	}
	return nil
}

// serialValueQuery reads the current value of the first sequence owned by a
// column of the table, covering both serial and identity columns
const serialValueQuery = `
SELECT currval(pg_get_serial_sequence($1, a.attname))
FROM pg_attribute a
WHERE a.attrelid = $1::regclass
  AND a.attnum > 0
  AND NOT a.attisdropped
  AND pg_get_serial_sequence($1, a.attname) IS NOT NULL
ORDER BY a.attnum
LIMIT 1`

// insertedID returns the id generated for table by this session, or 0 when
// the table owns no sequence or its sequence was not advanced here
func (c *PostgresClient) insertedID(ctx context.Context, table string) int64 {
	if table == "" {
		return 0
	}

	var id int64
	if err := c.conn.QueryRow(ctx, serialValueQuery, table).Scan(&id); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			c.log.Debug("failed to read inserted id", "table", table, "error", err)
		}
		return 0
	}
	return id
}

var insertTargetPattern = regexp.MustCompile(`(?i)^\s*INSERT\s+INTO\s+((?:"[^"]+"|[\w$]+)(?:\.(?:"[^"]+"|[\w$]+))?)`)

// insertTarget returns the table name of an INSERT statement as written
func insertTarget(query string) string {
	m := insertTargetPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return m[1]
}

func (c *PostgresClient) runQuery(ctx context.Context, res *Result) error {
	rows, err := c.conn.Query(ctx, res.Query)
	if err != nil {
		return err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	res.Columns = make([]string, len(fields))
	for i, fd := range fields {
		res.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return err
		}

		row := make(Row, len(values))
		for i, v := range values {
			row[res.Columns[i]] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return err
	}
	res.AffectedRows = rows.CommandTag().RowsAffected()
	return nil
}

// ActiveDatabase returns the current schema, or "" when the search_path resolves to none
func (c *PostgresClient) ActiveDatabase(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var name *string
	if err := c.conn.QueryRow(ctx, "SELECT current_schema()").Scan(&name); err != nil {
		c.log.Warn("failed to read current schema", "error", err)
		return ""
	}
	if name == nil {
		return ""
	}
	c.database = *name
	return *name
}

// SelectDatabase points the search_path at an existing schema
func (c *PostgresClient) SelectDatabase(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var exists bool
	err := c.conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", name).Scan(&exists)
	if err != nil || !exists {
		return false
	}

	if _, err := c.conn.Exec(ctx, "SET search_path TO "+pq.QuoteIdentifier(name)); err != nil {
		c.log.Debug("failed to set search_path", "schema", name, "error", err)
		return false
	}
	c.database = name
	return true
}
