package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// sqlClient executes statements on a single database/sql session.
// MySQL and SQLite clients embed it; a pinned *sql.Conn keeps session state
// such as USE, LAST_INSERT_ID and attached schemas stable between calls.
type sqlClient struct {
	*session
	db     *sql.DB
	conn   *sql.Conn
	codeOf func(error) string
}

func openSQLClient(ctx context.Context, driverName, dsn string, opts Options) (*sqlClient, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	return &sqlClient{
		session: newSession(driverName, opts),
		db:      db,
		conn:    conn,
	}, nil
}

// Execute runs query and records its result
func (c *sqlClient) Execute(ctx context.Context, query string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := c.run(ctx, query)
	c.record(ctx, res)
	return res
}

// run executes query without locking or recording
func (c *sqlClient) run(ctx context.Context, query string) Result {
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
		if c.codeOf != nil {
			res.ErrorCode = c.codeOf(err)
		}
		res.AffectedRows = 0
		res.Rows = nil
	}
	return res
}

func (c *sqlClient) runExec(ctx context.Context, res *Result) error {
	r, err := c.conn.ExecContext(ctx, res.Query)
	if err != nil {
		return err
	}

	if n, err := r.RowsAffected(); err == nil {
		res.AffectedRows = n
	}
	if isInsert(res.Query) {
		if id, err := r.LastInsertId(); err == nil {
			res.LastInsertID = id
		}
	}
	return nil
}

func (c *sqlClient) runQuery(ctx context.Context, res *Result) error {
	rows, err := c.conn.QueryContext(ctx, res.Query)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	res.Columns = columns

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return err
		}

		row := make(Row, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		res.Rows = append(res.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return err
	}
	res.AffectedRows = int64(len(res.Rows))
	return nil
}

// queryStrings runs a catalog query returning a single string column
func (c *sqlClient) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
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

// Close releases the session and closes the database handle
func (c *sqlClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.Close()
	return c.db.Close()
}
