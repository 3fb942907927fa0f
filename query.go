package mydb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var limitPattern = regexp.MustCompile(`^\d+(,\s?\d+)?$`)

// Query accumulates WHERE predicates and a LIMIT for one statement on a
// Table, then builds and runs it. The filter state is cleared after every
// executed statement, successful or not, so a Query can be reused.
//
// A Query must not be used from more than one goroutine at a time.
type Query struct {
	table    *Table
	where    []string
	limit    string
	insertID int64
}

// Where appends one "<column> <operator> <literal>" predicate per known
// column in data; unknown columns are skipped. The operator defaults to "=".
func (q *Query) Where(data Row, operator ...string) *Query {
	op := "="
	if len(operator) > 0 && operator[0] != "" {
		op = operator[0]
	}

	for _, name := range q.table.orderedKeys(data) {
		lit, _ := q.table.Escape(name, data[name])
		q.where = append(q.where, name+" "+op+" "+lit)
	}
	return q
}

// SetLimit sets the LIMIT clause: a row count or "offset,count".
// Anything else is ignored and the previous limit is kept.
func (q *Query) SetLimit(limit string) *Query {
	limit = strings.TrimSpace(limit)
	if limitPattern.MatchString(limit) {
		q.limit = limit
	}
	return q
}

// Predicates returns the accumulated WHERE fragments
func (q *Query) Predicates() []string {
	return append([]string(nil), q.where...)
}

// RenderWhere returns the WHERE clause with a leading space, or ""
func (q *Query) RenderWhere() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// RenderLimit returns the LIMIT clause with a leading space, or ""
func (q *Query) RenderLimit() string {
	if q.limit == "" {
		return ""
	}
	return " LIMIT " + q.limit
}

// Reset clears the WHERE and LIMIT state
func (q *Query) Reset() {
	q.where = nil
	q.limit = ""
}

// HasPrimaryKeyCoverage reports whether every primary key column is the
// subject of some WHERE predicate. Tables without primary keys are covered.
func (q *Query) HasPrimaryKeyCoverage() bool {
	pks := q.table.info.PrimaryKeys
	if len(pks) == 0 {
		return true
	}

	pinned := make(map[string]bool, len(q.where))
	for _, w := range q.where {
		field, _, _ := strings.Cut(w, " ")
		pinned[field] = true
	}
	for _, pk := range pks {
		if !pinned[pk] {
			return false
		}
	}
	return true
}

// InsertID returns the id generated by this query's last successful Add
func (q *Query) InsertID() int64 {
	return q.insertID
}

// exec runs sql and resets the filter state
func (q *Query) exec(ctx context.Context, op, sql string) Result {
	res := q.table.conn.Execute(ctx, sql)
	q.Reset()

	if !res.OK() {
		q.table.logError(op, "statement failed: %s [%s]", res.ErrorMessage, sql)
	}
	return res
}

// changed reports whether a write statement touched any row. A statement
// that ran but matched nothing is logged as a failure.
func (q *Query) changed(op string, res Result) bool {
	if res.AffectedRows > 0 {
		return true
	}
	if res.OK() {
		q.table.logError(op, "no rows affected")
	}
	return false
}

// Add inserts data as a new row. Keys that are not columns are dropped.
// It fails when a required column is missing from data or nothing is left
// to insert, and succeeds when the insert affected a row. A generated id is
// available from InsertID afterwards.
func (q *Query) Add(ctx context.Context, data Row) bool {
	t := q.table
	data = t.Strip(data)

	var missing []string
	for _, f := range t.info.RequiredFields {
		if _, ok := data[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		t.logError("add", "not all required fields supplied: %s", strings.Join(missing, ", "))
		return false
	}

	columns, values := t.EscapeFields(data)
	if len(columns) == 0 {
		t.logError("add", "no data after escaping fields")
		return false
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(columns, ", "), strings.Join(values, ", "))

	res := q.exec(ctx, "add", sql)
	if !q.changed("add", res) {
		return false
	}

	if res.LastInsertID != 0 {
		q.insertID = res.LastInsertID
		t.insertID.Store(res.LastInsertID)
	}
	return true
}

// Get selects rows matching the accumulated WHERE state. fields limits the
// projection; unknown names are logged and skipped, and with no valid names
// every column is selected. A non-empty limit is applied as with SetLimit.
func (q *Query) Get(ctx context.Context, fields []string, limit string) []Row {
	t := q.table

	var valid []string
	for _, f := range fields {
		if !t.HasField(f) {
			t.logError("get", "invalid filter field: %s", f)
			continue
		}
		valid = append(valid, f)
	}

	projection := "*"
	if len(valid) > 0 {
		projection = strings.Join(valid, ", ")
	}

	if limit != "" {
		q.SetLimit(limit)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s", projection, t.name, q.RenderWhere(), q.RenderLimit())
	return q.exec(ctx, "get", sql).Rows
}

// Delete deletes the rows matching data together with the accumulated WHERE
// state. It refuses to run without any filter, and on tables with a primary
// key it requires every key column to be filtered.
func (q *Query) Delete(ctx context.Context, data Row) bool {
	t := q.table
	data = t.Strip(data)

	if len(data) == 0 && len(q.where) == 0 {
		t.logError("delete", "no data supplied")
		return false
	}

	if len(data) > 0 {
		q.Where(data)
	}

	if len(t.info.PrimaryKeys) > 0 && !q.HasPrimaryKeyCoverage() {
		t.logError("delete", "all primary keys required")
		return false
	}

	sql := fmt.Sprintf("DELETE FROM %s%s", t.name, q.RenderWhere())
	return q.changed("delete", q.exec(ctx, "delete", sql))
}

// Update sets the columns in data.
//
// On a table with a primary key, data that carries every key column
// targets that row: the key values move into the WHERE clause and the rest
// becomes the SET list. Otherwise the accumulated WHERE state must already
// pin every key column. Update fails when no SET data remains.
func (q *Query) Update(ctx context.Context, data Row) bool {
	t := q.table
	data = t.Strip(data)

	if pks := t.info.PrimaryKeys; len(pks) > 0 {
		if hasAllKeys(data, pks) {
			keys := make(Row, len(pks))
			for _, pk := range pks {
				keys[pk] = data[pk]
				delete(data, pk)
			}
			q.Where(keys)
		} else if !q.HasPrimaryKeyCoverage() {
			t.logError("update", "primary keys required")
			return false
		}
	}

	if len(data) == 0 {
		t.logError("update", "no set data supplied")
		return false
	}

	columns, values := t.EscapeFields(data)
	set := make([]string, len(columns))
	for i := range columns {
		set[i] = columns[i] + "=" + values[i]
	}

	sql := fmt.Sprintf("UPDATE %s SET %s%s", t.name, strings.Join(set, ", "), q.RenderWhere())
	return q.changed("update", q.exec(ctx, "update", sql))
}

func hasAllKeys(data Row, keys []string) bool {
	for _, k := range keys {
		if _, ok := data[k]; !ok {
			return false
		}
	}
	return true
}
