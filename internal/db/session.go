package db

import (
	"context"
	"log/slog"
	"sync"

	"github.com/thapedict/mydb/internal/journal"
	"github.com/thapedict/mydb/internal/logging"
)

// session holds the per-connection bookkeeping shared by all clients:
// statement history, last affected rows and insert id, error log and journal.
// mu serialises use of the underlying connection.
type session struct {
	mu       sync.Mutex
	driver   string
	database string
	history  []QueryRecord
	affected int64
	insertID int64

	errlog  *logging.ErrorLog
	journal *journal.Journal
	log     *slog.Logger
}

func newSession(driver string, opts Options) *session {
	return &session{
		driver:  driver,
		errlog:  logging.NewErrorLog(opts.LogFile),
		journal: opts.Journal,
		log:     logging.WithDriver(driver),
	}
}

// Driver returns the driver name
func (s *session) Driver() string {
	return s.driver
}

// record stores res as the latest result. Callers must hold s.mu.
func (s *session) record(ctx context.Context, res Result) {
	s.history = append(s.history, QueryRecord{
		Query:        res.Query,
		Error:        res.ErrorMessage,
		ErrorCode:    res.ErrorCode,
		AffectedRows: res.AffectedRows,
	})
	s.affected = res.AffectedRows
	if isInsert(res.Query) {
		s.insertID = res.LastInsertID
	}

	if res.OK() {
		s.log.Debug("executed statement", "query", res.Query, "affected_rows", res.AffectedRows, "duration", res.Duration)
	} else {
		s.log.Debug("statement failed", "query", res.Query, "error", res.ErrorMessage, "code", res.ErrorCode)
	}

	if s.journal != nil {
		err := s.journal.Append(ctx, journal.Entry{
			Driver:       s.driver,
			Database:     s.database,
			Query:        res.Query,
			AffectedRows: res.AffectedRows,
			Error:        res.ErrorMessage,
			ErrorCode:    res.ErrorCode,
			Duration:     res.Duration,
		})
		if err != nil {
			s.log.Warn("failed to journal statement", "error", err)
		}
	}
}

// AffectedRows returns the affected row count of the last executed statement
func (s *session) AffectedRows() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.affected
}

// LastInsertID returns the id generated by the last INSERT statement
func (s *session) LastInsertID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertID
}

// Queries returns a copy of every statement executed so far
func (s *session) Queries() []QueryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QueryRecord, len(s.history))
	copy(out, s.history)
	return out
}

// LogError appends msg to the error log. It reports whether the file write succeeded.
func (s *session) LogError(msg string) bool {
	return s.errlog.Write(msg)
}

// SetLogFile changes the error log destination
func (s *session) SetLogFile(path string) {
	s.errlog.SetPath(path)
}
