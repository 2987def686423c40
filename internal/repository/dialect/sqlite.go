package dialect

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"aidkit/internal/repository"
	"aidkit/internal/repository/schema"
)

// Text layouts the SQLite dialect stores temporal values in. Both sort
// lexically in chronological order, which keeps range predicates correct.
const (
	sqliteTimestampLayout = "2006-01-02 15:04:05.000"
	sqliteDateLayout      = "2006-01-02"
)

// SQLite is the dialect for the pure-Go modernc.org/sqlite driver. The
// connection must have foreign_keys enabled for cascades to apply.
type SQLite struct{}

var _ Dialect = SQLite{}

func (SQLite) Name() string                { return "sqlite" }
func (SQLite) Placeholder(int) string      { return "?" }
func (SQLite) Now() string                 { return "strftime('%Y-%m-%d %H:%M:%f', 'now')" }
func (SQLite) SupportsLateral() bool       { return false }
func (SQLite) Analyze(table string) string { return "ANALYZE " + table }

// Arg renders temporal values as UTC text so that stored defaults and bound
// parameters compare consistently.
func (SQLite) Arg(kind schema.Kind, v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	if kind == schema.Date {
		return t.Format(sqliteDateLayout)
	}
	return t.UTC().Format(sqliteTimestampLayout)
}

// EstimateRowCount reads sqlite_stat1, which only exists once ANALYZE ran.
// The first integer of a stat row is the approximate number of table rows.
func (SQLite) EstimateRowCount(ctx context.Context, q Querier, table string) (int64, error) {
	const query = `SELECT stat FROM sqlite_stat1 WHERE tbl = ? ORDER BY idx IS NOT NULL LIMIT 1`
	var stat string
	if err := q.QueryRowContext(ctx, query, table).Scan(&stat); err != nil {
		if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "no such table") {
			return -1, nil
		}
		return 0, err
	}
	fields := strings.Fields(stat)
	if len(fields) == 0 {
		return -1, nil
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return -1, nil
	}
	return n, nil
}

func (SQLite) Classify(table string, err error) error {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return err
	}
	var kind error
	switch sqErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		kind = repository.ErrDuplicateKey
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_MISMATCH:
		kind = repository.ErrInvalidType
	default:
		kind = classifyMessage(sqErr.Error())
		if kind == nil {
			return err
		}
	}
	return &repository.FieldError{Kind: kind, Table: table, Err: err}
}

// classifyMessage covers connections without extended result codes, where
// every constraint failure reports the primary SQLITE_CONSTRAINT code.
func classifyMessage(msg string) error {
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return repository.ErrDuplicateKey
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return repository.ErrInvalidType
	case strings.Contains(msg, "no such column"), strings.Contains(msg, "has no column named"):
		return repository.ErrUnknownField
	default:
		return nil
	}
}
