// Package dialect adapts the generic SQL repository to a storage engine:
// parameter placeholders, timestamp expressions, the per-kit stock window,
// table statistics and classification of engine errors into repository kinds.
package dialect

import (
	"context"
	"database/sql"
	"fmt"

	"aidkit/internal/repository/schema"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Dialect describes one SQL engine.
type Dialect interface {
	// Name is the database/sql driver family ("postgres", "sqlite").
	Name() string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
	// Now is the SQL expression stamped into updated_at on every update.
	Now() string
	// Arg converts a normalised value of the given column kind into a bind argument.
	Arg(kind schema.Kind, v any) any
	// SupportsLateral reports whether LEFT JOIN LATERAL is available.
	SupportsLateral() bool
	// EstimateRowCount reads the planner's row estimate for table; -1 when unknown.
	EstimateRowCount(ctx context.Context, q Querier, table string) (int64, error)
	// Analyze returns the statement that refreshes statistics for table.
	Analyze(table string) string
	// Classify maps an engine error onto repository error kinds. Errors it
	// does not recognise are returned unchanged.
	Classify(table string, err error) error
}

// ByName returns the dialect for a driver family.
func ByName(name string) (Dialect, error) {
	switch name {
	case "postgres", "pgx":
		return Postgres{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", name)
	}
}
