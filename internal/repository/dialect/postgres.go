package dialect

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"aidkit/internal/repository"
	"aidkit/internal/repository/schema"
)

// PostgreSQL SQLSTATE codes the repository distinguishes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgInvalidDatetime     = "22007"
	pgDatetimeOverflow    = "22008"
	pgNumericOutOfRange   = "22003"
	pgStringTruncation    = "22001"
	pgDatatypeMismatch    = "42804"
	pgUndefinedColumn     = "42703"
)

// Postgres is the PostgreSQL dialect used with the pgx driver.
type Postgres struct{}

var _ Dialect = Postgres{}

func (Postgres) Name() string                 { return "postgres" }
func (Postgres) Placeholder(n int) string     { return "$" + strconv.Itoa(n) }
func (Postgres) Now() string                  { return "now()" }
func (Postgres) Arg(_ schema.Kind, v any) any { return v }
func (Postgres) SupportsLateral() bool        { return true }
func (Postgres) Analyze(table string) string  { return "ANALYZE " + table }

// EstimateRowCount reads pg_class.reltuples, which is -1 for a table that has
// never been vacuumed or analyzed.
func (Postgres) EstimateRowCount(ctx context.Context, q Querier, table string) (int64, error) {
	const query = `SELECT reltuples::bigint FROM pg_class WHERE oid = to_regclass($1)`
	var n int64
	if err := q.QueryRowContext(ctx, query, table).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return -1, nil
		}
		return 0, err
	}
	return n, nil
}

func (Postgres) Classify(table string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	var kind error
	switch pgErr.Code {
	case pgUniqueViolation, pgForeignKeyViolation:
		kind = repository.ErrDuplicateKey
	case pgNotNullViolation, pgCheckViolation, pgInvalidText, pgInvalidDatetime,
		pgDatetimeOverflow, pgNumericOutOfRange, pgStringTruncation, pgDatatypeMismatch:
		kind = repository.ErrInvalidType
	case pgUndefinedColumn:
		kind = repository.ErrUnknownField
	default:
		return err
	}
	field := pgErr.ColumnName
	if field == "" {
		field = pgErr.ConstraintName
	}
	if pgErr.TableName != "" {
		table = pgErr.TableName
	}
	return &repository.FieldError{Kind: kind, Table: table, Field: field, Err: err}
}
