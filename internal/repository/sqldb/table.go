// Package sqldb implements the repository contracts on database/sql.
// It works with any dialect in repository/dialect and contains no business
// logic: strictly parameterized SQL built from the static column tables.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"aidkit/internal/repository"
	"aidkit/internal/repository/dialect"
	"aidkit/internal/repository/schema"
)

// Descriptor binds an entity type to its table.
type Descriptor[T any] struct {
	Table *schema.Table
	// Scan reads one row holding Table.Columns in order.
	Scan func(s scanner) (T, error)
}

// loader overrides reads for entities with nested collections and fills
// derived attributes on rows returned by writes.
type loader[T any] interface {
	fetchMany(ctx context.Context, db queryer, q repository.Query) ([]T, error)
	complete(ctx context.Context, db queryer, rows []T) error
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Table is the generic repository.Repository implementation.
// Reads run as single statements on the pool; writes run in their own
// transaction which is committed before the call returns.
type Table[T any] struct {
	db      *sql.DB
	dialect dialect.Dialect
	desc    Descriptor[T]
	loader  loader[T]
}

// NewTable creates a repository for desc.
func NewTable[T any](db *sql.DB, d dialect.Dialect, desc Descriptor[T]) *Table[T] {
	return &Table[T]{db: db, dialect: d, desc: desc}
}

var _ repository.Repository[struct{}] = (*Table[struct{}])(nil)

func (r *Table[T]) name() string { return r.desc.Table.Name }

// FetchMany returns rows with id > q.Offset matching q.Where.
func (r *Table[T]) FetchMany(ctx context.Context, q repository.Query) ([]T, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", repository.ErrInvalidArgument, q.Limit)
	}
	if r.loader != nil {
		return r.loader.fetchMany(ctx, r.db, q)
	}

	b := newBuilder(r.dialect)
	b.write("SELECT ").columns("", r.desc.Table.ColumnNames()).write(" FROM ", r.name())
	if err := b.where(r.desc.Table, "", q.Where, &q.Offset); err != nil {
		return nil, err
	}
	if err := b.orderBy(r.desc.Table, "", q.OrderBy, repository.Asc("id")); err != nil {
		return nil, err
	}
	b.write(" LIMIT ").arg(q.Limit)

	rows, err := r.db.QueryContext(ctx, b.String(), b.args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", r.name(), r.dialect.Classify(r.name(), err))
	}
	return r.collect(rows)
}

// FetchOneByAny returns the first row of FetchMany with limit 1.
func (r *Table[T]) FetchOneByAny(ctx context.Context, q repository.Query) (*T, error) {
	q.Limit = 1
	items, err := r.FetchMany(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return &items[0], nil
}

// FetchOneByID returns the row with the given id.
func (r *Table[T]) FetchOneByID(ctx context.Context, id int64, w repository.Window) (*T, error) {
	return r.FetchOneByAny(ctx, repository.Query{
		Where:  []repository.Predicate{repository.Eq("id", id)},
		Window: w,
	})
}

// InsertOne inserts fields as a new row and returns it.
func (r *Table[T]) InsertOne(ctx context.Context, fields repository.Fields) (*T, error) {
	names, values, err := r.prepare(fields)
	if err != nil {
		return nil, err
	}

	b := newBuilder(r.dialect)
	b.write("INSERT INTO ", r.name())
	if len(names) == 0 {
		b.write(" DEFAULT VALUES")
	} else {
		b.write(" (").columns("", names).write(") VALUES (")
		for i, v := range values {
			if i > 0 {
				b.write(", ")
			}
			b.arg(v)
		}
		b.write(")")
	}
	b.write(" RETURNING ").columns("", r.desc.Table.ColumnNames())

	var out []T
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, b.String(), b.args...)
		if err != nil {
			return err
		}
		out, err = r.collect(rows)
		if err != nil {
			return err
		}
		return r.complete(ctx, tx, out)
	})
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", r.name(), r.dialect.Classify(r.name(), err))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert into %s: no row returned", r.name())
	}
	return &out[0], nil
}

// Update applies fields to every row matching where and returns those rows.
// updated_at is refreshed unless fields sets it explicitly.
func (r *Table[T]) Update(ctx context.Context, where []repository.Predicate, fields repository.Fields) ([]T, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: at least one field required", repository.ErrInvalidArgument)
	}
	names, values, err := r.prepare(fields)
	if err != nil {
		return nil, err
	}

	b := newBuilder(r.dialect)
	b.write("UPDATE ", r.name(), " SET ")
	for i, n := range names {
		if i > 0 {
			b.write(", ")
		}
		b.write(n, " = ").arg(values[i])
	}
	if _, ok := fields["updated_at"]; !ok {
		b.write(", updated_at = ", r.dialect.Now())
	}
	if err := b.where(r.desc.Table, "", where, nil); err != nil {
		return nil, err
	}
	b.write(" RETURNING ").columns("", r.desc.Table.ColumnNames())

	var out []T
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, b.String(), b.args...)
		if err != nil {
			return err
		}
		out, err = r.collect(rows)
		if err != nil {
			return err
		}
		return r.complete(ctx, tx, out)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.name(), r.dialect.Classify(r.name(), err))
	}
	return out, nil
}

// UpdateByID applies fields to the row with the given id.
func (r *Table[T]) UpdateByID(ctx context.Context, id int64, fields repository.Fields) (*T, error) {
	items, err := r.Update(ctx, []repository.Predicate{repository.Eq("id", id)}, fields)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return &items[0], nil
}

// Delete removes rows matching where and returns how many were removed.
func (r *Table[T]) Delete(ctx context.Context, where []repository.Predicate) (int64, error) {
	b := newBuilder(r.dialect)
	b.write("DELETE FROM ", r.name())
	if err := b.where(r.desc.Table, "", where, nil); err != nil {
		return 0, err
	}

	var n int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, b.String(), b.args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", r.name(), r.dialect.Classify(r.name(), err))
	}
	return n, nil
}

// Exists reports whether any row matches where.
func (r *Table[T]) Exists(ctx context.Context, where []repository.Predicate) (bool, error) {
	b := newBuilder(r.dialect)
	b.write("SELECT EXISTS (SELECT 1 FROM ", r.name())
	if err := b.where(r.desc.Table, "", where, nil); err != nil {
		return false, err
	}
	b.write(")")

	var ok bool
	if err := r.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.name(), r.dialect.Classify(r.name(), err))
	}
	return ok, nil
}

// EstimateRowCount returns the planner statistics estimate for the table.
// A negative or missing estimate triggers one ANALYZE and a re-read; if the
// engine still has no figure the estimate is 0.
func (r *Table[T]) EstimateRowCount(ctx context.Context) (int64, error) {
	n, err := r.dialect.EstimateRowCount(ctx, r.db, r.name())
	if err != nil {
		return 0, fmt.Errorf("estimate %s: %w", r.name(), err)
	}
	if n >= 0 {
		return n, nil
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.Analyze(r.name())); err != nil {
		return 0, fmt.Errorf("analyze %s: %w", r.name(), err)
	}
	n, err = r.dialect.EstimateRowCount(ctx, r.db, r.name())
	if err != nil {
		return 0, fmt.Errorf("estimate %s: %w", r.name(), err)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// prepare validates fields against the table and returns column names in
// sorted order together with their bind arguments.
func (r *Table[T]) prepare(fields repository.Fields) ([]string, []any, error) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	values := make([]any, len(names))
	for i, k := range names {
		col, ok := r.desc.Table.Column(k)
		if !ok {
			return nil, nil, &repository.FieldError{Kind: repository.ErrUnknownField, Table: r.name(), Field: k}
		}
		v, err := col.Coerce(fields[k])
		if err != nil {
			return nil, nil, &repository.FieldError{
				Kind: repository.ErrInvalidType, Table: r.name(), Field: k,
				Value: fields[k], Expected: col.Kind.String(), Err: err,
			}
		}
		if v != nil {
			v = r.dialect.Arg(col.Kind, v)
		}
		values[i] = v
	}
	return names, values, nil
}

func (r *Table[T]) collect(rows *sql.Rows) ([]T, error) {
	defer rows.Close()
	items := make([]T, 0)
	for rows.Next() {
		item, err := r.desc.Scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Table[T]) complete(ctx context.Context, tx *sql.Tx, rows []T) error {
	if r.loader == nil || len(rows) == 0 {
		return nil
	}
	return r.loader.complete(ctx, tx, rows)
}

// inTx runs fn in a transaction, committing on success and rolling back on error.
func (r *Table[T]) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w; rollback failed: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
