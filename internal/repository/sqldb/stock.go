package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/dialect"
	"aidkit/internal/repository/schema"
)

// StockTable is the stock repository. It adds Consume to the generic table.
type StockTable struct {
	*Table[model.MedicationStock]
	now func() time.Time
}

var _ repository.StockRepository = (*StockTable)(nil)

// NewStocks returns the stock repository.
func NewStocks(db *sql.DB, d dialect.Dialect) *StockTable {
	return &StockTable{
		Table: NewTable(db, d, Descriptor[model.MedicationStock]{Table: schema.Stocks, Scan: scanStock}),
		now:   time.Now,
	}
}

// Consume takes amount out of stock id. Taking the whole quantity deletes
// the row and returns nil. The first consumption stamps opened_at with the
// current date.
func (r *StockTable) Consume(ctx context.Context, id int64, amount int64) (*model.MedicationStock, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", repository.ErrInvalidArgument, amount)
	}
	col, _ := schema.Stocks.Column("opened_at")
	today, _ := col.Coerce(r.now())

	del := newBuilder(r.dialect)
	del.write("DELETE FROM stocks WHERE id = ").arg(id).write(" AND quantity = ").arg(amount)

	upd := newBuilder(r.dialect)
	upd.write("UPDATE stocks SET quantity = quantity - ").arg(amount)
	upd.write(", opened_at = COALESCE(opened_at, ").arg(r.dialect.Arg(schema.Date, today)).write(")")
	upd.write(", updated_at = ", r.dialect.Now())
	upd.write(" WHERE id = ").arg(id).write(" AND quantity > ").arg(amount)
	upd.write(" RETURNING ").columns("", schema.Stocks.ColumnNames())

	var out *model.MedicationStock
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, del.String(), del.args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 1 {
			return nil
		}

		st, err := scanStock(tx.QueryRowContext(ctx, upd.String(), upd.args...))
		if err == nil {
			out = &st
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		ex := newBuilder(r.dialect)
		ex.write("SELECT EXISTS (SELECT 1 FROM stocks WHERE id = ").arg(id).write(")")
		var found bool
		if err := tx.QueryRowContext(ctx, ex.String(), ex.args...).Scan(&found); err != nil {
			return err
		}
		if !found {
			return repository.ErrNotFound
		}
		return fmt.Errorf("%w: amount %d exceeds quantity on hand", repository.ErrInvalidArgument, amount)
	})
	if err != nil {
		return nil, fmt.Errorf("consume stock %d: %w", id, r.dialect.Classify(schema.Stocks.Name, err))
	}
	return out, nil
}
