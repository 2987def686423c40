package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/dialect"
	"aidkit/internal/repository/schema"
)

// NewAidKits returns the aid kit repository. Reads load every kit together
// with its total stock_count and a window of its stock rows, each carrying
// the medication summary with producer and category references. A read
// without a window limit loads up to stocksPerKit rows oldest first.
func NewAidKits(db *sql.DB, d dialect.Dialect, stocksPerKit int) repository.AidKitRepository {
	if stocksPerKit <= 0 {
		stocksPerKit = defaultStocksPerKit
	}
	t := NewTable(db, d, Descriptor[model.AidKit]{Table: schema.AidKits, Scan: scanAidKit})
	t.loader = &aidKitLoader{d: d, perKit: stocksPerKit}
	return t
}

const defaultStocksPerKit = 10

// defaultStockOrder lists stock rows oldest first.
var defaultStockOrder = []repository.OrderBy{repository.Asc("created_at"), repository.Asc("id")}

const stockCountExpr = "(SELECT count(*) FROM stocks WHERE stocks.aidkit_id = aidkits.id) AS stock_count"

type aidKitLoader struct {
	d      dialect.Dialect
	perKit int
}

// resolve applies the default stock window. A skipped window becomes a
// zero limit, which build renders without stock joins.
func (l *aidKitLoader) resolve(w repository.Window) repository.Window {
	switch {
	case w.Skip:
		return repository.Window{Skip: true}
	case w.Limit == 0:
		w.Limit = l.perKit
	}
	return w
}

// fetchMany issues one statement: a page of kits joined with a bounded
// window of stocks per kit, then medications, producers and categories.
// Rows are folded into kits in page order.
func (l *aidKitLoader) fetchMany(ctx context.Context, db queryer, q repository.Query) ([]model.AidKit, error) {
	if q.Window.Limit < 0 {
		return nil, fmt.Errorf("%w: stock limit must not be negative, got %d", repository.ErrInvalidArgument, q.Window.Limit)
	}
	q.Window = l.resolve(q.Window)
	query, args, err := l.build(q)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select aidkits: %w", l.d.Classify(schema.AidKits.Name, err))
	}
	defer rows.Close()

	kits := make([]model.AidKit, 0)
	index := make(map[int64]int)
	for rows.Next() {
		kit, item, err := l.scan(rows, q.Window.Limit > 0)
		if err != nil {
			return nil, fmt.Errorf("scan aidkits: %w", err)
		}
		i, ok := index[kit.ID]
		if !ok {
			i = len(kits)
			index[kit.ID] = i
			kits = append(kits, kit)
		}
		if item != nil {
			kits[i].Stocks = append(kits[i].Stocks, *item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select aidkits: %w", err)
	}
	return kits, nil
}

func (l *aidKitLoader) build(q repository.Query) (string, []any, error) {
	kitOrder := q.OrderBy
	if len(kitOrder) == 0 {
		kitOrder = []repository.OrderBy{repository.Asc("id")}
	}
	stockOrder := q.Window.OrderBy
	if len(stockOrder) == 0 {
		stockOrder = defaultStockOrder
	}
	stockOrder = withID(stockOrder)
	windowed := q.Window.Limit > 0

	b := newBuilder(l.d)
	b.write("SELECT ").columns("k.", schema.AidKits.ColumnNames()).write(", k.stock_count")
	if windowed {
		b.write(", s.id, s.quantity, s.measure_unit, s.production_date, s.best_before, s.opened_at, s.created_at",
			", m.id, m.brand_name, m.generic_name, m.dosage_form, p.id, p.name, c.id, c.name")
	}

	b.write(" FROM (SELECT ").columns("aidkits.", schema.AidKits.ColumnNames()).write(", ", stockCountExpr, " FROM aidkits")
	if err := b.where(schema.AidKits, "aidkits.", q.Where, &q.Offset); err != nil {
		return "", nil, err
	}
	if err := b.orderBy(schema.AidKits, "aidkits.", kitOrder); err != nil {
		return "", nil, err
	}
	b.write(" LIMIT ").arg(q.Limit).write(") k")

	if windowed {
		if l.d.SupportsLateral() {
			b.write(" LEFT JOIN LATERAL (SELECT stocks.* FROM stocks WHERE stocks.aidkit_id = k.id AND stocks.id > ").arg(q.Window.Offset)
			b.write(" ORDER BY ")
			if err := b.orderTerms(schema.Stocks, "stocks.", stockOrder); err != nil {
				return "", nil, err
			}
			b.write(" LIMIT ").arg(q.Window.Limit).write(") s ON true")
		} else {
			b.write(" LEFT JOIN (SELECT stocks.*, ROW_NUMBER() OVER (PARTITION BY stocks.aidkit_id ORDER BY ")
			if err := b.orderTerms(schema.Stocks, "stocks.", stockOrder); err != nil {
				return "", nil, err
			}
			b.write(") AS rn FROM stocks WHERE stocks.id > ").arg(q.Window.Offset)
			b.write(") s ON s.aidkit_id = k.id AND s.rn <= ").arg(q.Window.Limit)
		}
		b.write(" LEFT JOIN medications m ON m.id = s.medication_id",
			" LEFT JOIN producers p ON p.id = m.producer_id",
			" LEFT JOIN categories c ON c.id = m.category_id")
	}

	b.write(" ORDER BY ")
	if err := b.orderTerms(schema.AidKits, "k.", withID(kitOrder)); err != nil {
		return "", nil, err
	}
	if windowed {
		b.write(", ")
		if err := b.orderTerms(schema.Stocks, "s.", stockOrder); err != nil {
			return "", nil, err
		}
	}
	return b.String(), b.args, nil
}

// scan reads one joined row. item is nil for kits without stock in the window.
func (l *aidKitLoader) scan(rows *sql.Rows, windowed bool) (model.AidKit, *model.StockItem, error) {
	var (
		k                model.AidKit
		location         sql.NullString
		created, updated nullTime
	)
	dest := []any{&k.ID, &k.Name, &location, &created, &updated, &k.StockCount}

	var (
		stockID, quantity                   sql.NullInt64
		unit                                sql.NullString
		produced, bestBefore, opened, added nullTime
		medID                               sql.NullInt64
		brand, generic, form                sql.NullString
		producerID, categoryID              sql.NullInt64
		producerName, categoryName          sql.NullString
	)
	if windowed {
		dest = append(dest,
			&stockID, &quantity, &unit, &produced, &bestBefore, &opened, &added,
			&medID, &brand, &generic, &form,
			&producerID, &producerName, &categoryID, &categoryName,
		)
	}
	if err := rows.Scan(dest...); err != nil {
		return k, nil, err
	}
	k.Location = stringPtr(location)
	k.CreatedAt, k.UpdatedAt = created.Time, updated.Time
	k.Stocks = []model.StockItem{}

	if !stockID.Valid {
		return k, nil, nil
	}
	item := &model.StockItem{
		ID:             stockID.Int64,
		Quantity:       quantity.Int64,
		MeasureUnit:    model.MeasureUnit(unit.String),
		ProductionDate: produced.Time,
		BestBefore:     bestBefore.Time,
		OpenedAt:       opened.ptr(),
		CreatedAt:      added.Time,
		Medication: model.MedicationSummary{
			ID:          medID.Int64,
			BrandName:   brand.String,
			GenericName: generic.String,
			DosageForm:  model.DosageForm(form.String),
		},
	}
	if producerID.Valid {
		item.Medication.Producer = &model.Ref{ID: producerID.Int64, Name: producerName.String}
	}
	if categoryID.Valid {
		item.Medication.Category = &model.Ref{ID: categoryID.Int64, Name: categoryName.String}
	}
	return k, item, nil
}

// complete fills stock_count on kits returned by writes. Write results
// carry no stock rows.
func (l *aidKitLoader) complete(ctx context.Context, db queryer, kits []model.AidKit) error {
	b := newBuilder(l.d)
	b.write("SELECT aidkit_id, count(*) FROM stocks WHERE aidkit_id IN (")
	for i, k := range kits {
		if i > 0 {
			b.write(", ")
		}
		b.arg(k.ID)
	}
	b.write(") GROUP BY aidkit_id")

	rows, err := db.QueryContext(ctx, b.String(), b.args...)
	if err != nil {
		return fmt.Errorf("count stocks: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(kits))
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return fmt.Errorf("count stocks: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("count stocks: %w", err)
	}
	for i := range kits {
		kits[i].StockCount = counts[kits[i].ID]
		if kits[i].Stocks == nil {
			kits[i].Stocks = []model.StockItem{}
		}
	}
	return nil
}
