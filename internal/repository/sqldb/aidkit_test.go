package sqldb

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/dialect"
)

var aidKitJoinColumns = []string{
	"id", "name", "location", "created_at", "updated_at", "stock_count",
	"id", "quantity", "measure_unit", "production_date", "best_before", "opened_at", "created_at",
	"id", "brand_name", "generic_name", "dosage_form", "id", "name", "id", "name",
}

func TestAidKitLoader_Build(t *testing.T) {
	q := repository.Query{
		Where:  []repository.Predicate{repository.Eq("name", "Home")},
		Limit:  10,
		Offset: 4,
		Window: repository.Window{Limit: 5, Offset: 2},
	}

	t.Run("postgres uses a lateral join", func(t *testing.T) {
		l := &aidKitLoader{d: dialect.Postgres{}}
		query, args, err := l.build(q)

		require.NoError(t, err)
		assert.Contains(t, query, "FROM (SELECT aidkits.id, aidkits.name, aidkits.location, aidkits.created_at, aidkits.updated_at, "+
			"(SELECT count(*) FROM stocks WHERE stocks.aidkit_id = aidkits.id) AS stock_count FROM aidkits "+
			"WHERE aidkits.name = $1 AND aidkits.id > $2 ORDER BY aidkits.id ASC LIMIT $3) k")
		assert.Contains(t, query, "LEFT JOIN LATERAL (SELECT stocks.* FROM stocks WHERE stocks.aidkit_id = k.id AND stocks.id > $4 "+
			"ORDER BY stocks.created_at ASC, stocks.id ASC LIMIT $5) s ON true")
		assert.Contains(t, query, "LEFT JOIN producers p ON p.id = m.producer_id")
		assert.True(t, regexp.MustCompile(`ORDER BY k\.id ASC, s\.created_at ASC, s\.id ASC$`).MatchString(query))
		assert.Equal(t, []any{"Home", int64(4), 10, int64(2), 5}, args)
	})

	t.Run("sqlite numbers rows per kit", func(t *testing.T) {
		l := &aidKitLoader{d: dialect.SQLite{}}
		query, args, err := l.build(q)

		require.NoError(t, err)
		assert.NotContains(t, query, "LATERAL")
		assert.Contains(t, query, "LEFT JOIN (SELECT stocks.*, ROW_NUMBER() OVER (PARTITION BY stocks.aidkit_id "+
			"ORDER BY stocks.created_at ASC, stocks.id ASC) AS rn FROM stocks WHERE stocks.id > ?) s ON s.aidkit_id = k.id AND s.rn <= ?")
		assert.Equal(t, []any{"Home", int64(4), 10, int64(2), 5}, args)
	})

	t.Run("zero window skips stock joins", func(t *testing.T) {
		l := &aidKitLoader{d: dialect.Postgres{}}
		query, args, err := l.build(repository.Query{Limit: 3})

		require.NoError(t, err)
		assert.NotContains(t, query, "JOIN")
		assert.True(t, regexp.MustCompile(`ORDER BY k\.id ASC$`).MatchString(query))
		assert.Equal(t, []any{int64(0), 3}, args)
	})

	t.Run("custom stock order keeps id tiebreak", func(t *testing.T) {
		l := &aidKitLoader{d: dialect.Postgres{}}
		query, _, err := l.build(repository.Query{
			Limit:   3,
			OrderBy: []repository.OrderBy{repository.Desc("name")},
			Window:  repository.Window{Limit: 1, OrderBy: []repository.OrderBy{repository.Asc("best_before")}},
		})

		require.NoError(t, err)
		assert.Contains(t, query, "ORDER BY stocks.best_before ASC, stocks.id ASC LIMIT")
		assert.True(t, regexp.MustCompile(`ORDER BY k\.name DESC, k\.id ASC, s\.best_before ASC, s\.id ASC$`).MatchString(query))
	})

	t.Run("unknown stock order column", func(t *testing.T) {
		l := &aidKitLoader{d: dialect.Postgres{}}
		_, _, err := l.build(repository.Query{
			Limit:  3,
			Window: repository.Window{Limit: 1, OrderBy: []repository.OrderBy{repository.Asc("colour")}},
		})
		assert.ErrorIs(t, err, repository.ErrUnknownField)
	})
}

func TestAidKits_FetchMany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAidKits(db, dialect.Postgres{}, 10)
	now := time.Now().UTC()
	produced := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	best := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(aidKitJoinColumns).
		AddRow(int64(1), "Home", "Kitchen", now, now, int64(30),
			int64(3), int64(10), "pcs", produced, best, nil, now,
			int64(7), "Nurofen", "ibuprofen", "tablet", int64(2), "Reckitt", nil, nil).
		AddRow(int64(1), "Home", "Kitchen", now, now, int64(30),
			int64(4), int64(100), "ml", produced, best, best, now,
			int64(8), "Calpol", "paracetamol", "syrup", nil, nil, int64(5), "antipyretic").
		AddRow(int64(2), "Car", nil, now, now, int64(0),
			nil, nil, nil, nil, nil, nil, nil,
			nil, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM \\(SELECT (.+) FROM aidkits WHERE aidkits.id > \\$1 ORDER BY aidkits.id ASC LIMIT \\$2\\) k LEFT JOIN LATERAL").
		WithArgs(int64(0), 10, int64(2), 5).
		WillReturnRows(rows)

	kits, err := repo.FetchMany(context.Background(), repository.Query{
		Limit:  10,
		Window: repository.Window{Limit: 5, Offset: 2},
	})

	require.NoError(t, err)
	require.Len(t, kits, 2)

	home := kits[0]
	assert.Equal(t, int64(30), home.StockCount)
	require.NotNil(t, home.Location)
	assert.Equal(t, "Kitchen", *home.Location)
	require.Len(t, home.Stocks, 2)
	assert.Equal(t, int64(3), home.Stocks[0].ID)
	assert.Equal(t, model.UnitPiece, home.Stocks[0].MeasureUnit)
	assert.Nil(t, home.Stocks[0].OpenedAt)
	assert.Equal(t, &model.Ref{ID: 2, Name: "Reckitt"}, home.Stocks[0].Medication.Producer)
	assert.Nil(t, home.Stocks[0].Medication.Category)
	assert.Equal(t, model.DosageSyrup, home.Stocks[1].Medication.DosageForm)
	assert.Nil(t, home.Stocks[1].Medication.Producer)
	assert.Equal(t, &model.Ref{ID: 5, Name: "antipyretic"}, home.Stocks[1].Medication.Category)

	car := kits[1]
	assert.Nil(t, car.Location)
	assert.Equal(t, int64(0), car.StockCount)
	assert.NotNil(t, car.Stocks)
	assert.Empty(t, car.Stocks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAidKits_InsertOne(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAidKits(db, dialect.Postgres{}, 10)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO aidkits (location, name) VALUES ($1, $2) RETURNING id, name, location, created_at, updated_at")).
		WithArgs("Garage", "Car").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "created_at", "updated_at"}).
			AddRow(int64(2), "Car", "Garage", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT aidkit_id, count(*) FROM stocks WHERE aidkit_id IN ($1) GROUP BY aidkit_id")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"aidkit_id", "count"}))
	mock.ExpectCommit()

	kit, err := repo.InsertOne(context.Background(), repository.Fields{"name": "Car", "location": "Garage"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), kit.ID)
	assert.Equal(t, int64(0), kit.StockCount)
	assert.NotNil(t, kit.Stocks)
	assert.Empty(t, kit.Stocks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAidKits_RejectsNegativeWindow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAidKits(db, dialect.Postgres{}, 10)

	_, err := repo.FetchMany(context.Background(), repository.Query{Limit: 1, Window: repository.Window{Limit: -1}})

	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAidKits_DefaultWindow(t *testing.T) {
	t.Run("zero limit loads the default window", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAidKits(db, dialect.Postgres{}, 10)

		mock.ExpectQuery("LEFT JOIN LATERAL \\(SELECT stocks\\.\\* FROM stocks WHERE stocks\\.aidkit_id = k\\.id AND stocks\\.id > \\$3 "+
			"ORDER BY stocks\\.created_at ASC, stocks\\.id ASC LIMIT \\$4\\) s ON true").
			WithArgs(int64(0), 1, int64(0), 10).
			WillReturnRows(sqlmock.NewRows(aidKitJoinColumns))

		_, err := repo.FetchOneByAny(context.Background(), repository.Query{})

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skip loads no stock rows", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAidKits(db, dialect.Postgres{}, 10)
		now := time.Now().UTC()

		mock.ExpectQuery("SELECT k\\.id, k\\.name, k\\.location, k\\.created_at, k\\.updated_at, k\\.stock_count FROM (.+) ORDER BY k\\.id ASC$").
			WithArgs(int64(0), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "created_at", "updated_at", "stock_count"}).
				AddRow(int64(1), "Home", nil, now, now, int64(30)))

		kit, err := repo.FetchOneByAny(context.Background(), repository.Query{Window: repository.Window{Skip: true, Limit: 5}})

		require.NoError(t, err)
		assert.Equal(t, int64(30), kit.StockCount)
		assert.NotNil(t, kit.Stocks)
		assert.Empty(t, kit.Stocks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
