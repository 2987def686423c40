package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (sqldb) inside this directory.

import (
	"context"

	"aidkit/internal/model"
)

// Repository is the generic data access contract for one entity type.
// No business logic here: strictly persistence operations. Every call runs
// in its own unit of work and commits before returning.
type Repository[T any] interface {
	// FetchMany returns rows matching q.Where with id > q.Offset, ordered by
	// q.OrderBy (id ascending by default), at most q.Limit rows.
	FetchMany(ctx context.Context, q Query) ([]T, error)

	// FetchOneByAny returns the first row FetchMany would return with limit 1.
	// It returns ErrNotFound when nothing matches.
	FetchOneByAny(ctx context.Context, q Query) (*T, error)

	// FetchOneByID returns the row with the given id or ErrNotFound.
	FetchOneByID(ctx context.Context, id int64, w Window) (*T, error)

	// InsertOne inserts a row built from fields and returns it as stored.
	InsertOne(ctx context.Context, fields Fields) (*T, error)

	// Update applies fields to every row matching where and returns the rows after mutation.
	Update(ctx context.Context, where []Predicate, fields Fields) ([]T, error)

	// UpdateByID applies fields to one row and returns it, or ErrNotFound.
	UpdateByID(ctx context.Context, id int64, fields Fields) (*T, error)

	// Delete removes every row matching where and returns how many were removed.
	Delete(ctx context.Context, where []Predicate) (int64, error)

	// Exists reports whether any row matches where.
	Exists(ctx context.Context, where []Predicate) (bool, error)

	// EstimateRowCount returns the storage engine's row estimate for the table.
	EstimateRowCount(ctx context.Context) (int64, error)
}

// ProducerRepository persists producers.
type ProducerRepository = Repository[model.Producer]

// CategoryRepository persists categories.
type CategoryRepository = Repository[model.Category]

// MedicationRepository persists medications.
type MedicationRepository = Repository[model.Medication]

// AidKitRepository persists aid kits; reads attach a window of stock rows.
type AidKitRepository = Repository[model.AidKit]

// StockRepository persists stock rows.
type StockRepository interface {
	Repository[model.MedicationStock]

	// Consume takes amount out of a stock row in a single unit of work.
	// The row is deleted when its quantity reaches zero, in which case the
	// returned stock is nil. It fails with ErrInvalidArgument when amount
	// exceeds the quantity on hand and ErrNotFound when the row is absent.
	Consume(ctx context.Context, id int64, amount int64) (*model.MedicationStock, error)
}
