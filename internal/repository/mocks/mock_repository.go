package mocks

import (
	"context"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of repository.Repository for any entity.
type MockRepository[T any] struct {
	mock.Mock
}

var _ repository.Repository[model.Producer] = (*MockRepository[model.Producer])(nil)

func (m *MockRepository[T]) FetchMany(ctx context.Context, q repository.Query) ([]T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRepository[T]) FetchOneByAny(ctx context.Context, q repository.Query) (*T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) FetchOneByID(ctx context.Context, id int64, w repository.Window) (*T, error) {
	args := m.Called(ctx, id, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) InsertOne(ctx context.Context, fields repository.Fields) (*T, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Update(ctx context.Context, where []repository.Predicate, fields repository.Fields) ([]T, error) {
	args := m.Called(ctx, where, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRepository[T]) UpdateByID(ctx context.Context, id int64, fields repository.Fields) (*T, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Delete(ctx context.Context, where []repository.Predicate) (int64, error) {
	args := m.Called(ctx, where)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository[T]) Exists(ctx context.Context, where []repository.Predicate) (bool, error) {
	args := m.Called(ctx, where)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) EstimateRowCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockRepository adds Consume to the generic mock.
type MockStockRepository struct {
	MockRepository[model.MedicationStock]
}

var _ repository.StockRepository = (*MockStockRepository)(nil)

func (m *MockStockRepository) Consume(ctx context.Context, id int64, amount int64) (*model.MedicationStock, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationStock), args.Error(1)
}
