package mocks

import (
	"context"
	"io"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/filter"
	"aidkit/internal/service"
	"aidkit/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockService is a testify mock of service.Service for any entity.
type MockService[T any] struct {
	mock.Mock
}

var _ service.Service[model.Producer] = (*MockService[model.Producer])(nil)

func (m *MockService[T]) ListItems(ctx context.Context, limit, offset int, filters filter.Map) ([]T, error) {
	args := m.Called(ctx, limit, offset, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockService[T]) Create(ctx context.Context, fields repository.Fields) (*T, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockService[T]) Get(ctx context.Context, id int64) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockService[T]) Update(ctx context.Context, id int64, fields repository.Fields) (*T, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockService[T]) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockService[T]) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAidKitService mocks service.AidKitService.
type MockAidKitService struct {
	MockService[model.AidKit]
}

var _ service.AidKitService = (*MockAidKitService)(nil)

func (m *MockAidKitService) ListWithStocks(ctx context.Context, limit, offset int, filters filter.Map, w repository.Window) ([]model.AidKit, error) {
	args := m.Called(ctx, limit, offset, filters, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AidKit), args.Error(1)
}

func (m *MockAidKitService) GetWithStocks(ctx context.Context, id int64, w repository.Window) (*model.AidKit, error) {
	args := m.Called(ctx, id, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AidKit), args.Error(1)
}

// MockStockService mocks service.StockService.
type MockStockService struct {
	MockService[model.MedicationStock]
}

var _ service.StockService = (*MockStockService)(nil)

func (m *MockStockService) ListByMedication(ctx context.Context, medicationID int64, limit, offset int, filters filter.Map) ([]model.MedicationStock, error) {
	args := m.Called(ctx, medicationID, limit, offset, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationStock), args.Error(1)
}

func (m *MockStockService) AddToMedication(ctx context.Context, medicationID int64, fields repository.Fields) (*model.MedicationStock, error) {
	args := m.Called(ctx, medicationID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationStock), args.Error(1)
}

func (m *MockStockService) GetInMedication(ctx context.Context, medicationID, id int64) (*model.MedicationStock, error) {
	args := m.Called(ctx, medicationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationStock), args.Error(1)
}

func (m *MockStockService) RemoveFromMedication(ctx context.Context, medicationID, id int64) (bool, error) {
	args := m.Called(ctx, medicationID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockService) Consume(ctx context.Context, medicationID, id, amount int64) (*model.MedicationStock, error) {
	args := m.Called(ctx, medicationID, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationStock), args.Error(1)
}

// MockExportService mocks service.ExportService.
type MockExportService struct {
	mock.Mock
}

var _ service.ExportService = (*MockExportService)(nil)

func (m *MockExportService) ExportAidKit(ctx context.Context, id int64) (*service.ExportResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockExportService) OpenExport(ctx context.Context, id int64, exportID string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id, exportID)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
