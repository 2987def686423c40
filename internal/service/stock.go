package service

import (
	"context"
	"fmt"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/filter"
	"aidkit/internal/repository/schema"
)

// StockService manages the stock rows of a medication.
type StockService interface {
	Service[model.MedicationStock]

	// ListByMedication lists stock rows of one medication.
	ListByMedication(ctx context.Context, medicationID int64, limit, offset int, filters filter.Map) ([]model.MedicationStock, error)

	// AddToMedication stores a new stock row for an existing medication.
	AddToMedication(ctx context.Context, medicationID int64, fields repository.Fields) (*model.MedicationStock, error)

	// GetInMedication returns a stock row only if it belongs to the medication.
	GetInMedication(ctx context.Context, medicationID, id int64) (*model.MedicationStock, error)

	// RemoveFromMedication deletes a stock row of the medication and reports whether it existed.
	RemoveFromMedication(ctx context.Context, medicationID, id int64) (bool, error)

	// Consume takes amount out of a stock row. It returns nil once the row is used up.
	Consume(ctx context.Context, medicationID, id, amount int64) (*model.MedicationStock, error)
}

type stockService struct {
	*crudService[model.MedicationStock]
	stocks      repository.StockRepository
	medications repository.MedicationRepository
}

// NewStockService constructs a new StockService.
func NewStockService(stocks repository.StockRepository, medications repository.MedicationRepository, page Pagination) StockService {
	return &stockService{
		crudService: newCRUD[model.MedicationStock](stocks, schema.Stocks, page),
		stocks:      stocks,
		medications: medications,
	}
}

func (s *stockService) ensureMedication(ctx context.Context, medicationID int64) error {
	ok, err := s.medications.Exists(ctx, []repository.Predicate{repository.Eq("id", medicationID)})
	if err != nil {
		return fmt.Errorf("check medication: %w", err)
	}
	if !ok {
		return fmt.Errorf("medication %d: %w", medicationID, ErrNotFound)
	}
	return nil
}

func (s *stockService) ListByMedication(ctx context.Context, medicationID int64, limit, offset int, filters filter.Map) ([]model.MedicationStock, error) {
	if err := s.ensureMedication(ctx, medicationID); err != nil {
		return nil, err
	}
	scoped := make(filter.Map, len(filters)+1)
	for k, v := range filters {
		scoped[k] = v
	}
	scoped["medication_id"] = filter.Scalar(medicationID)
	return s.ListItems(ctx, limit, offset, scoped)
}

func (s *stockService) AddToMedication(ctx context.Context, medicationID int64, fields repository.Fields) (*model.MedicationStock, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: at least one field required", ErrInvalidArgument)
	}
	if err := s.ensureMedication(ctx, medicationID); err != nil {
		return nil, err
	}
	scoped := make(repository.Fields, len(fields)+1)
	for k, v := range fields {
		scoped[k] = v
	}
	scoped["medication_id"] = medicationID
	return s.Create(ctx, scoped)
}

func (s *stockService) GetInMedication(ctx context.Context, medicationID, id int64) (*model.MedicationStock, error) {
	return s.stocks.FetchOneByAny(ctx, repository.Query{
		Where: []repository.Predicate{repository.Eq("id", id), repository.Eq("medication_id", medicationID)},
	})
}

func (s *stockService) RemoveFromMedication(ctx context.Context, medicationID, id int64) (bool, error) {
	n, err := s.stocks.Delete(ctx, []repository.Predicate{repository.Eq("id", id), repository.Eq("medication_id", medicationID)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *stockService) Consume(ctx context.Context, medicationID, id, amount int64) (*model.MedicationStock, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	if _, err := s.GetInMedication(ctx, medicationID, id); err != nil {
		return nil, err
	}
	return s.stocks.Consume(ctx, id, amount)
}
