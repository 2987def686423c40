package service

import (
	"context"
	"fmt"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/filter"
	"aidkit/internal/repository/schema"
)

// Error kinds surfaced by every service. They are the repository kinds, so
// errors.Is works against either name.
var (
	ErrNotFound        = repository.ErrNotFound
	ErrDuplicateKey    = repository.ErrDuplicateKey
	ErrInvalidType     = repository.ErrInvalidType
	ErrUnknownField    = repository.ErrUnknownField
	ErrInvalidArgument = repository.ErrInvalidArgument
)

// Pagination holds the page size settings.
type Pagination struct {
	// ItemsPerPage is the default page size and the default stock window.
	ItemsPerPage int
	// Limit is the largest page size a caller may request.
	Limit int
}

// check validates limit and offset against the configured bounds.
func (p Pagination) check(limit, offset int) error {
	if limit <= 0 || limit > p.Limit {
		return fmt.Errorf("%w: limit must be in (0, %d], got %d", ErrInvalidArgument, p.Limit, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidArgument, offset)
	}
	return nil
}

// Service defines the CRUD use cases shared by every entity.
type Service[T any] interface {
	// ListItems returns at most limit items with id > offset matching filters.
	ListItems(ctx context.Context, limit, offset int, filters filter.Map) ([]T, error)

	// Create inserts an item built from fields.
	Create(ctx context.Context, fields repository.Fields) (*T, error)

	// Get returns a single item by its ID.
	Get(ctx context.Context, id int64) (*T, error)

	// Update applies a partial update to the item with the given ID.
	Update(ctx context.Context, id int64, fields repository.Fields) (*T, error)

	// Delete removes an item and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Count returns the storage engine's row estimate.
	Count(ctx context.Context) (int64, error)
}

// crudService is the generic implementation of Service.
type crudService[T any] struct {
	repo  repository.Repository[T]
	table *schema.Table
	page  Pagination
}

// NewService constructs a Service over repo. table is the column table the
// repository stores T in; filters are compiled against it.
func NewService[T any](repo repository.Repository[T], table *schema.Table, page Pagination) Service[T] {
	return newCRUD(repo, table, page)
}

func newCRUD[T any](repo repository.Repository[T], table *schema.Table, page Pagination) *crudService[T] {
	return &crudService[T]{repo: repo, table: table, page: page}
}

// NewProducerService constructs the producer service.
func NewProducerService(repo repository.ProducerRepository, page Pagination) Service[model.Producer] {
	return NewService(repo, schema.Producers, page)
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo repository.CategoryRepository, page Pagination) Service[model.Category] {
	return NewService(repo, schema.Categories, page)
}

// NewMedicationService constructs the medication service.
func NewMedicationService(repo repository.MedicationRepository, page Pagination) Service[model.Medication] {
	return NewService(repo, schema.Medications, page)
}

func (s *crudService[T]) query(limit, offset int, filters filter.Map) (repository.Query, error) {
	if err := s.page.check(limit, offset); err != nil {
		return repository.Query{}, err
	}
	where, err := filter.Compile(s.table, filters)
	if err != nil {
		return repository.Query{}, err
	}
	return repository.Query{
		Where:   where,
		OrderBy: []repository.OrderBy{repository.Asc("id")},
		Limit:   limit,
		Offset:  int64(offset),
	}, nil
}

func (s *crudService[T]) ListItems(ctx context.Context, limit, offset int, filters filter.Map) ([]T, error) {
	q, err := s.query(limit, offset, filters)
	if err != nil {
		return nil, err
	}
	return s.repo.FetchMany(ctx, q)
}

func (s *crudService[T]) Create(ctx context.Context, fields repository.Fields) (*T, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: at least one field required", ErrInvalidArgument)
	}
	return s.repo.InsertOne(ctx, fields)
}

func (s *crudService[T]) Get(ctx context.Context, id int64) (*T, error) {
	return s.repo.FetchOneByID(ctx, id, repository.Window{})
}

func (s *crudService[T]) Update(ctx context.Context, id int64, fields repository.Fields) (*T, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: at least one field required", ErrInvalidArgument)
	}
	return s.repo.UpdateByID(ctx, id, fields)
}

func (s *crudService[T]) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := s.repo.Delete(ctx, []repository.Predicate{repository.Eq("id", id)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *crudService[T]) Count(ctx context.Context) (int64, error) {
	return s.repo.EstimateRowCount(ctx)
}
