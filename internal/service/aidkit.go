package service

import (
	"context"
	"fmt"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/filter"
	"aidkit/internal/repository/schema"
)

// AidKitService serves aid kits. Every read returns the kit with its
// stock_count and a window of its stock rows; ListItems and Get use a window
// of ItemsPerPage rows oldest first.
type AidKitService interface {
	Service[model.AidKit]

	// ListWithStocks lists kits, each carrying at most w.Limit stock rows with id > w.Offset.
	ListWithStocks(ctx context.Context, limit, offset int, filters filter.Map, w repository.Window) ([]model.AidKit, error)

	// GetWithStocks returns one kit with the requested stock window.
	GetWithStocks(ctx context.Context, id int64, w repository.Window) (*model.AidKit, error)
}

type aidKitService struct {
	*crudService[model.AidKit]
}

// NewAidKitService constructs a new AidKitService.
func NewAidKitService(repo repository.AidKitRepository, page Pagination) AidKitService {
	return &aidKitService{crudService: newCRUD(repo, schema.AidKits, page)}
}

// defaultWindow is the stock window applied when a caller does not choose one.
func (s *aidKitService) defaultWindow() repository.Window {
	return repository.Window{Limit: s.page.ItemsPerPage}
}

func (s *aidKitService) window(w repository.Window) (repository.Window, error) {
	if w.Limit < 0 || w.Limit > s.page.Limit {
		return w, fmt.Errorf("%w: stock limit must be in [0, %d], got %d", ErrInvalidArgument, s.page.Limit, w.Limit)
	}
	if w.Offset < 0 {
		return w, fmt.Errorf("%w: stock offset must not be negative, got %d", ErrInvalidArgument, w.Offset)
	}
	if w.Limit == 0 {
		return repository.Window{Skip: true}, nil
	}
	if len(w.OrderBy) == 0 {
		w.OrderBy = []repository.OrderBy{repository.Asc("created_at"), repository.Asc("id")}
	}
	return w, nil
}

func (s *aidKitService) ListItems(ctx context.Context, limit, offset int, filters filter.Map) ([]model.AidKit, error) {
	return s.ListWithStocks(ctx, limit, offset, filters, s.defaultWindow())
}

func (s *aidKitService) Get(ctx context.Context, id int64) (*model.AidKit, error) {
	return s.GetWithStocks(ctx, id, s.defaultWindow())
}

func (s *aidKitService) ListWithStocks(ctx context.Context, limit, offset int, filters filter.Map, w repository.Window) ([]model.AidKit, error) {
	q, err := s.query(limit, offset, filters)
	if err != nil {
		return nil, err
	}
	if q.Window, err = s.window(w); err != nil {
		return nil, err
	}
	return s.repo.FetchMany(ctx, q)
}

func (s *aidKitService) GetWithStocks(ctx context.Context, id int64, w repository.Window) (*model.AidKit, error) {
	w, err := s.window(w)
	if err != nil {
		return nil, err
	}
	return s.repo.FetchOneByID(ctx, id, w)
}
