package service

import (
	"context"
	"errors"
	"testing"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	repoMocks "aidkit/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func medicationExists(m *repoMocks.MockRepository[model.Medication], ctx context.Context, id int64, ok bool) {
	m.On("Exists", ctx, []repository.Predicate{repository.Eq("id", id)}).Return(ok, nil)
}

func TestStockService_ListByMedication(t *testing.T) {
	ctx := context.Background()

	t.Run("scopes to medication", func(t *testing.T) {
		mStocks := new(repoMocks.MockStockRepository)
		mMeds := new(repoMocks.MockRepository[model.Medication])
		svc := NewStockService(mStocks, mMeds, testPage)

		medicationExists(mMeds, ctx, 3, true)
		mStocks.On("FetchMany", ctx, repository.Query{
			Where:   []repository.Predicate{repository.Eq("medication_id", int64(3))},
			OrderBy: []repository.OrderBy{repository.Asc("id")},
			Limit:   10,
		}).Return([]model.MedicationStock{{ID: 1, MedicationID: 3}}, nil)

		items, err := svc.ListByMedication(ctx, 3, 10, 0, nil)

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		mStocks.AssertExpectations(t)
		mMeds.AssertExpectations(t)
	})

	t.Run("missing medication", func(t *testing.T) {
		mStocks := new(repoMocks.MockStockRepository)
		mMeds := new(repoMocks.MockRepository[model.Medication])
		svc := NewStockService(mStocks, mMeds, testPage)

		medicationExists(mMeds, ctx, 4, false)

		_, err := svc.ListByMedication(ctx, 4, 10, 0, nil)

		assert.ErrorIs(t, err, ErrNotFound)
		mStocks.AssertNotCalled(t, "FetchMany", mock.Anything, mock.Anything)
	})
}

func TestStockService_AddToMedication(t *testing.T) {
	ctx := context.Background()
	mStocks := new(repoMocks.MockStockRepository)
	mMeds := new(repoMocks.MockRepository[model.Medication])
	svc := NewStockService(mStocks, mMeds, testPage)

	medicationExists(mMeds, ctx, 3, true)
	mStocks.On("InsertOne", ctx, repository.Fields{"quantity": 10, "medication_id": int64(3)}).
		Return(&model.MedicationStock{ID: 7, Quantity: 10, MedicationID: 3}, nil)

	st, err := svc.AddToMedication(ctx, 3, repository.Fields{"quantity": 10})

	require.NoError(t, err)
	assert.Equal(t, int64(7), st.ID)
	mStocks.AssertExpectations(t)
	mMeds.AssertExpectations(t)
}

func TestStockService_Consume(t *testing.T) {
	ctx := context.Background()
	scoped := repository.Query{
		Where: []repository.Predicate{repository.Eq("id", int64(7)), repository.Eq("medication_id", int64(3))},
	}

	tests := []struct {
		name       string
		amount     int64
		setupMocks func(mStocks *repoMocks.MockStockRepository)
		wantErr    error
		wantNil    bool
	}{
		{
			name:   "partial",
			amount: 4,
			setupMocks: func(mStocks *repoMocks.MockStockRepository) {
				mStocks.On("FetchOneByAny", ctx, scoped).Return(&model.MedicationStock{ID: 7, Quantity: 10}, nil)
				mStocks.On("Consume", ctx, int64(7), int64(4)).Return(&model.MedicationStock{ID: 7, Quantity: 6}, nil)
			},
		},
		{
			name:   "used up",
			amount: 10,
			setupMocks: func(mStocks *repoMocks.MockStockRepository) {
				mStocks.On("FetchOneByAny", ctx, scoped).Return(&model.MedicationStock{ID: 7, Quantity: 10}, nil)
				mStocks.On("Consume", ctx, int64(7), int64(10)).Return(nil, nil)
			},
			wantNil: true,
		},
		{
			name:       "non positive amount",
			amount:     0,
			setupMocks: func(mStocks *repoMocks.MockStockRepository) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name:   "other medication",
			amount: 1,
			setupMocks: func(mStocks *repoMocks.MockStockRepository) {
				mStocks.On("FetchOneByAny", ctx, scoped).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "more than on hand",
			amount: 11,
			setupMocks: func(mStocks *repoMocks.MockStockRepository) {
				mStocks.On("FetchOneByAny", ctx, scoped).Return(&model.MedicationStock{ID: 7, Quantity: 10}, nil)
				mStocks.On("Consume", ctx, int64(7), int64(11)).
					Return(nil, errors.Join(errors.New("consume stock 7"), repository.ErrInvalidArgument))
			},
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStocks := new(repoMocks.MockStockRepository)
			svc := NewStockService(mStocks, new(repoMocks.MockRepository[model.Medication]), testPage)

			tt.setupMocks(mStocks)

			st, err := svc.Consume(ctx, 3, 7, tt.amount)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				if tt.wantNil {
					assert.Nil(t, st)
				} else {
					assert.NotNil(t, st)
				}
			}
			mStocks.AssertExpectations(t)
		})
	}
}

func TestStockService_RemoveFromMedication(t *testing.T) {
	ctx := context.Background()
	mStocks := new(repoMocks.MockStockRepository)
	svc := NewStockService(mStocks, new(repoMocks.MockRepository[model.Medication]), testPage)

	mStocks.On("Delete", ctx, []repository.Predicate{repository.Eq("id", int64(7)), repository.Eq("medication_id", int64(3))}).
		Return(int64(1), nil)

	ok, err := svc.RemoveFromMedication(ctx, 3, 7)

	assert.NoError(t, err)
	assert.True(t, ok)
	mStocks.AssertExpectations(t)
}
