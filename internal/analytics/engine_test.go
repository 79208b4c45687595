package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wealthpath/expense-analytics/internal/apperror"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Aggregate(ctx context.Context, q Query) ([]Bucket, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Bucket), args.Error(1)
}

func (m *MockStore) AggregateByCategory(ctx context.Context, q Query) ([]CategoryBucket, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CategoryBucket), args.Error(1)
}

func TestEngine_Totals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := Query{OwnerID: "owner-1", Shape: ShapeMonth}
	totalQuery := Query{OwnerID: "owner-1", Shape: ShapeTotal}

	tests := []struct {
		name      string
		setupMock func(m *MockStore)
		wantErr   error
		check     func(t *testing.T, b Bucket)
	}{
		{
			name: "single bucket",
			setupMock: func(m *MockStore) {
				m.On("Aggregate", ctx, totalQuery).Return([]Bucket{{
					Total: decimal.NewFromInt(200), Count: 2, Avg: decimal.NewFromInt(100),
					Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(150),
				}}, nil)
			},
			check: func(t *testing.T, b Bucket) {
				assert.True(t, b.Total.Equal(decimal.NewFromInt(200)))
				assert.EqualValues(t, 2, b.Count)
				assert.True(t, b.Max.Equal(decimal.NewFromInt(150)))
			},
		},
		{
			name: "no expenses gives a zero bucket",
			setupMock: func(m *MockStore) {
				m.On("Aggregate", ctx, totalQuery).Return([]Bucket{}, nil)
			},
			check: func(t *testing.T, b Bucket) {
				assert.True(t, b.Total.IsZero())
				assert.Zero(t, b.Count)
			},
		},
		{
			name: "more than one total",
			setupMock: func(m *MockStore) {
				m.On("Aggregate", ctx, totalQuery).Return([]Bucket{
					{Total: decimal.NewFromInt(1), Count: 1},
					{Total: decimal.NewFromInt(2), Count: 1},
				}, nil)
			},
			wantErr: apperror.ErrComputation,
		},
		{
			name: "store failure",
			setupMock: func(m *MockStore) {
				m.On("Aggregate", ctx, totalQuery).Return(nil, errors.New("connection reset"))
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := new(MockStore)
			tt.setupMock(store)
			e := NewEngine(store)

			got, err := e.Totals(ctx, q)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, apperror.ErrComputation) {
					assert.True(t, errors.Is(err, apperror.ErrComputation))
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			store.AssertExpectations(t)
		})
	}
}

func TestEngine_Buckets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("keys are projected onto the shape", func(t *testing.T) {
		q := Query{OwnerID: "owner-1", Shape: ShapeDay}
		store := new(MockStore)
		store.On("Aggregate", ctx, q).Return([]Bucket{
			{Key: Key{Year: 2025, Month: 6, Day: 30}, Total: decimal.NewFromInt(150), Count: 1},
		}, nil)

		got, err := NewEngine(store).Buckets(ctx, q)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, Key{Day: 30}, got[0].Key)
	})

	t.Run("impossible key", func(t *testing.T) {
		q := Query{OwnerID: "owner-1", Shape: ShapeQuarter}
		store := new(MockStore)
		store.On("Aggregate", ctx, q).Return([]Bucket{{Key: Key{Quarter: 5}, Count: 1}}, nil)

		_, err := NewEngine(store).Buckets(ctx, q)
		assert.True(t, errors.Is(err, apperror.ErrComputation))
	})

	t.Run("empty bucket from store", func(t *testing.T) {
		q := Query{OwnerID: "owner-1", Shape: ShapeMonth}
		store := new(MockStore)
		store.On("Aggregate", ctx, q).Return([]Bucket{{Key: Key{Month: 2}, Count: 0}}, nil)

		_, err := NewEngine(store).Buckets(ctx, q)
		assert.True(t, errors.Is(err, apperror.ErrComputation))
	})

	t.Run("missing owner never reaches the store", func(t *testing.T) {
		store := new(MockStore)

		_, err := NewEngine(store).Buckets(ctx, Query{Shape: ShapeMonth})
		assert.True(t, errors.Is(err, apperror.ErrComputation))
		store.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
	})

	t.Run("unknown shape", func(t *testing.T) {
		store := new(MockStore)

		_, err := NewEngine(store).Buckets(ctx, Query{OwnerID: "owner-1", Shape: Shape(42)})
		assert.True(t, errors.Is(err, apperror.ErrComputation))
	})

	t.Run("inverted amount filter", func(t *testing.T) {
		lo, hi := decimal.NewFromInt(100), decimal.NewFromInt(10)
		store := new(MockStore)

		_, err := NewEngine(store).Buckets(ctx, Query{OwnerID: "owner-1", Shape: ShapeTotal, MinAmount: &lo, MaxAmount: &hi})
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})
}

func TestEngine_CategoryBuckets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	groceries := uuid.New()
	q := Query{
		OwnerID: "owner-1",
		Shape:   ShapeYearMonth,
		Range:   Range{Start: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	store := new(MockStore)
	store.On("AggregateByCategory", ctx, q).Return([]CategoryBucket{{
		Bucket: Bucket{Key: Key{Year: 2025, Month: 3, Day: 9}, CategoryID: groceries, Total: decimal.NewFromInt(42), Count: 3},
		Name:   "Groceries",
		Color:  "#22c55e",
	}}, nil)

	got, err := NewEngine(store).CategoryBuckets(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Key{Year: 2025, Month: 3}, got[0].Key)
	assert.Equal(t, groceries, got[0].CategoryID)
	assert.Equal(t, "Groceries", got[0].Name)
	store.AssertExpectations(t)
}
