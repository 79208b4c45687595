package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/wealthpath/expense-analytics/internal/apperror"
)

// Store executes grouped reads over an owner's expenses. Buckets come back
// sparse (one per observed key, Count >= 1) and in no particular order.
type Store interface {
	Aggregate(ctx context.Context, q Query) ([]Bucket, error)
	AggregateByCategory(ctx context.Context, q Query) ([]CategoryBucket, error)
}

// Engine issues grouped queries and checks what the store returns.
type Engine struct {
	store Store
}

// NewEngine creates an Engine reading from store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Totals returns the single bucket over every expense matching q, or a zero
// bucket when nothing matches.
func (e *Engine) Totals(ctx context.Context, q Query) (Bucket, error) {
	q.Shape = ShapeTotal
	buckets, err := e.Buckets(ctx, q)
	if err != nil {
		return Bucket{}, err
	}
	switch len(buckets) {
	case 0:
		return Bucket{}, nil
	case 1:
		return buckets[0], nil
	default:
		return Bucket{}, apperror.Computation(fmt.Errorf("total query returned %d buckets", len(buckets)))
	}
}

// Buckets groups matching expenses by q.Shape.
func (e *Engine) Buckets(ctx context.Context, q Query) ([]Bucket, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	buckets, err := e.store.Aggregate(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s buckets: %w", q.Shape, err)
	}
	for i := range buckets {
		if err := checkBucket(q.Shape, buckets[i]); err != nil {
			return nil, err
		}
		buckets[i].Key = q.Shape.project(buckets[i].Key)
	}
	return buckets, nil
}

// CategoryBuckets groups matching expenses by category and q.Shape. Expenses
// whose category no longer exists are not reported.
func (e *Engine) CategoryBuckets(ctx context.Context, q Query) ([]CategoryBucket, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	buckets, err := e.store.AggregateByCategory(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s buckets by category: %w", q.Shape, err)
	}
	for i := range buckets {
		if err := checkBucket(q.Shape, buckets[i].Bucket); err != nil {
			return nil, err
		}
		buckets[i].Key = q.Shape.project(buckets[i].Key)
	}
	return buckets, nil
}

func validateQuery(q Query) error {
	if q.OwnerID == "" {
		return apperror.Computation(errors.New("query without owner"))
	}
	if !q.Shape.Valid() {
		return apperror.Computation(fmt.Errorf("unknown grouping shape %d", int(q.Shape)))
	}
	if q.MinAmount != nil && q.MaxAmount != nil && q.MinAmount.GreaterThan(*q.MaxAmount) {
		return apperror.ValidationError("minAmount", "must not exceed maxAmount")
	}
	return nil
}

func checkBucket(s Shape, b Bucket) error {
	if b.Count < 1 {
		return apperror.Computation(fmt.Errorf("empty %s bucket %+v", s, b.Key))
	}
	if err := s.check(b.Key); err != nil {
		return apperror.Computation(err)
	}
	return nil
}
