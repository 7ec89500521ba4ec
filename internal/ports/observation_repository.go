package ports

import (
	"context"
	"errors"

	"riskwatch/internal/domain/observation"
)

var ErrObservationNotFound = errors.New("observation not found")

// SortKey selects the ordering of a listing. All orderings are deterministic;
// SortHighestRiskFirst breaks rating ties by insertion order.
type SortKey int

const (
	SortNewestFirst SortKey = iota
	SortOldestFirst
	SortHighestRiskFirst
)

// ObservationQuery filters and orders a listing. Search, when non-empty,
// matches case-insensitively as a substring against description, location,
// and floor (OR-combined).
type ObservationQuery struct {
	Search string
	Sort   SortKey
}

type ObservationRepository interface {
	// Create persists a new record and returns its assigned id. Ids are
	// assigned exactly once, monotonically per insertion order.
	Create(ctx context.Context, rec observation.Record) (int64, error)
	List(ctx context.Context, query ObservationQuery) ([]observation.Record, error)
	Get(ctx context.Context, id int64) (observation.Record, error)
	Delete(ctx context.Context, id int64) error
}
