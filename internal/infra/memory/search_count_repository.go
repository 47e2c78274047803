// Package memory provides a process-local search counter store for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"movieflix/internal/domain/repository"
	"movieflix/internal/domain/searchcount"
	"movieflix/internal/pkg/timeutil"
)

var _ repository.SearchCountRepository = (*SearchCountRepository)(nil)

// SearchCountRepository keeps counters in a map guarded by a mutex.
type SearchCountRepository struct {
	mu      sync.Mutex
	records map[string]*searchcount.Record
	clock   timeutil.Clock
}

// NewSearchCountRepository creates an empty store.
func NewSearchCountRepository() *SearchCountRepository {
	return NewSearchCountRepositoryWithClock(timeutil.SystemClock)
}

// NewSearchCountRepositoryWithClock creates an empty store that stamps records with clock.
func NewSearchCountRepositoryWithClock(clock timeutil.Clock) *SearchCountRepository {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	return &SearchCountRepository{
		records: make(map[string]*searchcount.Record),
		clock:   clock,
	}
}

// Increment bumps or creates the record for seed.SearchTerm.
func (r *SearchCountRepository) Increment(ctx context.Context, seed searchcount.Seed) (*searchcount.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seed.SearchTerm == "" {
		return nil, searchcount.ErrInvalidTerm
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	rec, ok := r.records[seed.SearchTerm]
	if !ok {
		rec = &searchcount.Record{
			ID:         uuid.NewString(),
			SearchTerm: seed.SearchTerm,
			PosterURL:  seed.PosterURL,
			MovieID:    seed.MovieID,
			CreatedAt:  now,
		}
		r.records[seed.SearchTerm] = rec
	}
	rec.Count++
	rec.UpdatedAt = now

	out := *rec
	return &out, nil
}

// Top returns copies of up to limit records ordered by count descending.
func (r *SearchCountRepository) Top(ctx context.Context, limit int) ([]searchcount.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []searchcount.Record{}, nil
	}

	r.mu.Lock()
	all := make([]searchcount.Record, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, *rec)
	}
	r.mu.Unlock()

	searchcount.SortByCount(all)
	return searchcount.Head(all, limit), nil
}

// GetByTerm returns a copy of the record for term or searchcount.ErrNotFound.
func (r *SearchCountRepository) GetByTerm(ctx context.Context, term string) (*searchcount.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[term]
	if !ok {
		return nil, searchcount.ErrNotFound
	}
	out := *rec
	return &out, nil
}
