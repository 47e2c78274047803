package repository

import (
	"context"

	"movieflix/internal/domain/searchcount"
)

// SearchCountRepository stores per-phrase search counters.
//
// Increment must behave as a single "increment if exists, else create" step:
// an existing record only gets its count bumped, a new record starts at 1 with
// the seed's poster and movie.
type SearchCountRepository interface {
	Increment(ctx context.Context, seed searchcount.Seed) (*searchcount.Record, error)
	Top(ctx context.Context, limit int) ([]searchcount.Record, error)
	GetByTerm(ctx context.Context, term string) (*searchcount.Record, error)
}
