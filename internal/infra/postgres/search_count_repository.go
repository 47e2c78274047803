package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"movieflix/internal/domain/repository"
	"movieflix/internal/domain/searchcount"
	"movieflix/internal/pkg/timeutil"
)

var _ repository.SearchCountRepository = (*SearchCountRepository)(nil)

// SearchCountRepository stores search counters in the search_counts table.
type SearchCountRepository struct {
	pool  *pgxpool.Pool
	clock timeutil.Clock
}

// NewSearchCountRepository creates a new repository.
func NewSearchCountRepository(pool *pgxpool.Pool) *SearchCountRepository {
	return &SearchCountRepository{pool: pool, clock: timeutil.SystemClock}
}

const searchCountColumns = `id, search_term, count, poster_url, movie_id, created_at, updated_at`

// Increment atomically bumps the counter for the seed's term, creating it with count 1.
// Poster and movie id are only written on insert.
func (r *SearchCountRepository) Increment(ctx context.Context, seed searchcount.Seed) (*searchcount.Record, error) {
	if seed.SearchTerm == "" {
		return nil, searchcount.ErrInvalidTerm
	}
	now := r.clock()
	const stmt = `
INSERT INTO search_counts (id, search_term, count, poster_url, movie_id, created_at, updated_at)
VALUES ($1, $2, 1, $3, $4, $5, $5)
ON CONFLICT (search_term) DO UPDATE
SET count = search_counts.count + 1,
    updated_at = EXCLUDED.updated_at
RETURNING ` + searchCountColumns

	row := r.pool.QueryRow(ctx, stmt, uuid.New(), seed.SearchTerm, seed.PosterURL, seed.MovieID, now)
	rec, err := scanSearchCount(row)
	if err != nil {
		return nil, fmt.Errorf("increment search count: %w", err)
	}
	return rec, nil
}

// Top returns up to limit records ordered by count descending.
func (r *SearchCountRepository) Top(ctx context.Context, limit int) ([]searchcount.Record, error) {
	if limit <= 0 {
		return []searchcount.Record{}, nil
	}
	query := `SELECT ` + searchCountColumns + `
FROM search_counts
ORDER BY count DESC, updated_at DESC
LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top search counts: %w", err)
	}
	defer rows.Close()

	records := make([]searchcount.Record, 0, limit)
	for rows.Next() {
		rec, err := scanSearchCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search count: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search counts: %w", err)
	}
	return records, nil
}

// GetByTerm returns the record for term or searchcount.ErrNotFound.
func (r *SearchCountRepository) GetByTerm(ctx context.Context, term string) (*searchcount.Record, error) {
	query := `SELECT ` + searchCountColumns + ` FROM search_counts WHERE search_term = $1`
	rec, err := scanSearchCount(r.pool.QueryRow(ctx, query, term))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, searchcount.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search count: %w", err)
	}
	return rec, nil
}

func scanSearchCount(row pgx.Row) (*searchcount.Record, error) {
	var (
		rec searchcount.Record
		id  uuid.UUID
	)
	if err := row.Scan(&id, &rec.SearchTerm, &rec.Count, &rec.PosterURL, &rec.MovieID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.ID = id.String()
	return &rec, nil
}
