package searchcount

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"movieflix/internal/domain/movie"
)

const (
	// DefaultTopLimit is the size of the trending list shown to users.
	DefaultTopLimit = 5
	// MaxTopLimit caps a single trending query.
	MaxTopLimit = 50
	// MaxTermLength bounds stored search phrases.
	MaxTermLength = 500
)

var (
	// ErrInvalidTerm signals an empty or oversized search phrase.
	ErrInvalidTerm = errors.New("invalid search term")
	// ErrInvalidSeed signals a top result without an identifier.
	ErrInvalidSeed = errors.New("invalid search seed")
	// ErrNotFound is returned when no record exists for a phrase.
	ErrNotFound = errors.New("search record not found")
	// ErrConcurrentWrite is returned by stores without an atomic increment when a
	// concurrent request created the record first. The increment is lost.
	ErrConcurrentWrite = errors.New("search record written concurrently")
)

// Record is the persisted counter for one distinct search phrase.
// PosterURL and MovieID are captured when the record is created and never change.
type Record struct {
	ID         string
	SearchTerm string
	Count      int64
	PosterURL  string
	MovieID    movie.ID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Seed carries the values used when a phrase is seen for the first time.
type Seed struct {
	SearchTerm string
	PosterURL  string
	MovieID    movie.ID
}

// NormalizeTerm trims the phrase. Case is preserved.
func NormalizeTerm(term string) (string, error) {
	norm := strings.TrimSpace(term)
	if norm == "" {
		return "", fmt.Errorf("%w: search term is required", ErrInvalidTerm)
	}
	if len(norm) > MaxTermLength {
		return "", fmt.Errorf("%w: search term must be <= %d characters", ErrInvalidTerm, MaxTermLength)
	}
	return norm, nil
}

// NewSeed builds a Seed from a phrase and the first catalog result for it.
func NewSeed(term string, top movie.Movie, imageBaseURL string) (Seed, error) {
	norm, err := NormalizeTerm(term)
	if err != nil {
		return Seed{}, err
	}
	if top.ID == 0 {
		return Seed{}, fmt.Errorf("%w: movie id is required", ErrInvalidSeed)
	}
	return Seed{
		SearchTerm: norm,
		PosterURL:  movie.PosterURL(imageBaseURL, top.PosterPath),
		MovieID:    top.ID,
	}, nil
}

// NormalizeLimit applies the default and maximum trending limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	if limit > MaxTopLimit {
		return MaxTopLimit
	}
	return limit
}

// SortByCount orders records by count descending. Ties keep the most recently
// updated record first.
func SortByCount(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
}

// Head returns at most limit records.
func Head(records []Record, limit int) []Record {
	if limit <= 0 || limit >= len(records) {
		return records
	}
	return records[:limit]
}
