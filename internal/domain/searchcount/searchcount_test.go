package searchcount

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflix/internal/domain/movie"
)

func TestNormalizeTerm(t *testing.T) {
	norm, err := NormalizeTerm("  Batman  ")
	require.NoError(t, err)
	assert.Equal(t, "Batman", norm)

	_, err = NormalizeTerm("   ")
	require.ErrorIs(t, err, ErrInvalidTerm)

	_, err = NormalizeTerm(strings.Repeat("a", MaxTermLength+1))
	require.ErrorIs(t, err, ErrInvalidTerm)
}

func TestNewSeed(t *testing.T) {
	seed, err := NewSeed(" batman ", movie.Movie{ID: 42, PosterPath: "/a.jpg"}, movie.DefaultImageBaseURL)
	require.NoError(t, err)
	assert.Equal(t, "batman", seed.SearchTerm)
	assert.Equal(t, movie.ID(42), seed.MovieID)
	assert.True(t, strings.HasSuffix(seed.PosterURL, "/a.jpg"))

	seed, err = NewSeed("batman", movie.Movie{ID: 7}, movie.DefaultImageBaseURL)
	require.NoError(t, err)
	assert.Equal(t, movie.PlaceholderPosterURL, seed.PosterURL)

	_, err = NewSeed("batman", movie.Movie{}, movie.DefaultImageBaseURL)
	require.ErrorIs(t, err, ErrInvalidSeed)

	_, err = NewSeed("", movie.Movie{ID: 1}, movie.DefaultImageBaseURL)
	require.ErrorIs(t, err, ErrInvalidTerm)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultTopLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultTopLimit, NormalizeLimit(-3))
	assert.Equal(t, 2, NormalizeLimit(2))
	assert.Equal(t, MaxTopLimit, NormalizeLimit(MaxTopLimit+10))
}

func TestSortByCountAndHead(t *testing.T) {
	now := time.Now()
	records := []Record{
		{SearchTerm: "c", Count: 1, UpdatedAt: now},
		{SearchTerm: "a", Count: 5, UpdatedAt: now},
		{SearchTerm: "b", Count: 3, UpdatedAt: now.Add(-time.Minute)},
		{SearchTerm: "d", Count: 3, UpdatedAt: now},
	}
	SortByCount(records)

	terms := make([]string, 0, len(records))
	for _, r := range records {
		terms = append(terms, r.SearchTerm)
	}
	assert.Equal(t, []string{"a", "d", "b", "c"}, terms)
	assert.Len(t, Head(records, 2), 2)
	assert.Len(t, Head(records, 10), 4)
	assert.Len(t, Head(records, 0), 4)
}
