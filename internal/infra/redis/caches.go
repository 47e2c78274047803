package redis

import (
	"context"
	"time"

	"movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
)

const (
	defaultTrendingTTL = 1 * time.Minute
	defaultPopularTTL  = 30 * time.Minute
	defaultSearchTTL   = 15 * time.Minute

	trendingKey = KeyPrefix + "trending"
	popularKey  = KeyPrefix + "movies:popular"
)

// TrendingCache caches the top searchcount.MaxTopLimit records under a single key.
// Callers slice the cached list to the requested limit.
type TrendingCache struct {
	cache *snappyJSONCache
}

func NewTrendingCache(client bytesCacheClient, ttl time.Duration) *TrendingCache {
	return &TrendingCache{cache: newSnappyJSONCache(client, ttlOrDefault(ttl, defaultTrendingTTL))}
}

func (c *TrendingCache) Get(ctx context.Context) ([]searchcount.Record, bool, error) {
	var out []searchcount.Record
	ok, err := c.cache.Get(ctx, trendingKey, &out)
	return out, ok, err
}

func (c *TrendingCache) Set(ctx context.Context, records []searchcount.Record) error {
	return c.cache.Set(ctx, trendingKey, records)
}

// Invalidate drops the cached list so the next read sees fresh counts.
func (c *TrendingCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, trendingKey)
}

// PopularMoviesCache caches the default discover listing.
type PopularMoviesCache struct {
	cache *snappyJSONCache
}

func NewPopularMoviesCache(client bytesCacheClient, ttl time.Duration) *PopularMoviesCache {
	return &PopularMoviesCache{cache: newSnappyJSONCache(client, ttlOrDefault(ttl, defaultPopularTTL))}
}

func (c *PopularMoviesCache) Get(ctx context.Context) ([]movie.Movie, bool, error) {
	var out []movie.Movie
	ok, err := c.cache.Get(ctx, popularKey, &out)
	return out, ok, err
}

func (c *PopularMoviesCache) Set(ctx context.Context, movies []movie.Movie) error {
	return c.cache.Set(ctx, popularKey, movies)
}

// MovieSearchCache caches catalog results per trimmed query.
type MovieSearchCache struct {
	cache *snappyJSONCache
}

func NewMovieSearchCache(client bytesCacheClient, ttl time.Duration) *MovieSearchCache {
	return &MovieSearchCache{cache: newSnappyJSONCache(client, ttlOrDefault(ttl, defaultSearchTTL))}
}

func (c *MovieSearchCache) key(query string) string {
	return KeyPrefix + "movies:search:" + sha256Hex(query)
}

func (c *MovieSearchCache) Get(ctx context.Context, query string) ([]movie.Movie, bool, error) {
	var out []movie.Movie
	ok, err := c.cache.Get(ctx, c.key(query), &out)
	return out, ok, err
}

func (c *MovieSearchCache) Set(ctx context.Context, query string, movies []movie.Movie) error {
	return c.cache.Set(ctx, c.key(query), movies)
}
