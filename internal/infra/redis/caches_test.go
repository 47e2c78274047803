package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
	"movieflix/internal/platform/cache"
)

type fakeBytesClient struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func newFakeBytesClient() *fakeBytesClient {
	return &fakeBytesClient{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeBytesClient) GetBytes(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeBytesClient) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeBytesClient) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func TestTrendingCache_RoundTripAndInvalidate(t *testing.T) {
	client := newFakeBytesClient()
	c := NewTrendingCache(client, 0)
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	records := []searchcount.Record{
		{ID: "1", SearchTerm: "batman", Count: 5, MovieID: 42, PosterURL: "https://img/a.jpg"},
		{ID: "2", SearchTerm: "dune", Count: 3, MovieID: 7},
	}
	require.NoError(t, c.Set(ctx, records))
	assert.Equal(t, defaultTrendingTTL, client.ttls[trendingKey])

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records, got)

	require.NoError(t, c.Invalidate(ctx))
	assert.Equal(t, []string{trendingKey}, client.deleted)
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMovieSearchCache_KeysPerQuery(t *testing.T) {
	client := newFakeBytesClient()
	c := NewMovieSearchCache(client, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "batman", []movie.Movie{{ID: 42, Title: "Batman"}}))

	got, ok, err := c.Get(ctx, "batman")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Batman", got[0].Title)

	_, ok, err = c.Get(ctx, "Batman")
	require.NoError(t, err)
	assert.False(t, ok)

	key := c.key("batman")
	assert.Contains(t, key, KeyPrefix+"movies:search:")
	assert.Equal(t, 5*time.Minute, client.ttls[key])
}

func TestPopularMoviesCache_Errors(t *testing.T) {
	client := newFakeBytesClient()
	c := NewPopularMoviesCache(client, 0)
	ctx := context.Background()

	client.data[popularKey] = []byte("not snappy")
	_, _, err := c.Get(ctx)
	require.Error(t, err)

	client.data[popularKey] = snappy.Encode(nil, []byte("{"))
	_, _, err = c.Get(ctx)
	require.Error(t, err)

	client.getErr = errors.New("connection refused")
	_, ok, err := c.Get(ctx)
	require.Error(t, err)
	assert.False(t, ok)
}
