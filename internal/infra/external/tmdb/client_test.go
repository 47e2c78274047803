package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflix/internal/domain/movie"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		APIKey:     "token",
		UserAgent:  "agent",
	})
}

func TestSearchMovies(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/search/movie", r.URL.Path)
		require.Equal(t, "the dark knight", r.URL.Query().Get("query"))
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "agent", r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 155, "title": "The Dark Knight", "poster_path": "/qJ2tW6WMUDux911r6m7haRef0WH.jpg",
				 "vote_average": 8.5, "original_language": "en", "release_date": "2008-07-16", "overview": "Batman raises the stakes."},
				{"id": 999, "title": "No Poster", "poster_path": null, "vote_average": 0, "original_language": "", "release_date": ""}
			],
			"total_results": 2,
			"total_pages": 1
		}`))
	})

	movies, err := client.SearchMovies(context.Background(), "the dark knight")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, movie.Movie{
		ID:               155,
		Title:            "The Dark Knight",
		PosterPath:       "/qJ2tW6WMUDux911r6m7haRef0WH.jpg",
		VoteAverage:      8.5,
		OriginalLanguage: "en",
		ReleaseDate:      "2008-07-16",
		Overview:         "Batman raises the stakes.",
	}, movies[0])
	assert.Equal(t, "", movies[1].PosterPath)
	assert.Equal(t, "N/A", movies[1].Year())
}

func TestDiscoverPopular(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/discover/movie", r.URL.Path)
		require.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"id": 1, "title": "Popular"}},
		})
	})

	movies, err := client.DiscoverPopular(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Popular", movies[0].Title)
}

func TestEmptyResultsIsNotAnError(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"results":[],"total_results":0}`))
	})

	movies, err := client.SearchMovies(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestErrorShapedPayload(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "response false with message", body: `{"Response":"False","Error":"Movie not found!"}`, want: "Movie not found!"},
		{name: "response false without message", body: `{"Response":"False"}`, want: defaultErrorMessage},
		{name: "success false", body: `{"success":false,"status_code":7,"status_message":"Invalid API key"}`, want: "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			movies, err := client.SearchMovies(context.Background(), "x")
			require.Error(t, err)
			assert.Nil(t, movies)

			var catalogErr *movie.CatalogError
			require.True(t, errors.As(err, &catalogErr))
			assert.Equal(t, tt.want, catalogErr.Message)
		})
	}
}

func TestStatusError(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status_code":25,"status_message":"Your request count is over the allowed limit."}`))
	})

	_, err := client.DiscoverPopular(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Message, "over the allowed limit")

	wait, ok := IsTooManyRequests(err)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, wait)
}

func TestStatusErrorUnauthorized(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SearchMovies(context.Background(), "x")
	require.Error(t, err)
	_, ok := IsTooManyRequests(err)
	assert.False(t, ok)
	assert.Equal(t, "tmdb: request failed: status 401", err.Error())
}

func TestRequiresAPIKey(t *testing.T) {
	client := NewClient(ClientConfig{})
	_, err := client.SearchMovies(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}

func TestDoesNotRetry(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SearchMovies(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		APIKey:     "token",
		RateLimit:  0.001,
		RateBurst:  1,
	})

	_, err := client.DiscoverPopular(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.DiscoverPopular(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestRetryAfterDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfterDuration(""))
	assert.Equal(t, 10*time.Second, retryAfterDuration("10"))
	assert.Equal(t, time.Duration(0), retryAfterDuration("garbage"))
}
