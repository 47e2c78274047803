package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainMovie "movieflix/internal/domain/movie"
	"movieflix/internal/infra/external/tmdb"
)

func TestMovieHandler_Search(t *testing.T) {
	catalog := &mockCatalog{
		searchFunc: func(ctx context.Context, query string) ([]domainMovie.Movie, error) {
			return []domainMovie.Movie{newTestMovie(42, "Batman Begins"), {ID: 43, Title: "Batman"}}, nil
		},
	}
	counts, repo := newTestSearchCountService()
	ts := newTestServer(RouterConfig{
		MovieHandler: NewMovieHandler(newTestMovieService(catalog, counts), testImageBaseURL),
	})
	defer ts.Close()

	resp := ts.get(t, apiPath("/movies?query="+url.QueryEscape(" batman ")))
	assertStatus(t, resp, http.StatusOK)
	assertContentType(t, resp, "application/json")
	assert.Equal(t, cacheStatusMiss, resp.Header.Get(cacheStatusHeader))
	assert.Equal(t, "public, max-age=60", resp.Header.Get(cacheControlHeader))

	var body movieListResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, "batman", body.Query)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Results, 2)
	assert.Equal(t, testImageBaseURL+"/poster.jpg", body.Results[0].PosterURL)
	assert.Equal(t, "7.5", body.Results[0].Rating)
	assert.Equal(t, "2005", body.Results[0].Year)
	assert.Equal(t, domainMovie.PlaceholderPosterURL, body.Results[1].PosterURL)
	assert.Equal(t, "N/A", body.Results[1].Rating)

	rec, err := repo.GetByTerm(context.Background(), "batman")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Count)
	assert.Equal(t, domainMovie.ID(42), rec.MovieID)
}

func TestMovieHandler_BlankQueryListsPopular(t *testing.T) {
	var searched bool
	catalog := &mockCatalog{
		searchFunc: func(ctx context.Context, query string) ([]domainMovie.Movie, error) {
			searched = true
			return nil, nil
		},
		popularFunc: func(ctx context.Context) ([]domainMovie.Movie, error) {
			return []domainMovie.Movie{newTestMovie(1, "Popular")}, nil
		},
	}
	ts := newTestServer(RouterConfig{
		MovieHandler: NewMovieHandler(newTestMovieService(catalog, nil), testImageBaseURL),
	})
	defer ts.Close()

	for _, path := range []string{"/movies", "/movies?query=%20%20", "/movies/popular"} {
		resp := ts.get(t, apiPath(path))
		assertStatus(t, resp, http.StatusOK)
		assert.Equal(t, "public, max-age=300", resp.Header.Get(cacheControlHeader), path)

		var body movieListResponse
		decodeJSON(t, resp, &body)
		assert.Empty(t, body.Query, path)
		require.Len(t, body.Results, 1, path)
		assert.Equal(t, "Popular", body.Results[0].Title)
	}
	assert.False(t, searched)
}

func TestMovieHandler_Errors(t *testing.T) {
	catalog := &mockCatalog{
		searchFunc: func(ctx context.Context, query string) ([]domainMovie.Movie, error) {
			return nil, &domainMovie.CatalogError{Message: "Invalid API key"}
		},
		popularFunc: func(ctx context.Context) ([]domainMovie.Movie, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	ts := newTestServer(RouterConfig{
		MovieHandler: NewMovieHandler(newTestMovieService(catalog, nil), testImageBaseURL),
	})
	defer ts.Close()

	body := assertErrorResponse(t, ts.get(t, apiPath("/movies?query=batman")), http.StatusBadGateway)
	assert.Equal(t, "movie catalog unavailable", body["error"])

	assertErrorResponse(t, ts.get(t, apiPath("/movies/popular")), http.StatusBadGateway)

	long := strings.Repeat("a", 501)
	body = assertErrorResponse(t, ts.get(t, apiPath("/movies?query="+long)), http.StatusBadRequest)
	assert.Contains(t, body["error"], "500")
}

func TestMovieHandler_CatalogThrottled(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantRetryAfter string
	}{
		{
			name:           "retry after rounded up",
			err:            &tmdb.StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: 1500 * time.Millisecond},
			wantStatus:     http.StatusServiceUnavailable,
			wantRetryAfter: "2",
		},
		{
			name:       "no retry after",
			err:        &tmdb.StatusError{StatusCode: http.StatusTooManyRequests},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "other status stays bad gateway",
			err:        &tmdb.StatusError{StatusCode: http.StatusUnauthorized},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &mockCatalog{
				searchFunc:  func(context.Context, string) ([]domainMovie.Movie, error) { return nil, tt.err },
				popularFunc: func(context.Context) ([]domainMovie.Movie, error) { return nil, tt.err },
			}
			ts := newTestServer(RouterConfig{
				MovieHandler: NewMovieHandler(newTestMovieService(catalog, nil), testImageBaseURL),
			})
			defer ts.Close()

			for _, path := range []string{"/movies?query=batman", "/movies/popular"} {
				resp := ts.get(t, apiPath(path))
				assert.Equal(t, tt.wantRetryAfter, resp.Header.Get("Retry-After"), path)
				assert.Empty(t, resp.Header.Get(cacheControlHeader), path)
				assertErrorResponse(t, resp, tt.wantStatus)
			}
		})
	}
}

func TestMovieHandler_NilService(t *testing.T) {
	ts := newTestServer(RouterConfig{MovieHandler: NewMovieHandler(nil, "")})
	defer ts.Close()

	assertErrorResponse(t, ts.get(t, apiPath("/movies")), http.StatusInternalServerError)
}
