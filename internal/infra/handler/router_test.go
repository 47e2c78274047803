package handler

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"movieflix/api"
	domainMovie "movieflix/internal/domain/movie"
	"movieflix/internal/platform/metrics"
)

func TestRouter_EndToEndSearchTrendingAndHealth(t *testing.T) {
	counts, _ := newTestSearchCountService()
	catalog := &mockCatalog{
		searchFunc: func(ctx context.Context, query string) ([]domainMovie.Movie, error) {
			return []domainMovie.Movie{newTestMovie(42, "Dune")}, nil
		},
	}
	httpMetrics := metrics.NewHTTPMetrics()

	router := NewRouter(RouterConfig{
		MovieHandler:    NewMovieHandler(newTestMovieService(catalog, counts), testImageBaseURL),
		TrendingHandler: NewTrendingHandler(counts, 5),
		HealthHandler: &HealthHandler{
			DB:    &mockHealthChecker{},
			Cache: &mockHealthChecker{},
		},
		OpenAPIHandler:    NewOpenAPIHandler(api.Spec),
		APIBasePath:       "api/v1/",
		Middlewares:       []func(http.Handler) http.Handler{httpMetrics.Middleware},
		PrometheusHandler: httpMetrics.Handler(),
	})

	server := &testServer{Server: newHTTPTestServer(router), router: router}
	defer server.Close()

	resp := server.get(t, "/api/v1/movies?query=dune")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = server.get(t, "/api/v1/trending")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trending trendingResponse
	decodeJSON(t, resp, &trending)
	require.Len(t, trending.Items, 1)
	require.Equal(t, "dune", trending.Items[0].SearchTerm)

	resp = server.get(t, "/api/v1/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = server.get(t, "/api/v1/openapi.yaml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	spec, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(spec), "openapi: 3.0.3")

	resp = server.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(text), `route="/api/v1/movies"`)

	resp = server.get(t, "/movies")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_AddsRequestID(t *testing.T) {
	var seen string
	router := NewRouter(RouterConfig{
		Middlewares: []func(http.Handler) http.Handler{
			nil,
			func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seen = requestIDFrom(r)
					next.ServeHTTP(w, r)
				})
			},
		},
		HealthHandler: &HealthHandler{},
	})
	server := newHTTPTestServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, seen)
}
