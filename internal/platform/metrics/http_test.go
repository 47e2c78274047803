package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *HTTPMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHTTPMetrics_MiddlewareAndHandler(t *testing.T) {
	m := NewHTTPMetrics()

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	srv := m.Middleware(base)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "http://example.com/searches", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	text := scrape(t, m)
	require.Contains(t, text, "movieflix_http_requests_total")
	require.Contains(t, text, `method="POST",route="/searches",status="202"`)
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	m := NewHTTPMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/movies/{kind}", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/movies/popular", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	text := scrape(t, m)
	require.Contains(t, text, `route="/movies/{kind}"`)
	require.NotContains(t, text, `route="/movies/popular"`)
}

func TestSearchCountMetrics(t *testing.T) {
	m := NewHTTPMetrics()
	sc := NewSearchCountMetrics(m.Registry())

	sc.ObserveRecord(nil)
	sc.ObserveRecord(errors.New("store down"))
	sc.ObserveRecordConflict()
	sc.ObserveTrending(true, nil)
	sc.ObserveCatalog("search", false, errors.New("tmdb down"))

	text := scrape(t, m)
	require.Contains(t, text, `movieflix_search_records_total{outcome="ok"} 1`)
	require.Contains(t, text, `movieflix_search_records_total{outcome="failed"} 1`)
	require.Contains(t, text, `movieflix_search_records_total{outcome="conflict"} 1`)
	require.Contains(t, text, `movieflix_trending_requests_total{outcome="cached"} 1`)
	require.Contains(t, text, `movieflix_catalog_requests_total{kind="search",outcome="failed"} 1`)
}

func TestSearchCountMetrics_NilSafe(t *testing.T) {
	var sc *SearchCountMetrics
	require.NotPanics(t, func() {
		sc.ObserveRecord(nil)
		sc.ObserveRecordConflict()
		sc.ObserveTrending(false, nil)
		sc.ObserveCatalog("popular", false, nil)
	})
}

func TestSearchCountMetrics_NilHTTPMetricsRegistry(t *testing.T) {
	var m *HTTPMetrics
	reg := m.Registry()
	require.Nil(t, reg)

	var sc *SearchCountMetrics
	require.NotPanics(t, func() { sc = NewSearchCountMetrics(reg) })
	require.NotPanics(t, func() {
		sc.ObserveRecord(nil)
		sc.ObserveTrending(false, nil)
	})
}
