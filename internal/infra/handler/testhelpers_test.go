package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	domainMovie "movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
	"movieflix/internal/infra/memory"
	usecaseMovie "movieflix/internal/usecase/movie"
	usecaseSearchCount "movieflix/internal/usecase/searchcount"
)

const (
	testAPIBasePath  = "/api/v1"
	testImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// testServer wraps httptest.Server for integration testing.
type testServer struct {
	*httptest.Server
	router http.Handler
}

// newTestServer creates a test HTTP server with the given handlers.
func newTestServer(cfg RouterConfig) *testServer {
	if cfg.APIBasePath == "" {
		cfg.APIBasePath = testAPIBasePath
	}
	router := NewRouter(cfg)
	srv := httptest.NewServer(router)
	return &testServer{
		Server: srv,
		router: router,
	}
}

// apiPath prefixes route with the test base path.
func apiPath(route string) string {
	return testAPIBasePath + route
}

// get performs a GET request to the test server.
func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// post performs a JSON POST request to the test server.
func (ts *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// decodeJSON decodes response body as JSON.
func decodeJSON(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

// assertStatus checks HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

// assertContentType checks Content-Type header.
func assertContentType(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	got := resp.Header.Get("Content-Type")
	if got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

// assertErrorResponse validates error response structure.
func assertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int) map[string]string {
	t.Helper()
	assertStatus(t, resp, expectedStatus)
	assertContentType(t, resp, "application/json")

	var result map[string]string
	decodeJSON(t, resp, &result)
	if _, ok := result["error"]; !ok {
		t.Error("error response missing 'error' field")
	}
	return result
}

// mockHealthChecker is a mock implementation of health checker.
type mockHealthChecker struct {
	healthCheckFunc func(ctx context.Context) error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}

// mockCatalog is a mock implementation of the movie catalog.
type mockCatalog struct {
	searchFunc  func(ctx context.Context, query string) ([]domainMovie.Movie, error)
	popularFunc func(ctx context.Context) ([]domainMovie.Movie, error)
}

func (m *mockCatalog) SearchMovies(ctx context.Context, query string) ([]domainMovie.Movie, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return nil, nil
}

func (m *mockCatalog) DiscoverPopular(ctx context.Context) ([]domainMovie.Movie, error) {
	if m.popularFunc != nil {
		return m.popularFunc(ctx)
	}
	return nil, nil
}

// mockCounterRepository fails every call with err.
type mockCounterRepository struct {
	err error
}

func (m *mockCounterRepository) Increment(context.Context, searchcount.Seed) (*searchcount.Record, error) {
	return nil, m.err
}

func (m *mockCounterRepository) Top(context.Context, int) ([]searchcount.Record, error) {
	return nil, m.err
}

func (m *mockCounterRepository) GetByTerm(context.Context, string) (*searchcount.Record, error) {
	return nil, m.err
}

// Service builder helpers

// newTestSearchCountService creates a search count service over an in-memory store.
func newTestSearchCountService() (*usecaseSearchCount.Service, *memory.SearchCountRepository) {
	repo := memory.NewSearchCountRepository()
	return usecaseSearchCount.NewService(repo, nil, nil, nil, usecaseSearchCount.Config{ImageBaseURL: testImageBaseURL}), repo
}

// newTestMovieService creates a movie service that records into counts.
func newTestMovieService(catalog *mockCatalog, counts *usecaseSearchCount.Service) *usecaseMovie.Service {
	var recorder usecaseMovie.SearchRecorder
	if counts != nil {
		recorder = counts
	}
	return usecaseMovie.NewService(catalog, recorder, nil, nil, nil, nil)
}

// newTestMovie creates a test movie with sensible defaults.
func newTestMovie(id domainMovie.ID, title string) domainMovie.Movie {
	return domainMovie.Movie{
		ID:               id,
		Title:            title,
		PosterPath:       "/poster.jpg",
		VoteAverage:      7.5,
		OriginalLanguage: "en",
		ReleaseDate:      "2005-06-10",
		Overview:         "overview",
	}
}

func newHTTPTestServer(h http.Handler) *httptest.Server {
	return httptest.NewServer(h)
}

func requestIDFrom(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
