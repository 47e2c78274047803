package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainMovie "movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
	"movieflix/internal/platform/metrics"
)

const (
	kindSearch  = "search"
	kindPopular = "popular"
)

var (
	// ErrInvalidQuery is returned for queries longer than searchcount.MaxTermLength.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrCatalogUnavailable wraps every catalog failure.
	ErrCatalogUnavailable = errors.New("movie catalog unavailable")
)

// Catalog is the external movie source.
type Catalog interface {
	SearchMovies(ctx context.Context, query string) ([]domainMovie.Movie, error)
	DiscoverPopular(ctx context.Context) ([]domainMovie.Movie, error)
}

// SearchRecorder counts searches that produced results.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, phrase string, top domainMovie.Movie)
}

// PopularCache caches the popular list.
type PopularCache interface {
	Get(ctx context.Context) ([]domainMovie.Movie, bool, error)
	Set(ctx context.Context, movies []domainMovie.Movie) error
}

// SearchCache caches search results per query.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]domainMovie.Movie, bool, error)
	Set(ctx context.Context, query string, movies []domainMovie.Movie) error
}

// Result is the outcome of Find. Query is empty for the popular list.
type Result struct {
	Query  string
	Movies []domainMovie.Movie
}

// Service looks up movies and records successful searches.
type Service struct {
	catalog  Catalog
	recorder SearchRecorder
	popular  PopularCache
	search   SearchCache
	metrics  *metrics.SearchCountMetrics
	logger   *slog.Logger
}

// NewService builds a movie service. Everything except catalog may be nil.
func NewService(catalog Catalog, recorder SearchRecorder, popular PopularCache, search SearchCache, m *metrics.SearchCountMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		catalog:  catalog,
		recorder: recorder,
		popular:  popular,
		search:   search,
		metrics:  m,
		logger:   logger,
	}
}

// Find searches for query, or returns the popular list when query is blank.
func (s *Service) Find(ctx context.Context, query string) (Result, error) {
	result, _, err := s.FindWithCacheStatus(ctx, query)
	return result, err
}

// FindWithCacheStatus is Find plus cache hit info.
func (s *Service) FindWithCacheStatus(ctx context.Context, query string) (Result, bool, error) {
	norm := strings.TrimSpace(query)
	if norm == "" {
		movies, cached, err := s.PopularWithCacheStatus(ctx)
		return Result{Movies: movies}, cached, err
	}
	if len(norm) > searchcount.MaxTermLength {
		return Result{}, false, fmt.Errorf("%w: query must be <= %d characters", ErrInvalidQuery, searchcount.MaxTermLength)
	}

	if s.search != nil {
		movies, ok, err := s.search.Get(ctx, norm)
		if err != nil {
			s.logger.Debug("failed to get search cache", "error", err)
		} else if ok {
			s.metrics.ObserveCatalog(kindSearch, true, nil)
			s.record(ctx, norm, movies)
			return Result{Query: norm, Movies: nonNil(movies)}, true, nil
		}
	}

	movies, err := s.catalog.SearchMovies(ctx, norm)
	s.metrics.ObserveCatalog(kindSearch, false, err)
	if err != nil {
		return Result{}, false, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	movies = nonNil(movies)

	s.record(ctx, norm, movies)

	if s.search != nil {
		if err := s.search.Set(ctx, norm, movies); err != nil {
			s.logger.Debug("failed to set search cache", "error", err)
		}
	}
	return Result{Query: norm, Movies: movies}, false, nil
}

// Popular returns the default discover listing.
func (s *Service) Popular(ctx context.Context) ([]domainMovie.Movie, error) {
	movies, _, err := s.PopularWithCacheStatus(ctx)
	return movies, err
}

// PopularWithCacheStatus is Popular plus cache hit info.
func (s *Service) PopularWithCacheStatus(ctx context.Context) ([]domainMovie.Movie, bool, error) {
	if s.popular != nil {
		movies, ok, err := s.popular.Get(ctx)
		if err != nil {
			s.logger.Debug("failed to get popular cache", "error", err)
		} else if ok {
			s.metrics.ObserveCatalog(kindPopular, true, nil)
			return nonNil(movies), true, nil
		}
	}

	movies, err := s.catalog.DiscoverPopular(ctx)
	s.metrics.ObserveCatalog(kindPopular, false, err)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	movies = nonNil(movies)

	if s.popular != nil {
		if err := s.popular.Set(ctx, movies); err != nil {
			s.logger.Debug("failed to set popular cache", "error", err)
		}
	}
	return movies, false, nil
}

func (s *Service) record(ctx context.Context, query string, movies []domainMovie.Movie) {
	if s.recorder == nil || len(movies) == 0 {
		return
	}
	s.recorder.RecordSearch(ctx, query, movies[0])
}

func nonNil(movies []domainMovie.Movie) []domainMovie.Movie {
	if movies == nil {
		return []domainMovie.Movie{}
	}
	return movies
}
