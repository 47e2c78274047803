package searchcount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"movieflix/internal/domain/movie"
	"movieflix/internal/domain/repository"
	domain "movieflix/internal/domain/searchcount"
	"movieflix/internal/platform/metrics"
)

// DefaultRecordTimeout bounds a single store call made by RecordSearch.
const DefaultRecordTimeout = 3 * time.Second

// ErrTrendingUnavailable is returned when the counter store cannot produce the ranked view.
var ErrTrendingUnavailable = errors.New("trending searches unavailable")

// TrendingCache caches the ranked view.
type TrendingCache interface {
	Get(ctx context.Context) ([]domain.Record, bool, error)
	Set(ctx context.Context, records []domain.Record) error
	Invalidate(ctx context.Context) error
}

// Config tunes the service.
type Config struct {
	ImageBaseURL  string
	RecordTimeout time.Duration
}

// Service records searches and serves the trending list.
type Service struct {
	repo          repository.SearchCountRepository
	cache         TrendingCache
	metrics       *metrics.SearchCountMetrics
	logger        *slog.Logger
	imageBaseURL  string
	recordTimeout time.Duration
}

// NewService builds a search count service. cache, m and logger may be nil.
func NewService(repo repository.SearchCountRepository, cache TrendingCache, m *metrics.SearchCountMetrics, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = movie.DefaultImageBaseURL
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = DefaultRecordTimeout
	}
	return &Service{
		repo:          repo,
		cache:         cache,
		metrics:       m,
		logger:        logger,
		imageBaseURL:  cfg.ImageBaseURL,
		recordTimeout: cfg.RecordTimeout,
	}
}

// RecordSearch counts one search for phrase, seeding a new record from top.
// Store failures are logged and swallowed.
func (s *Service) RecordSearch(ctx context.Context, phrase string, top movie.Movie) {
	seed, err := domain.NewSeed(phrase, top, s.imageBaseURL)
	if err != nil {
		s.logger.Debug("skip search record", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.recordTimeout)
	defer cancel()

	rec, err := s.repo.Increment(ctx, seed)
	if errors.Is(err, domain.ErrConcurrentWrite) {
		s.metrics.ObserveRecordConflict()
		s.logger.Warn("search record lost to concurrent write",
			"search_term", seed.SearchTerm,
			"movie_id", seed.MovieID,
			"error", err,
		)
		return
	}
	s.metrics.ObserveRecord(err)
	if err != nil {
		s.logger.Warn("failed to record search",
			"search_term", seed.SearchTerm,
			"movie_id", seed.MovieID,
			"error", err,
		)
		return
	}
	s.logger.Debug("search recorded", "search_term", rec.SearchTerm, "count", rec.Count)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Debug("failed to invalidate trending cache", "error", err)
		}
	}
}

// TopSearches returns up to limit records ordered by count.
func (s *Service) TopSearches(ctx context.Context, limit int) ([]domain.Record, error) {
	records, _, err := s.TopSearchesWithCacheStatus(ctx, limit)
	return records, err
}

// TopSearchesWithCacheStatus returns the ranked view and whether it came from cache.
// On store failure the slice is empty and non-nil and the error wraps ErrTrendingUnavailable.
func (s *Service) TopSearchesWithCacheStatus(ctx context.Context, limit int) ([]domain.Record, bool, error) {
	limit = domain.NormalizeLimit(limit)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Debug("failed to get trending cache", "error", err)
		} else if ok {
			s.metrics.ObserveTrending(true, nil)
			return copyHead(cached, limit), true, nil
		}
	}

	fetch := limit
	if s.cache != nil {
		fetch = domain.MaxTopLimit
	}
	records, err := s.repo.Top(ctx, fetch)
	s.metrics.ObserveTrending(false, err)
	if err != nil {
		s.logger.Warn("failed to load trending searches", "error", err)
		return []domain.Record{}, false, fmt.Errorf("%w: %w", ErrTrendingUnavailable, err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	domain.SortByCount(records)

	if s.cache != nil {
		if err := s.cache.Set(ctx, records); err != nil {
			s.logger.Debug("failed to set trending cache", "error", err)
		}
	}
	return copyHead(records, limit), false, nil
}

func copyHead(records []domain.Record, limit int) []domain.Record {
	head := domain.Head(records, limit)
	out := make([]domain.Record, len(head))
	copy(out, head)
	return out
}
