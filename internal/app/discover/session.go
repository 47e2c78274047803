// Package discover drives the movie discovery screen: a debounced search box,
// the trending list and the catalog results.
package discover

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
	movieuc "movieflix/internal/usecase/movie"
)

const (
	// DefaultDebounce is the quiet period before a typed query is sent.
	DefaultDebounce = time.Second

	MessageFetchFailed    = "Failed to fetch movies. Please try again later."
	MessageTrendingFailed = "Failed to load trending movies. Please try again later."
)

// MovieFinder looks up movies. A blank query returns the popular list.
type MovieFinder interface {
	Find(ctx context.Context, query string) (movieuc.Result, error)
}

// TrendingSource serves the ranked search view.
type TrendingSource interface {
	TopSearches(ctx context.Context, limit int) ([]searchcount.Record, error)
}

// Snapshot is an immutable copy of the screen state.
type Snapshot struct {
	Query      string
	Generation uint64
	Movies     Section[[]movie.Movie]
	Trending   Section[[]searchcount.Record]
}

func (s Snapshot) clone() Snapshot {
	s.Movies.Data = slices.Clone(s.Movies.Data)
	s.Trending.Data = slices.Clone(s.Trending.Data)
	return s
}

// Config tunes a Session.
type Config struct {
	Debounce      time.Duration
	TrendingLimit int
}

// Session owns the screen state. Subscribers receive a Snapshot after every change,
// in order, and must not call Input, Start or RefreshTrending from the callback.
type Session struct {
	finder   MovieFinder
	trending TrendingSource
	logger   *slog.Logger
	limit    int

	debouncer *Debouncer

	publishMu sync.Mutex
	mu        sync.Mutex
	state     Snapshot
	subs      map[int]func(Snapshot)
	nextSub   int
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	inflight  int
	wg        sync.WaitGroup
}

// NewSession creates an idle session.
func NewSession(finder MovieFinder, trending TrendingSource, logger *slog.Logger, cfg Config) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	s := &Session{
		finder:   finder,
		trending: trending,
		logger:   logger,
		limit:    searchcount.NormalizeLimit(cfg.TrendingLimit),
		subs:     make(map[int]func(Snapshot)),
		ctx:      context.Background(),
		cancel:   func() {},
	}
	s.debouncer = NewDebouncer(cfg.Debounce, s.search)
	return s
}

// Subscribe registers fn and returns a function that removes it.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Start loads the trending list and the popular movies. Loads run until ctx is
// cancelled or Close is called.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.RefreshTrending()
	s.search("")
}

// Input records the text typed so far and schedules a debounced search.
func (s *Session) Input(text string) {
	s.publish(func(st *Snapshot) bool {
		if st.Query == text {
			return false
		}
		st.Query = text
		return true
	})
	s.debouncer.Trigger(text)
}

// RefreshTrending reloads the trending list.
func (s *Session) RefreshTrending() {
	if s.trending == nil {
		return
	}
	ctx, ok := s.begin()
	if !ok {
		return
	}
	s.publish(func(st *Snapshot) bool {
		st.Trending = st.Trending.Loading()
		return true
	})
	go func() {
		defer s.done()
		records, err := s.trending.TopSearches(ctx, s.limit)
		if ctx.Err() != nil {
			return
		}
		s.publish(func(st *Snapshot) bool {
			if err != nil {
				s.logger.Warn("failed to load trending searches", "error", err)
				st.Trending = Failed[[]searchcount.Record](MessageTrendingFailed)
				return true
			}
			st.Trending = Loaded(records)
			return true
		})
	}()
}

// Close cancels pending and in-flight loads and waits for them to finish.
func (s *Session) Close() {
	s.debouncer.Stop()
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()
	cancel()
	s.wg.Wait()
}

func (s *Session) search(query string) {
	ctx, ok := s.begin()
	if !ok {
		return
	}
	var gen uint64
	s.publish(func(st *Snapshot) bool {
		st.Generation++
		gen = st.Generation
		st.Movies = st.Movies.Loading()
		return true
	})
	go func() {
		defer s.done()
		result, err := s.finder.Find(ctx, query)
		if ctx.Err() != nil {
			return
		}
		s.publish(func(st *Snapshot) bool {
			if gen != st.Generation {
				s.logger.Debug("discard stale movie response", "query", query, "generation", gen, "current", st.Generation)
				return false
			}
			if err != nil {
				s.logger.Warn("failed to fetch movies", "query", query, "error", err)
				st.Movies = Failed[[]movie.Movie](failureMessage(err))
				return true
			}
			st.Movies = Loaded(result.Movies)
			return true
		})
	}()
}

// begin registers an in-flight load. It reports false once the session is closed.
func (s *Session) begin() (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	s.wg.Add(1)
	s.inflight++
	return s.ctx, true
}

func (s *Session) done() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.wg.Done()
}

// Busy reports whether a debounced search is pending or a load is in flight.
func (s *Session) Busy() bool {
	if s.debouncer.Pending() {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *Session) publish(mutate func(*Snapshot) bool) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	changed := mutate(&s.state)
	snap := s.state.clone()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(snap)
	}
}

func failureMessage(err error) string {
	var ce *movie.CatalogError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return MessageFetchFailed
}
