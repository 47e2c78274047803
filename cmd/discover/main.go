package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"movieflix/internal/app/discover"
	"movieflix/internal/infra/counterstore"
	"movieflix/internal/infra/external/tmdb"
	"movieflix/internal/platform/config"
	"movieflix/internal/platform/logger"
	usecaseMovie "movieflix/internal/usecase/movie"
	usecaseSearchCount "movieflix/internal/usecase/searchcount"
)

const (
	cmdTrending = ":trending"
	cmdQuit     = ":quit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		slog.Error("discover failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  logger.Level(cfg.App.LogLevel),
		Format: logger.Format(cfg.App.LogFormat),
		Output: os.Stderr,
	})
	logger.SetDefault(log)

	backend, err := counterstore.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	counts := usecaseSearchCount.NewService(backend.Repository, nil, nil, log.With("counter_store", backend.Name), usecaseSearchCount.Config{
		ImageBaseURL:  cfg.External.TMDBImageBaseURL,
		RecordTimeout: cfg.App.RecordTimeout,
	})
	catalog := tmdb.NewClient(tmdb.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.External.TMDBTimeout},
		BaseURL:    cfg.External.TMDBBaseURL,
		APIKey:     cfg.External.TMDBAPIKey,
		RateLimit:  cfg.External.TMDBRateLimit,
		RateBurst:  cfg.External.TMDBRateBurst,
	})
	movies := usecaseMovie.NewService(catalog, counts, nil, nil, nil, log)

	session := discover.NewSession(movies, counts, log, discover.Config{
		Debounce:      cfg.App.DebounceInterval,
		TrendingLimit: cfg.App.TrendingLimit,
	})
	return drive(ctx, session, stdin, stdout, cfg.App.DebounceInterval+cfg.External.TMDBTimeout)
}

// drive feeds stdin lines to the session and renders every snapshot to stdout.
// Each line is the full content of the search box.
func drive(ctx context.Context, session *discover.Session, stdin io.Reader, stdout io.Writer, settle time.Duration) error {
	var mu sync.Mutex
	var renderErr error
	unsubscribe := session.Subscribe(func(snap discover.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if renderErr != nil {
			return
		}
		if _, err := fmt.Fprintln(stdout, strings.Repeat("-", 40)); err != nil {
			renderErr = err
			return
		}
		renderErr = discover.Render(stdout, snap)
	})
	defer unsubscribe()

	session.Start(ctx)
	defer session.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				waitSettled(ctx, session, settle)
				mu.Lock()
				defer mu.Unlock()
				return renderErr
			}
			switch strings.TrimSpace(line) {
			case cmdQuit:
				return nil
			case cmdTrending:
				session.RefreshTrending()
			default:
				session.Input(line)
			}
		}
	}
}

// waitSettled gives the last debounced query time to fire and finish.
func waitSettled(ctx context.Context, session *discover.Session, timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for session.Busy() {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
		}
	}
}
