package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"movieflix/internal/domain/searchcount"
	"movieflix/internal/infra/counterstore"
	infraRedis "movieflix/internal/infra/redis"
	"movieflix/internal/platform/cache"
	"movieflix/internal/platform/config"
	"movieflix/internal/platform/logger"
	"movieflix/internal/platform/telemetry"
	usecaseSearchCount "movieflix/internal/usecase/searchcount"
)

func main() {
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		slog.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 2 {
		printUsage()
		return fmt.Errorf("missing command")
	}
	switch args[1] {
	case "trending":
		return runTrending(ctx, args[2:], stdout)
	case "cache":
		return runCache(ctx, args[2:], stdout)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  admin trending list --limit 10 [--json]")
	fmt.Fprintln(os.Stderr, "  admin cache purge --pattern 'movieflix:*' [--dry-run] --yes")
}

func runTrending(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing trending subcommand")
	}
	switch args[0] {
	case "list":
		return runTrendingList(ctx, args[1:], stdout)
	default:
		printUsage()
		return fmt.Errorf("unknown trending subcommand: %s", args[0])
	}
}

func runCache(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing cache subcommand")
	}
	switch args[0] {
	case "purge":
		return runCachePurge(ctx, args[1:], stdout)
	default:
		printUsage()
		return fmt.Errorf("unknown cache subcommand: %s", args[0])
	}
}

func runTrendingList(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("trending list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", searchcount.DefaultTopLimit, "number of phrases to show (max 50)")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit < 1 || *limit > searchcount.MaxTopLimit {
		return fmt.Errorf("--limit must be between 1 and %d", searchcount.MaxTopLimit)
	}

	cfg, log, finish, err := setup("admin")
	if err != nil {
		return err
	}
	defer finish()

	backend, err := counterstore.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	svc := usecaseSearchCount.NewService(backend.Repository, nil, nil, log, usecaseSearchCount.Config{
		ImageBaseURL:  cfg.External.TMDBImageBaseURL,
		RecordTimeout: cfg.App.RecordTimeout,
	})
	records, err := svc.TopSearches(ctx, *limit)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(toTrendingRows(records))
	}
	return writeTrendingTable(stdout, records)
}

type trendingRow struct {
	Rank       int    `json:"rank"`
	SearchTerm string `json:"search_term"`
	Count      int64  `json:"count"`
	MovieID    int64  `json:"movie_id"`
	PosterURL  string `json:"poster_url"`
	UpdatedAt  string `json:"updated_at"`
}

func toTrendingRows(records []searchcount.Record) []trendingRow {
	rows := make([]trendingRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, trendingRow{
			Rank:       i + 1,
			SearchTerm: rec.SearchTerm,
			Count:      rec.Count,
			MovieID:    rec.MovieID,
			PosterURL:  rec.PosterURL,
			UpdatedAt:  rec.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func writeTrendingTable(w io.Writer, records []searchcount.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no searches recorded yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSEARCH TERM\tCOUNT\tMOVIE ID\tUPDATED")
	for _, row := range toTrendingRows(records) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", row.Rank, row.SearchTerm, row.Count, row.MovieID, row.UpdatedAt)
	}
	return tw.Flush()
}

func runCachePurge(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("cache purge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pattern := fs.String("pattern", "", "delete keys by pattern (must start with '"+infraRedis.KeyPrefix+"')")
	batchSize := fs.Int64("batch-size", 500, "SCAN batch size")
	dryRun := fs.Bool("dry-run", false, "only count matching keys")
	yes := fs.Bool("yes", false, "required confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("--yes is required")
	}
	if strings.TrimSpace(*pattern) == "" {
		return fmt.Errorf("--pattern is required")
	}
	if !strings.HasPrefix(*pattern, infraRedis.KeyPrefix) {
		return fmt.Errorf("pattern must start with '%s'", infraRedis.KeyPrefix)
	}

	cfg, log, finish, err := setup("admin")
	if err != nil {
		return err
	}
	defer finish()

	redisClient, err := cache.New(cache.Config{
		Address:      cfg.Redis.Address(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", "error", err)
		}
	}()

	if *dryRun {
		count, err := redisClient.CountByPattern(ctx, *pattern, *batchSize)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%d keys match %s\n", count, *pattern)
		return err
	}

	deleted, err := redisClient.DeleteByPattern(ctx, *pattern, *batchSize)
	if err != nil {
		return err
	}
	log.Info("cache purge completed", "pattern", *pattern, "deleted", deleted)
	_, err = fmt.Fprintf(stdout, "deleted %d keys\n", deleted)
	return err
}

// setup loads configuration and logging. finish flushes Sentry.
func setup(component string) (*config.Config, *slog.Logger, func(), error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  logger.Level(cfg.App.LogLevel),
		Format: logger.Format(cfg.App.LogFormat),
		Output: os.Stderr,
	})
	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, component)
	if err != nil {
		return nil, nil, nil, err
	}
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
	}
	logger.SetDefault(log)

	finish := func() {
		if sentryEnabled {
			telemetry.Flush(2 * time.Second)
		}
	}
	return cfg, log, finish, nil
}
