package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"movieflix/internal/infra/mongo"
	"movieflix/internal/pkg/pglock"
	"movieflix/internal/platform/config"
	"movieflix/internal/platform/database"
	"movieflix/internal/platform/docstore"
	"movieflix/internal/platform/logger"
	"movieflix/internal/platform/migration"
	"movieflix/internal/platform/telemetry"
	"movieflix/migrations"
)

const lockName = "movieflix:migrate"

type command struct {
	name    string
	version int
}

func main() {
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  migrator [up]")
	fmt.Fprintln(os.Stderr, "  migrator down")
	fmt.Fprintln(os.Stderr, "  migrator version")
	fmt.Fprintln(os.Stderr, "  migrator force <version>")
	fmt.Fprintln(os.Stderr, "  migrator mongo-indexes")
}

func parseCommand(args []string) (command, error) {
	if len(args) < 2 {
		return command{name: "up"}, nil
	}
	cmd := command{name: args[1]}
	switch cmd.name {
	case "up", "down", "version", "mongo-indexes":
		return cmd, nil
	case "force":
		if len(args) < 3 {
			return command{}, errors.New("force requires a version")
		}
		v, err := strconv.Atoi(args[2])
		if err != nil || v < -1 {
			return command{}, fmt.Errorf("invalid version %q", args[2])
		}
		cmd.version = v
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command: %s", cmd.name)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd, err := parseCommand(args)
	if err != nil {
		printUsage()
		return err
	}

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
	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, "migrator")
	if err != nil {
		return err
	}
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
		defer telemetry.Flush(2 * time.Second)
		defer telemetry.Recover()
	}
	logger.SetDefault(log)

	if cmd.name == "mongo-indexes" {
		return runMongoIndexes(ctx, cfg, log, stdout)
	}
	return runSQL(ctx, cfg, log, cmd, stdout)
}

func runSQL(ctx context.Context, cfg *config.Config, log *slog.Logger, cmd command, stdout io.Writer) error {
	db, err := database.New(ctx, database.ConfigFrom(cfg.Database, cfg.App.TimeZone), log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	locked, unlock, err := pglock.TryAdvisoryLock(ctx, db.Pool, lockName)
	if err != nil {
		return err
	}
	if !locked {
		return errors.New("another migration is in progress")
	}
	defer func() {
		if err := unlock(context.Background()); err != nil {
			log.Error("failed to release migration lock", "error", err)
		}
	}()

	runner, err := migration.New(migration.Config{
		DatabaseURL: cfg.Database.ConnectionString(),
		Source:      migrations.FS,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Error("failed to close migration runner", "error", err)
		}
	}()

	switch cmd.name {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "force":
		err = runner.Force(cmd.version)
	}
	if err != nil {
		return err
	}

	version, dirty, err := runner.Version()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "version=%d dirty=%t\n", version, dirty)
	return err
}

func runMongoIndexes(ctx context.Context, cfg *config.Config, log *slog.Logger, stdout io.Writer) error {
	store, err := docstore.New(ctx, docstore.ConfigFrom(cfg.Mongo), log)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("failed to close mongo", "error", err)
		}
	}()

	names, err := mongo.NewSearchCountRepository(store.Collection(cfg.Mongo.Collection)).EnsureIndexes(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(stdout, name); err != nil {
			return err
		}
	}
	log.Info("mongo indexes ensured", "collection", cfg.Mongo.Collection, "indexes", names)
	return nil
}
