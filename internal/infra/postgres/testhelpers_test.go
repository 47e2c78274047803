package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	testcontainers "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"movieflix/migrations"
)

// setupPostgres connects to TEST_POSTGRES_URL when set, otherwise starts a
// throwaway container. The test is skipped when neither is available.
func setupPostgres(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	if connStr := os.Getenv("TEST_POSTGRES_URL"); connStr != "" {
		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			t.Skipf("failed to connect to test database: %v", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			t.Skipf("failed to ping test database: %v", err)
		}
		require.NoError(t, applyTestMigrations(ctx, pool))
		return pool, pool.Close
	}

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16"),
		tcpostgres.WithDatabase("test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping postgres integration test: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, applyTestMigrations(ctx, pool))

	return pool, func() {
		pool.Close()
		_ = container.Terminate(context.Background())
	}
}

// applyTestMigrations executes the embedded up migrations in version order.
func applyTestMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		// No arguments, so pgx uses the simple protocol and accepts multiple statements.
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("exec %s: %w", file, err)
		}
	}
	return nil
}

// cleanupTables removes all data from test tables.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE search_counts")
	require.NoError(t, err)
}
