// Package counterstore opens the search counter backend selected by configuration.
package counterstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"movieflix/internal/domain/repository"
	"movieflix/internal/infra/external/appwrite"
	"movieflix/internal/infra/memory"
	infraMongo "movieflix/internal/infra/mongo"
	infraPostgres "movieflix/internal/infra/postgres"
	"movieflix/internal/platform/config"
	"movieflix/internal/platform/database"
	"movieflix/internal/platform/docstore"
)

const closeTimeout = 5 * time.Second

// HealthChecker is implemented by backends that can be probed.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Backend is an opened counter store.
type Backend struct {
	Name       string
	Repository repository.SearchCountRepository

	// Database is set for the postgres backend.
	Database *database.DB
	// Health probes the backend. It is nil for the memory backend.
	Health HealthChecker

	closers []func()
}

// Open connects to the backend named by cfg.App.CounterStore.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	name := cfg.CounterStoreName()
	b := &Backend{Name: name}

	switch name {
	case config.CounterStorePostgres:
		db, err := database.New(ctx, database.ConfigFrom(cfg.Database, cfg.App.TimeZone), logger)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.Database = db
		b.Health = db
		b.Repository = infraPostgres.NewSearchCountRepository(db.Pool)
		b.closers = append(b.closers, db.Close)

	case config.CounterStoreMongo:
		store, err := docstore.New(ctx, docstore.ConfigFrom(cfg.Mongo), logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo := infraMongo.NewSearchCountRepository(store.Collection(cfg.Mongo.Collection))
		if _, err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to ensure search count indexes", "error", err)
		}
		b.Health = store
		b.Repository = repo
		b.closers = append(b.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				logger.Error("failed to close mongo", "error", err)
			}
		})

	case config.CounterStoreAppwrite:
		client := appwrite.NewClient(appwrite.ClientConfig{
			HTTPClient: &http.Client{Timeout: cfg.Appwrite.Timeout},
			Endpoint:   cfg.Appwrite.Endpoint,
			ProjectID:  cfg.Appwrite.ProjectID,
			APIKey:     cfg.Appwrite.APIKey,
		})
		store := appwrite.NewSearchCountStore(client, cfg.Appwrite.DatabaseID, cfg.Appwrite.CollectionID)
		b.Health = store
		b.Repository = store

	case config.CounterStoreMemory:
		b.Repository = memory.NewSearchCountRepository()

	default:
		return nil, fmt.Errorf("unknown counter store %q", name)
	}

	logger.Info("counter store ready", "backend", name)
	return b, nil
}

// Close releases backend connections.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
