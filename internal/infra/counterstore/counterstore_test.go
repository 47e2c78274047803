package counterstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflix/internal/domain/searchcount"
	"movieflix/internal/infra/external/appwrite"
	"movieflix/internal/infra/memory"
	"movieflix/internal/platform/config"
	"movieflix/internal/platform/logger"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{CounterStore: "Memory"}}

	b, err := Open(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.CounterStoreMemory, b.Name)
	assert.IsType(t, &memory.SearchCountRepository{}, b.Repository)
	assert.Nil(t, b.Health)
	assert.Nil(t, b.Database)

	rec, err := b.Repository.Increment(context.Background(), searchcount.Seed{SearchTerm: "dune", MovieID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Count)
}

func TestOpen_Appwrite(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{CounterStore: config.CounterStoreAppwrite},
		Appwrite: config.AppwriteConfig{
			Endpoint:     "http://127.0.0.1:1/v1",
			ProjectID:    "project",
			DatabaseID:   "db",
			CollectionID: "metrics",
		},
	}

	b, err := Open(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &appwrite.SearchCountStore{}, b.Repository)
	assert.NotNil(t, b.Health)
}

func TestOpen_Unknown(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{CounterStore: "dynamo"}}

	_, err := Open(context.Background(), cfg, logger.NewNop())
	require.Error(t, err)
}
