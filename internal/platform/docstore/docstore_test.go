package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflix/internal/platform/config"
	"movieflix/internal/platform/logger"
)

func TestNew_RequiresURIAndDatabase(t *testing.T) {
	_, err := New(context.Background(), Config{Database: "movieflix"}, logger.NewNop())
	require.Error(t, err)

	_, err = New(context.Background(), Config{URI: "mongodb://localhost:27017"}, logger.NewNop())
	require.Error(t, err)
}

func TestNew_InvalidURI(t *testing.T) {
	_, err := New(context.Background(), Config{URI: "not-a-uri", Database: "movieflix"}, logger.NewNop())
	require.Error(t, err)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := New(ctx, Config{
		URI:            "mongodb://127.0.0.1:1",
		Database:       "movieflix",
		ConnectTimeout: 200 * time.Millisecond,
	}, logger.NewNop())
	require.Error(t, err)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.MongoConfig{
		URI:            "mongodb://mongo:27017",
		Database:       "movieflix",
		Collection:     "search_counts",
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    10,
	})
	assert.Equal(t, "mongodb://mongo:27017", cfg.URI)
	assert.Equal(t, "movieflix", cfg.Database)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, uint64(10), cfg.MaxPoolSize)
}
