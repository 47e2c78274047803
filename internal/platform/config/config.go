package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultAPIBasePath is the fallback base path for the HTTP API.
const DefaultAPIBasePath = "/api/v1"

// Counter store backends.
const (
	CounterStorePostgres = "postgres"
	CounterStoreMongo    = "mongo"
	CounterStoreAppwrite = "appwrite"
	CounterStoreMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// MongoDB configuration
	Mongo MongoConfig

	// Application configuration
	App AppConfig

	// External API configuration
	External ExternalConfig

	// Appwrite document store configuration
	Appwrite AppwriteConfig

	// Sentry configuration
	Sentry SentryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// Address returns the server address in host:port format
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"movieflix"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:"movieflix"`
	Database        string        `env:"POSTGRES_DB" envDefault:"movieflix"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnectionString returns the PostgreSQL connection string in URL format
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
		int(d.ConnectTimeout.Seconds()),
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD" envDefault:""`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
}

// Address returns the Redis address in host:port format
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI            string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB" envDefault:"movieflix"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"search_counts"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"20"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	LogLevel      string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"APP_LOG_FORMAT" envDefault:"text"` // text or json
	TimeZone      string        `env:"APP_TIMEZONE" envDefault:"UTC"`
	EnableMetrics bool          `env:"APP_ENABLE_METRICS" envDefault:"true"`
	APIBasePath   string        `env:"APP_API_BASE_PATH" envDefault:"/api/v1"`
	HealthTimeout time.Duration `env:"APP_HEALTH_TIMEOUT" envDefault:"3s"`

	// CounterStore selects the search counter backend: postgres, mongo, appwrite or memory.
	CounterStore       string        `env:"APP_COUNTER_STORE" envDefault:"postgres"`
	RecordTimeout      time.Duration `env:"APP_RECORD_TIMEOUT" envDefault:"3s"`
	TrendingLimit      int           `env:"APP_TRENDING_LIMIT" envDefault:"5"`
	DebounceInterval   time.Duration `env:"APP_DEBOUNCE_INTERVAL" envDefault:"1s"`
	CORSAllowedOrigins []string      `env:"APP_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	CacheEnabled     bool          `env:"APP_CACHE_ENABLED" envDefault:"true"`
	TrendingCacheTTL time.Duration `env:"APP_TRENDING_CACHE_TTL" envDefault:"1m"`
	PopularCacheTTL  time.Duration `env:"APP_POPULAR_CACHE_TTL" envDefault:"30m"`
	SearchCacheTTL   time.Duration `env:"APP_SEARCH_CACHE_TTL" envDefault:"15m"`

	RateLimitEnabled     bool          `env:"APP_RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitWindow      time.Duration `env:"APP_RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMaxRequests int           `env:"APP_RATE_LIMIT_MAX_REQUESTS" envDefault:"120"`
}

// ExternalConfig holds external API configuration
type ExternalConfig struct {
	// TMDb movie catalog API
	TMDBAPIKey       string        `env:"TMDB_API_KEY" envDefault:""`
	TMDBBaseURL      string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	TMDBImageBaseURL string        `env:"TMDB_IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p/w500"`
	TMDBTimeout      time.Duration `env:"TMDB_API_TIMEOUT" envDefault:"10s"`
	TMDBRateLimit    float64       `env:"TMDB_RATE_LIMIT" envDefault:"40"` // requests per second, 0 disables
	TMDBRateBurst    int           `env:"TMDB_RATE_BURST" envDefault:"20"`
}

// AppwriteConfig holds the hosted document store configuration
type AppwriteConfig struct {
	Endpoint     string        `env:"APPWRITE_ENDPOINT" envDefault:"https://cloud.appwrite.io/v1"`
	ProjectID    string        `env:"APPWRITE_PROJECT_ID" envDefault:""`
	DatabaseID   string        `env:"APPWRITE_DATABASE_ID" envDefault:""`
	CollectionID string        `env:"APPWRITE_COLLECTION_ID" envDefault:""`
	APIKey       string        `env:"APPWRITE_API_KEY" envDefault:""`
	Timeout      time.Duration `env:"APPWRITE_TIMEOUT" envDefault:"10s"`
}

// SentryConfig holds Sentry configuration
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" envDefault:""`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:""`
	Release     string `env:"SENTRY_RELEASE" envDefault:""`
}

// LoadDotEnv loads variables from the given files into the process environment.
// Missing files are ignored and existing variables are never overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables into config struct
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate Redis configuration
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		return fmt.Errorf("invalid redis database: %d (must be 0-15)", c.Redis.DB)
	}

	// Validate app configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.App.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)",
			c.App.LogLevel)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.App.LogFormat] {
		return fmt.Errorf("invalid log format: %s (must be text or json)",
			c.App.LogFormat)
	}

	if c.App.TrendingLimit < 1 {
		return fmt.Errorf("trending limit must be positive")
	}
	if c.App.DebounceInterval < 0 {
		return fmt.Errorf("debounce interval must not be negative")
	}

	if c.App.RateLimitEnabled {
		if c.App.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
		if c.App.RateLimitMaxRequests <= 0 {
			return fmt.Errorf("rate limit max requests must be positive")
		}
	}

	if c.External.TMDBRateLimit < 0 {
		return fmt.Errorf("tmdb rate limit must not be negative")
	}

	switch strings.ToLower(strings.TrimSpace(c.App.CounterStore)) {
	case CounterStorePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("database max connections (%d) must be >= min connections (%d)",
				c.Database.MaxConns, c.Database.MinConns)
		}
	case CounterStoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
		if c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("mongo database and collection are required")
		}
	case CounterStoreAppwrite:
		if c.Appwrite.ProjectID == "" {
			return fmt.Errorf("appwrite project id is required")
		}
		if c.Appwrite.DatabaseID == "" {
			return fmt.Errorf("appwrite database id is required")
		}
		if c.Appwrite.CollectionID == "" {
			return fmt.Errorf("appwrite collection id is required")
		}
	case CounterStoreMemory:
	default:
		return fmt.Errorf("invalid counter store: %s (must be postgres, mongo, appwrite, or memory)",
			c.App.CounterStore)
	}

	return nil
}

// CounterStoreName returns the normalized counter store backend name.
func (c *Config) CounterStoreName() string {
	return strings.ToLower(strings.TrimSpace(c.App.CounterStore))
}
