package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"movieflix/api"
	"movieflix/internal/infra/counterstore"
	"movieflix/internal/infra/external/tmdb"
	"movieflix/internal/infra/handler"
	infraRedis "movieflix/internal/infra/redis"
	"movieflix/internal/pkg/timeutil"
	"movieflix/internal/platform/cache"
	"movieflix/internal/platform/config"
	"movieflix/internal/platform/logger"
	"movieflix/internal/platform/metrics"
	"movieflix/internal/platform/server"
	"movieflix/internal/platform/telemetry"
	usecaseMovie "movieflix/internal/usecase/movie"
	usecaseSearchCount "movieflix/internal/usecase/searchcount"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
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
	})
	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, "app")
	if err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
		defer telemetry.Flush(2 * time.Second)
		defer telemetry.Recover()
	}
	logger.SetDefault(log)

	if err := timeutil.SetLocation(cfg.App.TimeZone); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}

	backend, err := counterstore.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	var redisClient *cache.Cache
	if cfg.App.CacheEnabled || cfg.App.RateLimitEnabled {
		redisClient, err = cache.New(cache.Config{
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
	}

	httpMetrics := metrics.NewHTTPMetrics()
	searchMetrics := metrics.NewSearchCountMetrics(httpMetrics.Registry())

	var (
		trendingCache usecaseSearchCount.TrendingCache
		popularCache  usecaseMovie.PopularCache
		searchCache   usecaseMovie.SearchCache
	)
	if cfg.App.CacheEnabled {
		trendingCache = infraRedis.NewTrendingCache(redisClient, cfg.App.TrendingCacheTTL)
		popularCache = infraRedis.NewPopularMoviesCache(redisClient, cfg.App.PopularCacheTTL)
		searchCache = infraRedis.NewMovieSearchCache(redisClient, cfg.App.SearchCacheTTL)
	}

	countService := usecaseSearchCount.NewService(backend.Repository, trendingCache, searchMetrics, log.With("counter_store", backend.Name), usecaseSearchCount.Config{
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
	movieService := usecaseMovie.NewService(catalog, countService, popularCache, searchCache, searchMetrics, log)

	middlewares := []func(http.Handler) http.Handler{
		server.RequestLogger(log),
		server.Recoverer(log),
		server.CORS(cfg.App.CORSAllowedOrigins),
		server.SecurityHeaders(),
	}
	if cfg.App.RateLimitEnabled {
		middlewares = append(middlewares, server.RateLimit(server.RateLimitConfig{
			Counter: redisClient,
			Limit:   cfg.App.RateLimitMaxRequests,
			Window:  cfg.App.RateLimitWindow,
			Logger:  log,
			Skip: func(r *http.Request) bool {
				return r.URL.Path == "/metrics"
			},
		}))
	}
	var promHandler http.Handler
	if cfg.App.EnableMetrics {
		middlewares = append(middlewares, httpMetrics.Middleware)
		promHandler = httpMetrics.Handler()
	}

	var dbProbe, cacheProbe handler.HealthChecker
	if backend.Database != nil {
		dbProbe = backend.Database
	}
	if redisClient != nil {
		cacheProbe = redisClient
	}
	healthHandler := handler.NewHealthHandler(dbProbe, backend.Health, cacheProbe, cfg.App.HealthTimeout)

	router := handler.NewRouter(handler.RouterConfig{
		MovieHandler:        handler.NewMovieHandler(movieService, cfg.External.TMDBImageBaseURL),
		TrendingHandler:     handler.NewTrendingHandler(countService, cfg.App.TrendingLimit),
		SearchRecordHandler: handler.NewSearchRecordHandler(countService),
		HealthHandler:       healthHandler,
		OpenAPIHandler:      handler.NewOpenAPIHandler(api.Spec),
		APIBasePath:         cfg.App.APIBasePath,
		Middlewares:         middlewares,
		PrometheusHandler:   promHandler,
	})

	srv := server.New(server.Config{
		Address:      cfg.Server.Address(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, router, log)

	log.Info("starting movieflix api",
		"address", cfg.Server.Address(),
		"base_path", cfg.App.APIBasePath,
		"counter_store", backend.Name,
		"cache_enabled", cfg.App.CacheEnabled,
	)
	return srv.ListenAndServeWithGracefulShutdown(ctx)
}
