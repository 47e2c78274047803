package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig bundles handler dependencies.
type RouterConfig struct {
	MovieHandler        *MovieHandler
	TrendingHandler     *TrendingHandler
	SearchRecordHandler *SearchRecordHandler
	HealthHandler       *HealthHandler
	OpenAPIHandler      *OpenAPIHandler

	APIBasePath       string
	Middlewares       []func(http.Handler) http.Handler
	PrometheusHandler http.Handler
}

// NewRouter wires handlers and middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	for _, mw := range cfg.Middlewares {
		if mw == nil {
			continue
		}
		r.Use(mw)
	}

	if cfg.PrometheusHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.PrometheusHandler)
	}

	apiBasePath := normalizeAPIBasePath(cfg.APIBasePath)
	if apiBasePath == "" {
		apiBasePath = "/"
	}
	r.Route(apiBasePath, func(api chi.Router) {
		if cfg.MovieHandler != nil {
			cfg.MovieHandler.RegisterRoutes(api)
		}
		if cfg.TrendingHandler != nil {
			cfg.TrendingHandler.RegisterRoutes(api)
		}
		if cfg.SearchRecordHandler != nil {
			cfg.SearchRecordHandler.RegisterRoutes(api)
		}
		if cfg.OpenAPIHandler != nil {
			cfg.OpenAPIHandler.RegisterRoutes(api)
		}
		if cfg.HealthHandler != nil {
			api.Get("/health", cfg.HealthHandler.ServeHTTP)
		}
	})
	return r
}
