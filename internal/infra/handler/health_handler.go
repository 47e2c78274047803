package handler

import (
	"context"
	"net/http"
	"time"
)

const (
	defaultHealthTimeout = 3 * time.Second

	componentDatabase      = "database"
	componentCache         = "redis"
	componentDocumentStore = "document_store"
)

// HealthChecker defines dependencies that can be health-checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles /health endpoint.
type HealthHandler struct {
	DB       HealthChecker
	Cache    HealthChecker
	DocStore HealthChecker
	Timeout  time.Duration
}

// NewHealthHandler wires the counter store probes. The Postgres database and the
// document store are alternative counter backends, so a database replaces the
// document store probe. Nil checkers are skipped.
func NewHealthHandler(db, docStore, cache HealthChecker, timeout time.Duration) *HealthHandler {
	h := &HealthHandler{Cache: cache, Timeout: timeout}
	if db != nil {
		h.DB = db
		return h
	}
	h.DocStore = docStore
	return h
}

type healthComponent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components []healthComponent `json:"components"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// ServeHTTP responds with dependency status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	resp := healthResponse{Status: "healthy", Components: []healthComponent{}}
	for _, probe := range []struct {
		name    string
		checker HealthChecker
	}{
		{componentDatabase, h.DB},
		{componentCache, h.Cache},
		{componentDocumentStore, h.DocStore},
	} {
		if probe.checker == nil {
			continue
		}
		c := healthComponent{Name: probe.name, Status: "healthy"}
		if err := probe.checker.HealthCheck(ctx); err != nil {
			c.Status = "unhealthy"
			c.Error = err.Error()
			resp.Status = "unhealthy"
		}
		resp.Components = append(resp.Components, c)
	}
	resp.CheckedAt = time.Now().UTC()

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
