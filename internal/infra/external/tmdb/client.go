package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"movieflix/internal/domain/movie"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	userAgent      = "movieflix-bot/1.0"

	// defaultErrorMessage is used when an error-shaped payload carries no message.
	defaultErrorMessage = "failed to fetch movies"
)

// ClientConfig controls TMDb API connection settings.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	UserAgent  string
	// RateLimit is requests per second. Zero disables client-side limiting.
	RateLimit float64
	RateBurst int
}

// Client wraps the TMDb v3 search and discover endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new TMDb client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = userAgent
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		userAgent:  ua,
		limiter:    limiter,
	}
}

// SearchMovies runs a free-text title search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]movie.Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.list(ctx, "/search/movie", params)
}

// DiscoverPopular returns the discover list sorted by popularity.
func (c *Client) DiscoverPopular(ctx context.Context) ([]movie.Movie, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	return c.list(ctx, "/discover/movie", params)
}

func (c *Client) list(ctx context.Context, path string, params url.Values) ([]movie.Movie, error) {
	if c.apiKey == "" {
		return nil, errors.New("tmdb: api key is required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tmdb: rate limiter: %w", err)
		}
	}

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp)
	}

	var res listResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("tmdb: failed to decode response: %w", err)
	}
	if msg, failed := res.failure(); failed {
		return nil, &movie.CatalogError{Message: msg}
	}

	movies := make([]movie.Movie, 0, len(res.Results))
	for _, item := range res.Results {
		movies = append(movies, item.toDomain())
	}
	return movies, nil
}

type listResponse struct {
	Page         int         `json:"page"`
	Results      []movieItem `json:"results"`
	TotalResults int         `json:"total_results"`
	TotalPages   int         `json:"total_pages"`

	// Error payload shapes.
	Response   string `json:"Response,omitempty"`
	Error      string `json:"Error,omitempty"`
	Success    *bool  `json:"success,omitempty"`
	StatusMsg  string `json:"status_message,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// failure reports whether a 2xx body is actually an error payload.
func (r listResponse) failure() (string, bool) {
	if strings.EqualFold(r.Response, "False") {
		return messageOr(r.Error), true
	}
	if r.Success != nil && !*r.Success {
		return messageOr(r.StatusMsg), true
	}
	return "", false
}

func messageOr(msg string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return defaultErrorMessage
}

type movieItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	PosterPath       *string `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	Overview         string  `json:"overview"`
}

func (m movieItem) toDomain() movie.Movie {
	poster := ""
	if m.PosterPath != nil {
		poster = *m.PosterPath
	}
	return movie.Movie{
		ID:               m.ID,
		Title:            m.Title,
		PosterPath:       poster,
		VoteAverage:      m.VoteAverage,
		OriginalLanguage: m.OriginalLanguage,
		ReleaseDate:      m.ReleaseDate,
		Overview:         m.Overview,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e == nil {
		return "tmdb: status error"
	}
	if e.Message != "" {
		return fmt.Sprintf("tmdb: request failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tmdb: request failed: status %d", e.StatusCode)
}

// IsTooManyRequests reports whether err is a 429 and how long TMDb asked to wait.
func IsTooManyRequests(err error) (time.Duration, bool) {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		return 0, false
	}
	return statusErr.RetryAfter, true
}

func newStatusError(resp *http.Response) *StatusError {
	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfterDuration(resp.Header.Get("Retry-After")),
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		statusErr.Message = strings.TrimSpace(payload.StatusMessage)
	}
	return statusErr
}

func retryAfterDuration(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if seconds, err := time.ParseDuration(raw + "s"); err == nil && seconds > 0 {
		return seconds
	}
	if t, err := http.ParseTime(raw); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
	}
	return 0
}
