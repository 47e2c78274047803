package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultEndpoint = "https://cloud.appwrite.io/v1"
	userAgent       = "movieflix-bot/1.0"
)

// ClientConfig controls Appwrite API connection settings.
type ClientConfig struct {
	HTTPClient *http.Client
	Endpoint   string
	ProjectID  string
	APIKey     string
	UserAgent  string
}

// Client wraps the Appwrite Databases REST API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	apiKey     string
	userAgent  string
}

// NewClient creates a new Appwrite client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = userAgent
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		projectID:  strings.TrimSpace(cfg.ProjectID),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		userAgent:  ua,
	}
}

// DocumentList is a page of raw documents.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// UniqueID returns an id accepted by Appwrite (at most 36 chars of [a-zA-Z0-9]).
func UniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Equal matches documents whose attribute equals one of values.
func Equal(attribute string, values ...any) string {
	return encodeQuery(query{Method: "equal", Attribute: attribute, Values: values})
}

// OrderDesc sorts by attribute, highest first.
func OrderDesc(attribute string) string {
	return encodeQuery(query{Method: "orderDesc", Attribute: attribute})
}

// Limit caps the number of returned documents.
func Limit(n int) string {
	return encodeQuery(query{Method: "limit", Values: []any{n}})
}

type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func encodeQuery(q query) string {
	b, _ := json.Marshal(q)
	return string(b)
}

// ListDocuments lists documents matching queries.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*DocumentList, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}
	var out DocumentList
	if err := c.do(ctx, http.MethodGet, documentsPath(databaseID, collectionID), params, nil, &out); err != nil {
		return nil, err
	}
	if out.Documents == nil {
		out.Documents = []json.RawMessage{}
	}
	return &out, nil
}

// CreateDocument creates a document with the given id and decodes the stored document into out.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data, out any) error {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	return c.do(ctx, http.MethodPost, documentsPath(databaseID, collectionID), nil, body, out)
}

// UpdateDocument patches the given attributes and decodes the stored document into out.
func (c *Client) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data, out any) error {
	path := documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID)
	return c.do(ctx, http.MethodPatch, path, nil, map[string]any{"data": data}, out)
}

// Ping checks that the API endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/version", nil, nil, nil)
}

func documentsPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if c.projectID == "" {
		return errors.New("appwrite: project id is required")
	}

	endpoint := c.endpoint + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("appwrite: failed to encode request: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Appwrite-Project", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("appwrite: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("appwrite: failed to decode response: %w", err)
	}
	return nil
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "appwrite: api error"
	}
	if e.Message != "" {
		return fmt.Sprintf("appwrite: status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("appwrite: status %d", e.StatusCode)
}

// IsConflict reports whether err is a 409 from Appwrite.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var payload struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		apiErr.Type = payload.Type
	}
	return apiErr
}
