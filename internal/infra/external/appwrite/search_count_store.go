package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"movieflix/internal/domain/repository"
	"movieflix/internal/domain/searchcount"
)

var _ repository.SearchCountRepository = (*SearchCountStore)(nil)

// SearchCountStore keeps search counters in an Appwrite collection.
//
// Increment reads then writes, so two concurrent increments of one phrase can
// lose an update or create duplicate documents. The REST API offers no atomic
// increment and the service deliberately adds no locking around it.
type SearchCountStore struct {
	client       *Client
	databaseID   string
	collectionID string
}

// NewSearchCountStore creates a store over the given collection.
func NewSearchCountStore(client *Client, databaseID, collectionID string) *SearchCountStore {
	return &SearchCountStore{
		client:       client,
		databaseID:   databaseID,
		collectionID: collectionID,
	}
}

type searchCountDocument struct {
	ID         string    `json:"$id"`
	SearchTerm string    `json:"searchTerm"`
	Count      int64     `json:"count"`
	PosterURL  string    `json:"poster_url"`
	MovieID    int64     `json:"movie_id"`
	CreatedAt  time.Time `json:"$createdAt"`
	UpdatedAt  time.Time `json:"$updatedAt"`
}

func (d searchCountDocument) toRecord() *searchcount.Record {
	return &searchcount.Record{
		ID:         d.ID,
		SearchTerm: d.SearchTerm,
		Count:      d.Count,
		PosterURL:  d.PosterURL,
		MovieID:    d.MovieID,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// Increment bumps the counter for seed.SearchTerm or creates it with count 1.
func (s *SearchCountStore) Increment(ctx context.Context, seed searchcount.Seed) (*searchcount.Record, error) {
	existing, err := s.find(ctx, seed.SearchTerm)
	if err != nil {
		return nil, err
	}

	var doc searchCountDocument
	if existing != nil {
		if err := s.client.UpdateDocument(ctx, s.databaseID, s.collectionID, existing.ID, map[string]any{
			"count": existing.Count + 1,
		}, &doc); err != nil {
			return nil, fmt.Errorf("update search count: %w", err)
		}
		return doc.toRecord(), nil
	}

	if err := s.client.CreateDocument(ctx, s.databaseID, s.collectionID, UniqueID(), map[string]any{
		"searchTerm": seed.SearchTerm,
		"count":      1,
		"poster_url": seed.PosterURL,
		"movie_id":   seed.MovieID,
	}, &doc); err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("create search count: %w: %w", searchcount.ErrConcurrentWrite, err)
		}
		return nil, fmt.Errorf("create search count: %w", err)
	}
	return doc.toRecord(), nil
}

// Top lists up to limit records by count descending.
func (s *SearchCountStore) Top(ctx context.Context, limit int) ([]searchcount.Record, error) {
	list, err := s.client.ListDocuments(ctx, s.databaseID, s.collectionID,
		OrderDesc("count"),
		Limit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list top search counts: %w", err)
	}
	docs, err := decodeDocuments(list.Documents)
	if err != nil {
		return nil, err
	}
	records := make([]searchcount.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, *d.toRecord())
	}
	return records, nil
}

// GetByTerm returns the record for term or searchcount.ErrNotFound.
func (s *SearchCountStore) GetByTerm(ctx context.Context, term string) (*searchcount.Record, error) {
	doc, err := s.find(ctx, term)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, searchcount.ErrNotFound
	}
	return doc.toRecord(), nil
}

func (s *SearchCountStore) find(ctx context.Context, term string) (*searchCountDocument, error) {
	list, err := s.client.ListDocuments(ctx, s.databaseID, s.collectionID,
		Equal("searchTerm", term),
		Limit(1),
	)
	if err != nil {
		return nil, fmt.Errorf("find search count: %w", err)
	}
	docs, err := decodeDocuments(list.Documents)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

func decodeDocuments(raw []json.RawMessage) ([]searchCountDocument, error) {
	docs := make([]searchCountDocument, 0, len(raw))
	for _, r := range raw {
		var d searchCountDocument
		if err := json.Unmarshal(r, &d); err != nil {
			return nil, fmt.Errorf("decode search count document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// HealthCheck reports whether the Appwrite endpoint answers.
func (s *SearchCountStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx)
}
