// Package mongo stores search counters in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"movieflix/internal/domain/repository"
	"movieflix/internal/domain/searchcount"
	"movieflix/internal/pkg/timeutil"
)

var _ repository.SearchCountRepository = (*SearchCountRepository)(nil)

const (
	fieldSearchTerm = "searchTerm"
	fieldCount      = "count"
	fieldUpdatedAt  = "updatedAt"
)

// SearchCountRepository keeps one document per search phrase.
type SearchCountRepository struct {
	coll  *driver.Collection
	clock timeutil.Clock
}

// NewSearchCountRepository creates a repository over coll.
func NewSearchCountRepository(coll *driver.Collection) *SearchCountRepository {
	return &SearchCountRepository{coll: coll, clock: timeutil.SystemClock}
}

type searchCountDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SearchTerm string             `bson:"searchTerm"`
	Count      int64              `bson:"count"`
	PosterURL  string             `bson:"poster_url"`
	MovieID    int64              `bson:"movie_id"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d searchCountDocument) toRecord() *searchcount.Record {
	return &searchcount.Record{
		ID:         d.ID.Hex(),
		SearchTerm: d.SearchTerm,
		Count:      d.Count,
		PosterURL:  d.PosterURL,
		MovieID:    d.MovieID,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// EnsureIndexes creates the unique phrase index and the ranking index.
func (r *SearchCountRepository) EnsureIndexes(ctx context.Context) ([]string, error) {
	names, err := r.coll.Indexes().CreateMany(ctx, []driver.IndexModel{
		{
			Keys:    bson.D{{Key: fieldSearchTerm, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_search_term"),
		},
		{
			Keys:    bson.D{{Key: fieldCount, Value: -1}, {Key: fieldUpdatedAt, Value: -1}},
			Options: options.Index().SetName("idx_count_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create search count indexes: %w", err)
	}
	return names, nil
}

// Increment upserts the phrase document with $inc. Two concurrent upserts of a
// new phrase can race on the unique index; the loser re-runs and increments.
func (r *SearchCountRepository) Increment(ctx context.Context, seed searchcount.Seed) (*searchcount.Record, error) {
	if seed.SearchTerm == "" {
		return nil, searchcount.ErrInvalidTerm
	}
	rec, err := r.upsert(ctx, seed)
	if driver.IsDuplicateKeyError(err) {
		rec, err = r.upsert(ctx, seed)
	}
	if err != nil {
		return nil, fmt.Errorf("increment search count: %w", err)
	}
	return rec, nil
}

func (r *SearchCountRepository) upsert(ctx context.Context, seed searchcount.Seed) (*searchcount.Record, error) {
	now := r.clock()
	update := bson.M{
		"$inc": bson.M{fieldCount: 1},
		"$set": bson.M{fieldUpdatedAt: now},
		"$setOnInsert": bson.M{
			"poster_url": seed.PosterURL,
			"movie_id":   seed.MovieID,
			"createdAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc searchCountDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{fieldSearchTerm: seed.SearchTerm}, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toRecord(), nil
}

// Top returns up to limit records ordered by count descending.
func (r *SearchCountRepository) Top(ctx context.Context, limit int) ([]searchcount.Record, error) {
	if limit <= 0 {
		return []searchcount.Record{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: fieldCount, Value: -1}, {Key: fieldUpdatedAt, Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list top search counts: %w", err)
	}
	var docs []searchCountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode search counts: %w", err)
	}

	records := make([]searchcount.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, *d.toRecord())
	}
	return records, nil
}

// GetByTerm returns the record for term or searchcount.ErrNotFound.
func (r *SearchCountRepository) GetByTerm(ctx context.Context, term string) (*searchcount.Record, error) {
	var doc searchCountDocument
	err := r.coll.FindOne(ctx, bson.M{fieldSearchTerm: term}).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, searchcount.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search count: %w", err)
	}
	return doc.toRecord(), nil
}
