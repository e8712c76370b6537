// Package mongostore reads and writes raw feed documents kept in a MongoDB
// collection as {url, data} records.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document is one stored feed. Data may be stored as a string or binary.
type Document struct {
	URL       string    `bson:"url"`
	Data      []byte    `bson:"data"`
	FetchedAt time.Time `bson:"fetched_at,omitempty"`
}

// Store is a document collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to uri and selects database/collection.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// InsertDocument upserts a document keyed by url.
func (s *Store) InsertDocument(ctx context.Context, url string, data []byte, fetchedAt time.Time) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"url": url},
		Document{URL: url, Data: data, FetchedAt: fetchedAt.UTC()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", url, err)
	}
	return nil
}

// DocumentExists reports whether url is stored.
func (s *Store) DocumentExists(ctx context.Context, url string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"url": url}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", url, err)
	}
	return n > 0, nil
}

// EachDocument streams every document to fn, ordered by url.
func (s *Store) EachDocument(ctx context.Context, fn func(url string, data []byte) error) error {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "url", Value: 1}}))
	if err != nil {
		return fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var d Document
		if err := cur.Decode(&d); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		if err := fn(d.URL, d.Data); err != nil {
			return err
		}
	}
	return cur.Err()
}
