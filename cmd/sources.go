package cmd

import (
	"context"
	"time"

	"github.com/pable/squawka-xg/internal/mongostore"
	"github.com/pable/squawka-xg/internal/storage"
)

// documentSource yields stored raw documents; satisfied by *storage.DB and
// *mongostore.Store.
type documentSource interface {
	EachDocument(ctx context.Context, fn func(url string, data []byte) error) error
}

type sqliteSink struct{ db *storage.DB }

func (s sqliteSink) exists(_ context.Context, url string) (bool, error) {
	return s.db.DocumentExists(url)
}

func (s sqliteSink) put(_ context.Context, url string, data []byte) error {
	return s.db.InsertDocument(url, data, time.Now())
}

type mongoSink struct{ s *mongostore.Store }

func (m mongoSink) exists(ctx context.Context, url string) (bool, error) {
	return m.s.DocumentExists(ctx, url)
}

func (m mongoSink) put(ctx context.Context, url string, data []byte) error {
	return m.s.InsertDocument(ctx, url, data, time.Now())
}
