package app

import (
	"context"

	"go978/internal/publish"
	"go978/internal/storage"
)

// Sink receives every successfully decoded downlink
type Sink interface {
	Name() string
	Write(ctx context.Context, rec *storage.Record) error
	Close() error
}

type storeSink struct {
	name  string
	store storage.Store
}

func (s *storeSink) Name() string { return s.name }

func (s *storeSink) Write(ctx context.Context, rec *storage.Record) error {
	return s.store.Insert(ctx, rec)
}

func (s *storeSink) Close() error { return s.store.Close() }

type natsSink struct {
	publisher *publish.NATSPublisher
}

func (s *natsSink) Name() string { return "nats" }

func (s *natsSink) Write(_ context.Context, rec *storage.Record) error {
	return s.publisher.Publish(rec)
}

func (s *natsSink) Close() error { return s.publisher.Close() }
