// Package mongostore adapts the MongoDB document store to the core
// repository ports. The store is the sole source of truth: every
// mutation here is a document-level write, and uniqueness of the
// product business code is enforced by a unique index created at
// connect time.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Roberto031094/Backend1-Entrega/pkg/retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection = "products"
	cartsCollection    = "carts"
)

type DocumentStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, uri, database string) (DocumentStore, error) {
	const op = "DocumentStore"
	log := slog.With("op", op)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return DocumentStore{}, fmt.Errorf("%s: %w", op, err)
	}

	pingCfg := retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
	}
	err = retry.Do(ctx, pingCfg, func() error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		return DocumentStore{}, fmt.Errorf(
			"%s: document store is unavailable: %w", op, err)
	}

	s := DocumentStore{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		return DocumentStore{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("document store is available", "database", database)
	return s, nil
}

func (s DocumentStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(productsCollection).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	return err
}

func (s DocumentStore) Close(ctx context.Context) {
	const op = "DocumentStore.Close"
	log := slog.With("op", op)

	log.Info("closing document store...")

	if err := s.client.Disconnect(ctx); err != nil {
		log.Error("failed to disconnect", "err", err)
		return
	}
	log.Info("document store is closed")
}
