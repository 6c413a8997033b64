// Package mongo archives local log events to MongoDB.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/infrastructure/config"
)

const connectTimeout = 10 * time.Second

// Conn is an open MongoDB client bound to the archive database.
type Conn struct {
	client     *mongo.Client
	db         *mongo.Database
	collection string
}

// Open connects to cfg.URI and pings the primary. Failures are reported
// as domain.ErrStorageUnavailable.
func Open(ctx context.Context, cfg config.MongoConfig) (*Conn, error) {
	if cfg.URI == "" {
		return nil, unavailable(errors.New("VB_MONGO_URI is empty"))
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetAppName("vicebank-client").
		SetServerSelectionTimeout(connectTimeout))
	if err != nil {
		return nil, unavailable(err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable(err)
	}
	return &Conn{client: client, db: client.Database(cfg.Database), collection: cfg.Collection}, nil
}

// Ping is the readiness probe.
func (c *Conn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Conn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Archive returns the log archive for owner's events.
func (c *Conn) Archive(owner string) *LogArchive {
	return NewLogArchive(c.db, c.collection, owner)
}

func unavailable(err error) error {
	return &domain.StorageError{Op: "open log archive", Kind: domain.ErrStorageUnavailable, Err: err}
}
