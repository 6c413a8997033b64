// Package redis keeps the current user selection in Redis so that several
// CLI invocations and the local mirror share it.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/infrastructure/config"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
)

// Conn is an open Redis client.
type Conn struct {
	Client *redis.Client
}

// Open dials cfg.Addr and confirms the server answers. Failures are
// reported as domain.ErrStorageUnavailable.
func Open(ctx context.Context, cfg config.RedisConfig) (*Conn, error) {
	if cfg.Addr == "" {
		return nil, unavailable(errors.New("VB_REDIS_ADDR is empty"))
	}
	c := &Conn{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		ClientName:   "vicebank-client",
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})}

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Client.Close()
		return nil, unavailable(err)
	}
	return c, nil
}

// Ping is the readiness probe.
func (c *Conn) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Conn) Close(context.Context) error {
	return c.Client.Close()
}

// Sessions returns the session store backed by this connection.
func (c *Conn) Sessions(ttl time.Duration) *SessionStore {
	return NewSessionStore(c.Client, ttl)
}

func unavailable(err error) error {
	return &domain.StorageError{Op: "open session store", Kind: domain.ErrStorageUnavailable, Err: err}
}
