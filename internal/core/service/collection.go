package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vicebank/vicebank-client/internal/core/ports"
	"github.com/vicebank/vicebank-client/internal/infrastructure/metrics"
	"github.com/vicebank/vicebank-client/internal/pkg/collect"
)

// Collection caches one per-user resource. The cache holds the result of
// the last successful List and is replaced whole; entities change only
// through Create, Update and Delete, each of which re-fetches.
type Collection[T any] struct {
	name  string
	api   ports.ResourceAPI[T]
	id    func(T) string
	owner func(T) string
	// balance is set for resources whose writes move the token balance.
	balance func(ctx context.Context, vbUserID string) error
	log     zerolog.Logger

	mu      sync.RWMutex
	items   []T
	byID    map[string]T
	ownerID string
}

func newCollection[T any](
	name string,
	api ports.ResourceAPI[T],
	id, owner func(T) string,
	balance func(context.Context, string) error,
	log zerolog.Logger,
) *Collection[T] {
	return &Collection[T]{
		name:    name,
		api:     api,
		id:      id,
		owner:   owner,
		balance: balance,
		log:     log.With().Str("collection", name).Logger(),
		byID:    map[string]T{},
	}
}

// List fetches vbUserID's items and replaces the cache. On failure the
// cache is left as it was.
func (c *Collection[T]) List(ctx context.Context, vbUserID string) ([]T, error) {
	items, err := c.api.List(ctx, vbUserID)
	metrics.ObserveRefresh(c.name, err)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}

	byID := collect.ToMap(items, c.id)
	c.mu.Lock()
	c.items, c.byID, c.ownerID = items, byID, vbUserID
	c.mu.Unlock()

	c.log.Debug().Str("vb_user_id", vbUserID).Int("count", len(items)).Msg("cache replaced")
	return slices.Clone(items), nil
}

// Create adds item on the server and re-fetches its owner's list.
func (c *Collection[T]) Create(ctx context.Context, item T) (MutationResult[T], error) {
	created, err := c.api.Add(ctx, item)
	if err != nil {
		return MutationResult[T]{}, fmt.Errorf("create %s: %w", c.name, err)
	}
	return c.refreshAfter(ctx, created, c.ownerOf(created, item)), nil
}

// Update replaces item on the server and re-fetches its owner's list.
func (c *Collection[T]) Update(ctx context.Context, item T) (MutationResult[T], error) {
	updated, err := c.api.Update(ctx, item)
	if err != nil {
		return MutationResult[T]{}, fmt.Errorf("update %s: %w", c.name, err)
	}
	return c.refreshAfter(ctx, updated, c.ownerOf(updated, item)), nil
}

// Delete removes id on the server. The server echoes the deleted entity,
// whose owner selects the list to re-fetch.
func (c *Collection[T]) Delete(ctx context.Context, id string) (MutationResult[T], error) {
	deleted, err := c.api.Delete(ctx, id)
	if err != nil {
		return MutationResult[T]{}, fmt.Errorf("delete %s: %w", c.name, err)
	}
	owner := c.owner(deleted)
	if owner == "" {
		owner = c.Owner()
	}
	return c.refreshAfter(ctx, deleted, owner), nil
}

func (c *Collection[T]) ownerOf(fromServer, submitted T) string {
	if owner := c.owner(fromServer); owner != "" {
		return owner
	}
	return c.owner(submitted)
}

// refreshAfter re-fetches the list and, for balance-affecting resources,
// the token balance. The two fetches run concurrently and neither cancels
// the other, so the balance is fetched exactly once per write.
func (c *Collection[T]) refreshAfter(ctx context.Context, item T, owner string) MutationResult[T] {
	res := MutationResult[T]{Item: item}

	var g errgroup.Group
	g.Go(func() error {
		_, res.RefreshErr = c.List(ctx, owner)
		return nil
	})
	if c.balance != nil {
		g.Go(func() error {
			res.BalanceErr = c.balance(ctx, owner)
			return nil
		})
	}
	_ = g.Wait()

	if err := res.Err(); err != nil {
		c.log.Warn().Err(err).Str("vb_user_id", owner).Msg("write succeeded but refresh failed")
	}
	return res
}

// Items returns the cached items in server order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Map returns the cached items keyed by id.
func (c *Collection[T]) Map() map[string]T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]T, len(c.byID))
	for k, v := range c.byID {
		out[k] = v
	}
	return out
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.byID[id]
	return item, ok
}

// Owner is the user whose items are cached, empty before the first List.
func (c *Collection[T]) Owner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ownerID
}

// Name is the resource name used in logs and errors.
func (c *Collection[T]) Name() string { return c.name }
