package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
	"github.com/vicebank/vicebank-client/internal/infrastructure/metrics"
	"github.com/vicebank/vicebank-client/internal/pkg/collect"
)

// UserCollection caches the Vice Bank profiles of the signed-in account.
type UserCollection struct {
	api ports.UsersAPI
	// onReplace runs after every successful refresh with the new cache.
	onReplace func(map[string]domain.User)
	log       zerolog.Logger

	mu    sync.RWMutex
	items []domain.User
	byID  map[string]domain.User
}

// List fetches every profile and replaces the cache.
func (u *UserCollection) List(ctx context.Context) ([]domain.User, error) {
	users, err := u.api.List(ctx)
	metrics.ObserveRefresh("users", err)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	byID := collect.ToMap(users, func(u domain.User) string { return u.ID })
	u.mu.Lock()
	u.items, u.byID = users, byID
	u.mu.Unlock()

	if u.onReplace != nil {
		u.onReplace(byID)
	}
	return slices.Clone(users), nil
}

func (u *UserCollection) Create(ctx context.Context, name string, currentTokens decimal.Decimal) (MutationResult[domain.User], error) {
	created, err := u.api.Add(ctx, domain.NewUser{Name: name, CurrentTokens: currentTokens})
	if err != nil {
		return MutationResult[domain.User]{}, fmt.Errorf("create user: %w", err)
	}
	return u.refreshAfter(ctx, created), nil
}

func (u *UserCollection) Update(ctx context.Context, user domain.User) (MutationResult[domain.User], error) {
	updated, err := u.api.Update(ctx, user)
	if err != nil {
		return MutationResult[domain.User]{}, fmt.Errorf("update user: %w", err)
	}
	return u.refreshAfter(ctx, updated), nil
}

func (u *UserCollection) Delete(ctx context.Context, vbUserID string) (MutationResult[domain.User], error) {
	deleted, err := u.api.Delete(ctx, vbUserID)
	if err != nil {
		return MutationResult[domain.User]{}, fmt.Errorf("delete user: %w", err)
	}
	return u.refreshAfter(ctx, deleted), nil
}

func (u *UserCollection) refreshAfter(ctx context.Context, item domain.User) MutationResult[domain.User] {
	res := MutationResult[domain.User]{Item: item}
	if _, err := u.List(ctx); err != nil {
		res.RefreshErr = err
		u.log.Warn().Err(err).Msg("user write succeeded but refresh failed")
	}
	return res
}

func (u *UserCollection) Items() []domain.User {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.items)
}

func (u *UserCollection) Map() map[string]domain.User {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make(map[string]domain.User, len(u.byID))
	for k, v := range u.byID {
		out[k] = v
	}
	return out
}

func (u *UserCollection) Get(id string) (domain.User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.byID[id]
	return user, ok
}
