package service

import (
	"context"
	"fmt"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// Snapshot is a point-in-time copy of the store's caches.
type Snapshot struct {
	CurrentUser    *domain.User
	Balance        *domain.Balance
	Users          []domain.User
	Actions        []domain.Action
	Tasks          []domain.Task
	Rewards        []domain.Reward
	Purchases      []domain.Purchase
	ActionDeposits []domain.ActionDeposit
	TaskDeposits   []domain.TaskDeposit
}

// Snapshot copies the current cache contents without contacting the server.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Users:          s.users.Items(),
		Actions:        s.actions.Items(),
		Tasks:          s.tasks.Items(),
		Rewards:        s.rewards.Items(),
		Purchases:      s.purchases.Items(),
		ActionDeposits: s.actionDeposits.Items(),
		TaskDeposits:   s.taskDeposits.Items(),
	}
	if u, ok := s.CurrentUser(); ok {
		snap.CurrentUser = &u
	}
	if b, ok := s.Balance(); ok {
		snap.Balance = &b
	}
	return snap
}

// SelectUser selects the cached user with id vbUserID and returns it.
func (s *Store) SelectUser(ctx context.Context, vbUserID string) (domain.User, error) {
	user, ok := s.users.Get(vbUserID)
	if !ok {
		return domain.User{}, &domain.InvalidSelectionError{UserID: vbUserID}
	}
	if err := s.SetCurrentUser(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// RefreshCurrent re-fetches every collection for the selected user.
func (s *Store) RefreshCurrent(ctx context.Context) error {
	user, ok := s.CurrentUser()
	if !ok {
		return &domain.InvalidSelectionError{}
	}
	if err := s.RefreshAll(ctx, user.ID); err != nil {
		return fmt.Errorf("refresh %s: %w", user.Name, err)
	}
	return nil
}
