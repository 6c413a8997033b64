package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
	"github.com/vicebank/vicebank-client/internal/infrastructure/metrics"
)

// Store mirrors the server's data for one signed-in account. It owns the
// resource caches, the current user selection and the token balance.
type Store struct {
	api      ports.ViceBankAPI
	sessions ports.SessionStore
	log      zerolog.Logger
	now      func() time.Time

	users          *UserCollection
	actions        *Collection[domain.Action]
	tasks          *Collection[domain.Task]
	rewards        *Collection[domain.Reward]
	purchases      *Collection[domain.Purchase]
	actionDeposits *Collection[domain.ActionDeposit]
	taskDeposits   *Collection[domain.TaskDeposit]

	selMu   sync.RWMutex
	current *domain.User
	owner   string

	balMu   sync.RWMutex
	balance *domain.Balance
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithStoreClock replaces time.Now for balance timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore wires a Store over api. sessions may be nil, in which case the
// selection is not persisted.
func NewStore(api ports.ViceBankAPI, sessions ports.SessionStore, log zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		api:      api,
		sessions: sessions,
		log:      log.With().Str("component", "store").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.users = &UserCollection{api: api.Users(), onReplace: s.reconcileSelection, log: s.log, byID: map[string]domain.User{}}
	s.actions = newCollection("actions", api.Actions(),
		func(a domain.Action) string { return a.ID },
		func(a domain.Action) string { return a.VBUserID },
		nil, s.log)
	s.tasks = newCollection("tasks", api.Tasks(),
		func(t domain.Task) string { return t.ID },
		func(t domain.Task) string { return t.VBUserID },
		nil, s.log)
	s.rewards = newCollection("rewards", api.Rewards(),
		func(r domain.Reward) string { return r.ID },
		func(r domain.Reward) string { return r.VBUserID },
		nil, s.log)
	s.purchases = newCollection("purchases", api.Purchases(),
		func(p domain.Purchase) string { return p.ID },
		func(p domain.Purchase) string { return p.VBUserID },
		s.refreshBalanceErr, s.log)
	s.actionDeposits = newCollection("action deposits", api.ActionDeposits(),
		func(d domain.ActionDeposit) string { return d.ID },
		func(d domain.ActionDeposit) string { return d.VBUserID },
		s.refreshBalanceErr, s.log)
	s.taskDeposits = newCollection("task deposits", api.TaskDeposits(),
		func(d domain.TaskDeposit) string { return d.ID },
		func(d domain.TaskDeposit) string { return d.VBUserID },
		s.refreshBalanceErr, s.log)
	return s
}

func (s *Store) Users() *UserCollection { return s.users }
func (s *Store) Actions() *Collection[domain.Action] { return s.actions }
func (s *Store) Tasks() *Collection[domain.Task] { return s.tasks }
func (s *Store) Rewards() *Collection[domain.Reward] { return s.rewards }
func (s *Store) Purchases() *Collection[domain.Purchase] { return s.purchases }
func (s *Store) ActionDeposits() *Collection[domain.ActionDeposit] { return s.actionDeposits }
func (s *Store) TaskDeposits() *Collection[domain.TaskDeposit] { return s.taskDeposits }

// SetCurrentUser selects user. The user must be in the user cache;
// otherwise an InvalidSelectionError is returned and the previous
// selection stays. The selection is persisted (failures are only logged)
// and the user's balance is re-fetched.
func (s *Store) SetCurrentUser(ctx context.Context, user domain.User) error {
	cached, ok := s.users.Get(user.ID)
	if !ok {
		return &domain.InvalidSelectionError{UserID: user.ID}
	}

	s.selMu.Lock()
	changed := s.current == nil || s.current.ID != cached.ID
	s.current = &cached
	s.selMu.Unlock()
	if changed {
		s.resetBalance()
	}

	s.saveSession(ctx)

	if _, err := s.RefreshBalance(ctx, cached.ID); err != nil {
		return fmt.Errorf("select user: %w", err)
	}
	return nil
}

// CurrentUser returns the selected user.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.selMu.RLock()
	defer s.selMu.RUnlock()
	if s.current == nil {
		return domain.User{}, false
	}
	return *s.current, true
}

// Owner is the account the store is bound to by BindOwner or
// RestoreSession.
func (s *Store) Owner() string {
	s.selMu.RLock()
	defer s.selMu.RUnlock()
	return s.owner
}

// ClearCurrentUser drops the selection, the balance and the saved session.
func (s *Store) ClearCurrentUser(ctx context.Context) {
	s.selMu.Lock()
	s.current = nil
	owner := s.owner
	s.selMu.Unlock()
	s.resetBalance()

	if s.sessions != nil && owner != "" {
		if err := s.sessions.Clear(ctx, owner); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear session")
		}
	}
}

// BindOwner sets the account that selections are persisted for, without
// loading what was saved for it.
func (s *Store) BindOwner(owner string) {
	s.selMu.Lock()
	s.owner = owner
	s.selMu.Unlock()
}

// RestoreSession binds the store to owner and re-applies the selection
// saved for it, if that user is still in the user cache. List users first.
func (s *Store) RestoreSession(ctx context.Context, owner string) (bool, error) {
	s.BindOwner(owner)

	if s.sessions == nil || owner == "" {
		return false, nil
	}
	session, err := s.sessions.Load(ctx, owner)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if session.CurrentUserID == "" {
		return false, nil
	}
	if _, ok := s.users.Get(session.CurrentUserID); !ok {
		s.log.Info().Str("vb_user_id", session.CurrentUserID).Msg("saved user no longer exists")
		return false, nil
	}
	if err := s.SetCurrentUser(ctx, domain.User{ID: session.CurrentUserID}); err != nil {
		return true, err
	}
	return true, nil
}

// RefreshBalance reads vbUserID's balance from the server and stores it.
func (s *Store) RefreshBalance(ctx context.Context, vbUserID string) (decimal.Decimal, error) {
	tokens, err := s.api.Tokens().CurrentTokens(ctx, vbUserID)
	metrics.ObserveRefresh("balance", err)
	if err != nil {
		return decimal.Zero, fmt.Errorf("refresh balance: %w", err)
	}

	s.balMu.Lock()
	s.balance = &domain.Balance{VBUserID: vbUserID, Tokens: tokens, FetchedAt: s.now()}
	s.balMu.Unlock()
	return tokens, nil
}

func (s *Store) refreshBalanceErr(ctx context.Context, vbUserID string) error {
	_, err := s.RefreshBalance(ctx, vbUserID)
	return err
}

// Balance returns the last balance read.
func (s *Store) Balance() (domain.Balance, bool) {
	s.balMu.RLock()
	defer s.balMu.RUnlock()
	if s.balance == nil {
		return domain.Balance{}, false
	}
	return *s.balance, true
}

func (s *Store) resetBalance() {
	s.balMu.Lock()
	s.balance = nil
	s.balMu.Unlock()
}

// RefreshAll fetches every collection and the balance for vbUserID in
// parallel. The first failure cancels the rest and is returned.
func (s *Store) RefreshAll(ctx context.Context, vbUserID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := s.actions.List(gctx, vbUserID); return err })
	g.Go(func() error { _, err := s.tasks.List(gctx, vbUserID); return err })
	g.Go(func() error { _, err := s.rewards.List(gctx, vbUserID); return err })
	g.Go(func() error { _, err := s.purchases.List(gctx, vbUserID); return err })
	g.Go(func() error { _, err := s.actionDeposits.List(gctx, vbUserID); return err })
	g.Go(func() error { _, err := s.taskDeposits.List(gctx, vbUserID); return err })
	g.Go(func() error { return s.refreshBalanceErr(gctx, vbUserID) })
	return g.Wait()
}

// reconcileSelection keeps the selection consistent with a new user
// cache: a removed user is deselected, a renamed one picks up new fields.
func (s *Store) reconcileSelection(users map[string]domain.User) {
	s.selMu.Lock()
	if s.current == nil {
		s.selMu.Unlock()
		return
	}
	fresh, ok := users[s.current.ID]
	if ok {
		s.current = &fresh
		s.selMu.Unlock()
		return
	}
	dropped := s.current.ID
	s.current = nil
	s.selMu.Unlock()

	s.resetBalance()
	s.log.Info().Str("vb_user_id", dropped).Msg("selected user removed, selection cleared")
}

// saveSession persists the selection for the bound owner.
func (s *Store) saveSession(ctx context.Context) {
	s.selMu.RLock()
	owner := s.owner
	var currentID string
	if s.current != nil {
		currentID = s.current.ID
	}
	s.selMu.RUnlock()

	if s.sessions == nil || owner == "" {
		return
	}

	session := domain.Session{CurrentUserID: currentID}
	bal, hasBal := s.Balance()
	for _, u := range s.users.Items() {
		tokens := u.CurrentTokens
		if hasBal && bal.VBUserID == u.ID {
			tokens = bal.Tokens
		}
		session.UserTokens = append(session.UserTokens, domain.UserTokens{User: u, CurrentTokens: tokens})
	}
	if err := s.sessions.Save(ctx, owner, session); err != nil {
		s.log.Warn().Err(err).Msg("failed to save session")
	}
}
