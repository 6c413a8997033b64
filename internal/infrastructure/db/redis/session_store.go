package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
)

// SessionStore persists the current user selection per account.
// Key format: vicebank:session:<owner>
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps client. A non-positive ttl keeps sessions until
// cleared.
func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionStore{client: client, ttl: ttl}
}

type sessionDoc struct {
	CurrentUserID string          `json:"currentUserId"`
	VBUserTokens  []userTokensDoc `json:"vbUserTokens"`
}

type userTokensDoc struct {
	VBUser struct {
		ID            string          `json:"id"`
		UserID        string          `json:"userId"`
		Name          string          `json:"name"`
		CurrentTokens decimal.Decimal `json:"currentTokens"`
	} `json:"vbUser"`
	CurrentTokens decimal.Decimal `json:"currentTokens"`
}

func (s *SessionStore) Load(ctx context.Context, owner string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("session load: %w", err)
	}

	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Session{}, fmt.Errorf("session decode: %w", err)
	}

	session := domain.Session{CurrentUserID: doc.CurrentUserID}
	for _, ut := range doc.VBUserTokens {
		session.UserTokens = append(session.UserTokens, domain.UserTokens{
			User: domain.User{
				ID:            ut.VBUser.ID,
				UserID:        ut.VBUser.UserID,
				Name:          ut.VBUser.Name,
				CurrentTokens: ut.VBUser.CurrentTokens,
			},
			CurrentTokens: ut.CurrentTokens,
		})
	}
	return session, nil
}

func (s *SessionStore) Save(ctx context.Context, owner string, session domain.Session) error {
	doc := sessionDoc{CurrentUserID: session.CurrentUserID, VBUserTokens: []userTokensDoc{}}
	for _, ut := range session.UserTokens {
		var d userTokensDoc
		d.VBUser.ID = ut.User.ID
		d.VBUser.UserID = ut.User.UserID
		d.VBUser.Name = ut.User.Name
		d.VBUser.CurrentTokens = ut.User.CurrentTokens
		d.CurrentTokens = ut.CurrentTokens
		doc.VBUserTokens = append(doc.VBUserTokens, d)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(owner), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, s.key(owner)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (s *SessionStore) key(owner string) string {
	return "vicebank:session:" + owner
}
