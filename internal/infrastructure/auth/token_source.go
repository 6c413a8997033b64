// Package auth provides the credentials attached to Vice Bank API calls.
// The identity provider itself is external; a token is either supplied
// verbatim or minted locally as an HS256 JWT for development servers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
)

// refreshMargin is how long before expiry a minted token is replaced.
const refreshMargin = 30 * time.Second

// StaticTokenSource returns a fixed token.
type StaticTokenSource struct {
	Value string
}

var _ ports.TokenSource = StaticTokenSource{}

func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s.Value == "" {
		return "", domain.ErrNotAuthenticated
	}
	return s.Value, nil
}

// SignedTokenSource mints HS256 tokens for one subject and caches each
// until shortly before it expires.
type SignedTokenSource struct {
	secret  []byte
	subject string
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	current string
	expires time.Time
}

var _ ports.TokenSource = (*SignedTokenSource)(nil)

// NewSignedTokenSource returns a source for subject. A nil now uses
// time.Now.
func NewSignedTokenSource(secret []byte, subject string, ttl time.Duration, now func() time.Time) *SignedTokenSource {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedTokenSource{secret: secret, subject: subject, ttl: ttl, now: now}
}

func (s *SignedTokenSource) Token(context.Context) (string, error) {
	if s.subject == "" || len(s.secret) == 0 {
		return "", domain.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current != "" && now.Add(refreshMargin).Before(s.expires) {
		return s.current, nil
	}

	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	s.current, s.expires = signed, expires
	return signed, nil
}

// SubjectOf reads the sub claim without verifying the signature. The
// server verifies tokens; the client only needs the account id to key its
// local session.
func SubjectOf(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("parse token: missing sub claim")
	}
	return claims.Subject, nil
}

// Owner resolves the account id behind source.
func Owner(ctx context.Context, source ports.TokenSource) (string, error) {
	token, err := source.Token(ctx)
	if err != nil {
		return "", err
	}
	return SubjectOf(token)
}
