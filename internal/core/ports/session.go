package ports

import (
	"context"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// SessionStore keeps the current selection across processes, keyed by the
// authenticated account. Load returns domain.ErrSessionNotFound when
// nothing was saved.
type SessionStore interface {
	Load(ctx context.Context, owner string) (domain.Session, error)
	Save(ctx context.Context, owner string, session domain.Session) error
	Clear(ctx context.Context, owner string) error
}
