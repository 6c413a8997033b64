package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// ResourceAPI is the remote CRUD surface shared by every per-user resource.
// Add ignores server-assigned fields on item. Delete returns the server's
// copy of the removed entity.
type ResourceAPI[T any] interface {
	List(ctx context.Context, vbUserID string) ([]T, error)
	Add(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}

// UsersAPI manages the Vice Bank profiles of the authenticated account.
type UsersAPI interface {
	List(ctx context.Context) ([]domain.User, error)
	Add(ctx context.Context, user domain.NewUser) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, vbUserID string) (domain.User, error)
}

// TokensAPI reads a user's token balance as computed by the server.
type TokensAPI interface {
	CurrentTokens(ctx context.Context, vbUserID string) (decimal.Decimal, error)
}

// ViceBankAPI groups every remote operation the store depends on.
type ViceBankAPI interface {
	Users() UsersAPI
	Actions() ResourceAPI[domain.Action]
	Tasks() ResourceAPI[domain.Task]
	Rewards() ResourceAPI[domain.Reward]
	Purchases() ResourceAPI[domain.Purchase]
	ActionDeposits() ResourceAPI[domain.ActionDeposit]
	TaskDeposits() ResourceAPI[domain.TaskDeposit]
	Tokens() TokensAPI
}
