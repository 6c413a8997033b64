package ports

import "context"

// TokenSource yields the credential attached to every API request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
