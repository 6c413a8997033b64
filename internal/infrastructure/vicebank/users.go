package vicebank

import (
	"context"
	"errors"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

type usersAPI struct {
	c *Client
}

func (u *usersAPI) List(ctx context.Context) ([]domain.User, error) {
	const op = "list users"
	raw, err := u.c.get(ctx, op, "/vice_bank/users", nil)
	if err != nil {
		return nil, err
	}
	inner, err := envelope(op, raw, "users")
	if err != nil {
		return nil, err
	}
	wires, err := decodeList[userWire](u.c, op, inner)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(wires))
	for _, w := range wires {
		user, _ := userFromWire(w)
		users = append(users, user)
	}
	return users, nil
}

func (u *usersAPI) Add(ctx context.Context, user domain.NewUser) (domain.User, error) {
	body := map[string]newUserRequest{
		"userToAdd": {Name: user.Name, CurrentTokens: toFloat(user.CurrentTokens)},
	}
	return u.send(ctx, "add user", "/vice_bank/addUser", body)
}

func (u *usersAPI) Update(ctx context.Context, user domain.User) (domain.User, error) {
	return u.send(ctx, "update user", "/vice_bank/updateUser", map[string]userWire{"vbUser": userToWire(user)})
}

func (u *usersAPI) Delete(ctx context.Context, vbUserID string) (domain.User, error) {
	if vbUserID == "" {
		return domain.User{}, errors.New("delete user: id is required")
	}
	return u.send(ctx, "delete user", "/vice_bank/deleteUser", map[string]string{"vbUserId": vbUserID})
}

func (u *usersAPI) send(ctx context.Context, op, path string, body any) (domain.User, error) {
	raw, err := u.c.post(ctx, op, path, body)
	if err != nil {
		return domain.User{}, err
	}
	inner, err := envelope(op, raw, "user")
	if err != nil {
		return domain.User{}, err
	}
	w, err := decodeOne[userWire](u.c, op, inner)
	if err != nil {
		return domain.User{}, err
	}
	return userFromWire(w)
}

type tokensAPI struct {
	c *Client
}

// CurrentTokens reads the server-computed balance for vbUserID.
func (t *tokensAPI) CurrentTokens(ctx context.Context, vbUserID string) (decimal.Decimal, error) {
	const op = "get current tokens"
	raw, err := t.c.get(ctx, op, "/vice_bank/currentTokens", url.Values{"vbUserId": {vbUserID}})
	if err != nil {
		return decimal.Zero, err
	}
	w, err := decodeOne[currentTokensWire](t.c, op, raw)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(*w.CurrentTokens), nil
}
