package domain

import "github.com/shopspring/decimal"

// User is a Vice Bank profile. Several profiles can belong to one
// authenticated account (UserID).
type User struct {
	ID            string
	UserID        string
	Name          string
	CurrentTokens decimal.Decimal
}

// NewUser carries the fields a client may set when adding a profile.
type NewUser struct {
	Name          string
	CurrentTokens decimal.Decimal
}

// UserTokens pairs a profile with the last balance read for it.
type UserTokens struct {
	User          User
	CurrentTokens decimal.Decimal
}

// Session is the locally persisted selection state for one account.
type Session struct {
	CurrentUserID string
	UserTokens    []UserTokens
}
