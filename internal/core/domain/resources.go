package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a task is expected to be completed.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Action is a measurable activity. Depositing InputQuantity units of
// ConversionUnit earns TokensEarnedPerInput tokens.
type Action struct {
	ID                   string
	VBUserID             string
	Name                 string
	ConversionUnit       string
	InputQuantity        decimal.Decimal
	TokensEarnedPerInput decimal.Decimal
	MinDeposit           decimal.Decimal
	MaxDeposit           decimal.Decimal
}

// Task is a recurring chore worth a fixed number of tokens per completion.
type Task struct {
	ID                   string
	VBUserID             string
	Name                 string
	Frequency            Frequency
	TokensEarnedPerInput decimal.Decimal
}

// Reward is something a user can buy with tokens.
type Reward struct {
	ID       string
	VBUserID string
	Name     string
	Price    decimal.Decimal
}

// ActionDeposit records tokens earned by performing an action.
type ActionDeposit struct {
	ID              string
	VBUserID        string
	Date            time.Time
	DepositQuantity decimal.Decimal
	Action          Action
}

// TaskDeposit records tokens earned by completing a task.
type TaskDeposit struct {
	ID       string
	VBUserID string
	Date     time.Time
	Task     Task
}

// Purchase records tokens spent redeeming a reward.
type Purchase struct {
	ID                string
	VBUserID          string
	Date              time.Time
	PurchasedQuantity int
	Reward            Reward
}

// Balance is the token balance last read from the server for a user.
type Balance struct {
	VBUserID  string
	Tokens    decimal.Decimal
	FetchedAt time.Time
}
