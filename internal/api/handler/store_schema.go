package handler

import (
	"time"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/service"
)

type selectUserRequest struct {
	VBUserID string `json:"vb_user_id" validate:"required"`
}

// Token amounts are rendered with domain.FormatTokens.

type userResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CurrentTokens string `json:"current_tokens"`
}

type balanceResponse struct {
	VBUserID  string    `json:"vb_user_id"`
	Tokens    string    `json:"tokens"`
	FetchedAt time.Time `json:"fetched_at"`
}

type actionResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ConversionUnit       string `json:"conversion_unit"`
	InputQuantity        string `json:"input_quantity"`
	TokensEarnedPerInput string `json:"tokens_earned_per_input"`
	MinDeposit           string `json:"min_deposit"`
	MaxDeposit           string `json:"max_deposit"`
}

type taskResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Frequency            string `json:"frequency"`
	TokensEarnedPerInput string `json:"tokens_earned_per_input"`
}

type rewardResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type depositResponse struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Quantity string    `json:"quantity,omitempty"`
}

type purchaseResponse struct {
	ID       string    `json:"id"`
	Reward   string    `json:"reward"`
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

type snapshotResponse struct {
	CurrentUser *userResponse      `json:"current_user"`
	Balance     *balanceResponse   `json:"balance"`
	Users       []userResponse     `json:"users"`
	Actions     []actionResponse   `json:"actions"`
	Tasks       []taskResponse     `json:"tasks"`
	Rewards     []rewardResponse   `json:"rewards"`
	Deposits    []depositResponse  `json:"deposits"`
	Purchases   []purchaseResponse `json:"purchases"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, CurrentTokens: domain.FormatTokens(u.CurrentTokens)}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// toSnapshotResponse flattens both deposit kinds into one list.
func toSnapshotResponse(s service.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		Users:     toUserResponses(s.Users),
		Actions:   make([]actionResponse, 0, len(s.Actions)),
		Tasks:     make([]taskResponse, 0, len(s.Tasks)),
		Rewards:   make([]rewardResponse, 0, len(s.Rewards)),
		Deposits:  make([]depositResponse, 0, len(s.ActionDeposits)+len(s.TaskDeposits)),
		Purchases: make([]purchaseResponse, 0, len(s.Purchases)),
	}
	if s.CurrentUser != nil {
		u := toUserResponse(*s.CurrentUser)
		resp.CurrentUser = &u
	}
	if s.Balance != nil {
		resp.Balance = &balanceResponse{
			VBUserID:  s.Balance.VBUserID,
			Tokens:    domain.FormatTokens(s.Balance.Tokens),
			FetchedAt: s.Balance.FetchedAt,
		}
	}
	for _, a := range s.Actions {
		resp.Actions = append(resp.Actions, actionResponse{
			ID:                   a.ID,
			Name:                 a.Name,
			ConversionUnit:       a.ConversionUnit,
			InputQuantity:        a.InputQuantity.String(),
			TokensEarnedPerInput: domain.FormatTokens(a.TokensEarnedPerInput),
			MinDeposit:           a.MinDeposit.String(),
			MaxDeposit:           a.MaxDeposit.String(),
		})
	}
	for _, t := range s.Tasks {
		resp.Tasks = append(resp.Tasks, taskResponse{
			ID:                   t.ID,
			Name:                 t.Name,
			Frequency:            string(t.Frequency),
			TokensEarnedPerInput: domain.FormatTokens(t.TokensEarnedPerInput),
		})
	}
	for _, r := range s.Rewards {
		resp.Rewards = append(resp.Rewards, rewardResponse{ID: r.ID, Name: r.Name, Price: domain.FormatTokens(r.Price)})
	}
	for _, d := range s.ActionDeposits {
		resp.Deposits = append(resp.Deposits, depositResponse{
			ID:       d.ID,
			Kind:     "action",
			Name:     d.Action.Name,
			Date:     d.Date,
			Quantity: d.DepositQuantity.String(),
		})
	}
	for _, d := range s.TaskDeposits {
		resp.Deposits = append(resp.Deposits, depositResponse{ID: d.ID, Kind: "task", Name: d.Task.Name, Date: d.Date})
	}
	for _, p := range s.Purchases {
		resp.Purchases = append(resp.Purchases, purchaseResponse{
			ID:       p.ID,
			Reward:   p.Reward.Name,
			Date:     p.Date,
			Quantity: p.PurchasedQuantity,
		})
	}
	return resp
}
