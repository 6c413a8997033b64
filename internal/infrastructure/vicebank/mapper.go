package vicebank

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// requestDateLayout is how dates are sent to the server (UTC, millisecond
// precision).
const requestDateLayout = "2006-01-02T15:04:05.000Z07:00"

func ptr[T any](v T) *T { return &v }

func formatDate(t time.Time) string { return t.UTC().Format(requestDateLayout) }

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a timestamp in the form %s", field, isoLayout)
	}
	return t, nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// fromWire conversions assume the wire value already passed validation, so
// every required pointer is non-nil.

func userFromWire(w userWire) (domain.User, error) {
	return domain.User{
		ID:            *w.ID,
		UserID:        *w.UserID,
		Name:          *w.Name,
		CurrentTokens: decimal.NewFromFloat(*w.CurrentTokens),
	}, nil
}

func userToWire(u domain.User) userWire {
	return userWire{
		ID:            ptr(u.ID),
		UserID:        ptr(u.UserID),
		Name:          ptr(u.Name),
		CurrentTokens: ptr(toFloat(u.CurrentTokens)),
	}
}

func actionFromWire(w actionWire) (domain.Action, error) {
	return domain.Action{
		ID:                   *w.ID,
		VBUserID:             *w.VBUserID,
		Name:                 *w.Name,
		ConversionUnit:       *w.ConversionUnit,
		InputQuantity:        decimal.NewFromFloat(*w.InputQuantity),
		TokensEarnedPerInput: decimal.NewFromFloat(*w.TokensEarnedPerInput),
		MinDeposit:           decimal.NewFromFloat(*w.MinDeposit),
		MaxDeposit:           decimal.NewFromFloat(*w.MaxDeposit),
	}, nil
}

func actionToWire(a domain.Action) actionWire {
	return actionWire{
		ID:                   ptr(a.ID),
		VBUserID:             ptr(a.VBUserID),
		Name:                 ptr(a.Name),
		ConversionUnit:       ptr(a.ConversionUnit),
		InputQuantity:        ptr(toFloat(a.InputQuantity)),
		TokensEarnedPerInput: ptr(toFloat(a.TokensEarnedPerInput)),
		MinDeposit:           ptr(toFloat(a.MinDeposit)),
		MaxDeposit:           ptr(toFloat(a.MaxDeposit)),
	}
}

func newAction(a domain.Action) any {
	return newActionRequest{
		VBUserID:             a.VBUserID,
		Name:                 a.Name,
		ConversionUnit:       a.ConversionUnit,
		InputQuantity:        toFloat(a.InputQuantity),
		TokensEarnedPerInput: toFloat(a.TokensEarnedPerInput),
		MinDeposit:           toFloat(a.MinDeposit),
		MaxDeposit:           toFloat(a.MaxDeposit),
	}
}

func taskFromWire(w taskWire) (domain.Task, error) {
	return domain.Task{
		ID:                   *w.ID,
		VBUserID:             *w.VBUserID,
		Name:                 *w.Name,
		Frequency:            domain.Frequency(*w.Frequency),
		TokensEarnedPerInput: decimal.NewFromFloat(*w.TokensEarnedPerInput),
	}, nil
}

func taskToWire(t domain.Task) taskWire {
	return taskWire{
		ID:                   ptr(t.ID),
		VBUserID:             ptr(t.VBUserID),
		Name:                 ptr(t.Name),
		Frequency:            ptr(string(t.Frequency)),
		TokensEarnedPerInput: ptr(toFloat(t.TokensEarnedPerInput)),
	}
}

func newTask(t domain.Task) any {
	return newTaskRequest{
		VBUserID:             t.VBUserID,
		Name:                 t.Name,
		Frequency:            string(t.Frequency),
		TokensEarnedPerInput: toFloat(t.TokensEarnedPerInput),
	}
}

func rewardFromWire(w rewardWire) (domain.Reward, error) {
	return domain.Reward{
		ID:       *w.ID,
		VBUserID: *w.VBUserID,
		Name:     *w.Name,
		Price:    decimal.NewFromFloat(*w.Price),
	}, nil
}

func rewardToWire(r domain.Reward) rewardWire {
	return rewardWire{
		ID:       ptr(r.ID),
		VBUserID: ptr(r.VBUserID),
		Name:     ptr(r.Name),
		Price:    ptr(toFloat(r.Price)),
	}
}

func newReward(r domain.Reward) any {
	return newRewardRequest{
		VBUserID: r.VBUserID,
		Name:     r.Name,
		Price:    toFloat(r.Price),
	}
}

func actionDepositFromWire(w actionDepositWire) (domain.ActionDeposit, error) {
	date, err := parseDate("date", *w.Date)
	if err != nil {
		return domain.ActionDeposit{}, err
	}
	action, _ := actionFromWire(*w.Action)
	return domain.ActionDeposit{
		ID:              *w.ID,
		VBUserID:        *w.VBUserID,
		Date:            date,
		DepositQuantity: decimal.NewFromFloat(*w.DepositQuantity),
		Action:          action,
	}, nil
}

func actionDepositToWire(d domain.ActionDeposit) actionDepositWire {
	return actionDepositWire{
		ID:              ptr(d.ID),
		VBUserID:        ptr(d.VBUserID),
		Date:            ptr(formatDate(d.Date)),
		DepositQuantity: ptr(toFloat(d.DepositQuantity)),
		Action:          ptr(actionToWire(d.Action)),
	}
}

func newActionDeposit(d domain.ActionDeposit) any {
	return newActionDepositRequest{
		VBUserID:        d.VBUserID,
		Date:            formatDate(d.Date),
		DepositQuantity: toFloat(d.DepositQuantity),
		Action:          actionToWire(d.Action),
	}
}

func taskDepositFromWire(w taskDepositWire) (domain.TaskDeposit, error) {
	date, err := parseDate("date", *w.Date)
	if err != nil {
		return domain.TaskDeposit{}, err
	}
	task, _ := taskFromWire(*w.Task)
	return domain.TaskDeposit{
		ID:       *w.ID,
		VBUserID: *w.VBUserID,
		Date:     date,
		Task:     task,
	}, nil
}

func taskDepositToWire(d domain.TaskDeposit) taskDepositWire {
	return taskDepositWire{
		ID:       ptr(d.ID),
		VBUserID: ptr(d.VBUserID),
		Date:     ptr(formatDate(d.Date)),
		Task:     ptr(taskToWire(d.Task)),
	}
}

func newTaskDeposit(d domain.TaskDeposit) any {
	return newTaskDepositRequest{
		VBUserID: d.VBUserID,
		Date:     formatDate(d.Date),
		Task:     taskToWire(d.Task),
	}
}

func purchaseFromWire(w purchaseWire) (domain.Purchase, error) {
	date, err := parseDate("date", *w.Date)
	if err != nil {
		return domain.Purchase{}, err
	}
	reward, _ := rewardFromWire(*w.Reward)
	return domain.Purchase{
		ID:                *w.ID,
		VBUserID:          *w.VBUserID,
		Date:              date,
		PurchasedQuantity: *w.PurchasedQuantity,
		Reward:            reward,
	}, nil
}

func purchaseToWire(p domain.Purchase) purchaseWire {
	return purchaseWire{
		ID:                ptr(p.ID),
		VBUserID:          ptr(p.VBUserID),
		Date:              ptr(formatDate(p.Date)),
		PurchasedQuantity: ptr(p.PurchasedQuantity),
		Reward:            ptr(rewardToWire(p.Reward)),
	}
}

func newPurchase(p domain.Purchase) any {
	return newPurchaseRequest{
		VBUserID:          p.VBUserID,
		Date:              formatDate(p.Date),
		PurchasedQuantity: p.PurchasedQuantity,
		Reward:            rewardToWire(p.Reward),
	}
}
