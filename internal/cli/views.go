package cli

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/pkg/timeutil"
)

// Views are what json and yaml output encode. Token amounts are rendered
// with domain.FormatTokens.

type userView struct {
	ID       string `json:"id"       yaml:"id"`
	Name     string `json:"name"     yaml:"name"`
	Tokens   string `json:"tokens"   yaml:"tokens"`
	Selected bool   `json:"selected" yaml:"selected"`
}

func toUserView(u domain.User, selected string) userView {
	return userView{ID: u.ID, Name: u.Name, Tokens: domain.FormatTokens(u.CurrentTokens), Selected: u.ID == selected}
}

func userRow(v userView) []string {
	mark := ""
	if v.Selected {
		mark = "*"
	}
	return []string{mark, v.ID, v.Name, v.Tokens}
}

var userHeader = []string{"", "ID", "NAME", "TOKENS"}

type actionView struct {
	ID             string `json:"id"               yaml:"id"`
	Name           string `json:"name"             yaml:"name"`
	ConversionUnit string `json:"conversion_unit"  yaml:"conversion_unit"`
	InputQuantity  string `json:"input_quantity"   yaml:"input_quantity"`
	Tokens         string `json:"tokens_per_input" yaml:"tokens_per_input"`
	MinDeposit     string `json:"min_deposit"      yaml:"min_deposit"`
	MaxDeposit     string `json:"max_deposit"      yaml:"max_deposit"`
}

func toActionView(a domain.Action) actionView {
	return actionView{
		ID:             a.ID,
		Name:           a.Name,
		ConversionUnit: a.ConversionUnit,
		InputQuantity:  a.InputQuantity.String(),
		Tokens:         domain.FormatTokens(a.TokensEarnedPerInput),
		MinDeposit:     a.MinDeposit.String(),
		MaxDeposit:     a.MaxDeposit.String(),
	}
}

func actionRow(v actionView) []string {
	return []string{v.ID, v.Name, v.InputQuantity + " " + v.ConversionUnit, v.Tokens, v.MinDeposit + "-" + v.MaxDeposit}
}

var actionHeader = []string{"ID", "NAME", "PER", "TOKENS", "RANGE"}

type taskView struct {
	ID        string `json:"id"        yaml:"id"`
	Name      string `json:"name"      yaml:"name"`
	Frequency string `json:"frequency" yaml:"frequency"`
	Tokens    string `json:"tokens"    yaml:"tokens"`
}

func toTaskView(t domain.Task) taskView {
	return taskView{ID: t.ID, Name: t.Name, Frequency: string(t.Frequency), Tokens: domain.FormatTokens(t.TokensEarnedPerInput)}
}

func taskRow(v taskView) []string { return []string{v.ID, v.Name, v.Frequency, v.Tokens} }

var taskHeader = []string{"ID", "NAME", "FREQUENCY", "TOKENS"}

type rewardView struct {
	ID    string `json:"id"    yaml:"id"`
	Name  string `json:"name"  yaml:"name"`
	Price string `json:"price" yaml:"price"`
}

func toRewardView(r domain.Reward) rewardView {
	return rewardView{ID: r.ID, Name: r.Name, Price: domain.FormatTokens(r.Price)}
}

func rewardRow(v rewardView) []string { return []string{v.ID, v.Name, v.Price} }

var rewardHeader = []string{"ID", "NAME", "PRICE"}

// entryView is one line of history: a deposit (positive tokens) or a
// purchase (negative tokens).
type entryView struct {
	ID       string    `json:"id"       yaml:"id"`
	Kind     string    `json:"kind"     yaml:"kind"`
	Name     string    `json:"name"     yaml:"name"`
	Date     time.Time `json:"date"     yaml:"date"`
	Quantity string    `json:"quantity" yaml:"quantity"`
	Tokens   string    `json:"tokens"   yaml:"tokens"`
}

func entryRow(v entryView) []string {
	return []string{v.ID, timeutil.FriendlyDate(v.Date, nil), clock(v.Date), v.Name, v.Quantity, v.Tokens}
}

var entryHeader = []string{"ID", "DATE", "TIME", "NAME", "QTY", "TOKENS"}

func toActionDepositView(d domain.ActionDeposit) entryView {
	earned := d.Action.TokensEarnedPerInput
	if !d.Action.InputQuantity.IsZero() {
		earned = d.DepositQuantity.Div(d.Action.InputQuantity).Mul(earned)
	}
	return entryView{
		ID:       d.ID,
		Kind:     "action",
		Name:     d.Action.Name,
		Date:     d.Date,
		Quantity: d.DepositQuantity.String() + " " + d.Action.ConversionUnit,
		Tokens:   "+" + domain.FormatTokens(earned),
	}
}

func toTaskDepositView(d domain.TaskDeposit) entryView {
	return entryView{
		ID:       d.ID,
		Kind:     "task",
		Name:     d.Task.Name,
		Date:     d.Date,
		Quantity: "1",
		Tokens:   "+" + domain.FormatTokens(d.Task.TokensEarnedPerInput),
	}
}

func toPurchaseView(p domain.Purchase) entryView {
	spent := p.Reward.Price.Mul(decimal.NewFromInt(int64(p.PurchasedQuantity)))
	return entryView{
		ID:       p.ID,
		Kind:     "purchase",
		Name:     p.Reward.Name,
		Date:     p.Date,
		Quantity: strconv.Itoa(p.PurchasedQuantity),
		Tokens:   "-" + domain.FormatTokens(spent),
	}
}

// clock renders t on the 12-hour clock in local time, e.g. "7:05 PM".
func clock(t time.Time) string {
	local := t.Local()
	suffix := "AM"
	if local.Hour() >= 12 {
		suffix = "PM"
	}
	return strconv.Itoa(timeutil.Convert24To12(local.Hour())) + local.Format(":04 ") + suffix
}
