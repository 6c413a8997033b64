package cli

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/service"
	"github.com/vicebank/vicebank-client/internal/pkg/timeutil"
)

const dateLayout = "2006-01-02"

func textField[T any](name, usage string, required bool, target func(*T) *string) field[T] {
	return field[T]{name: name, usage: usage, required: required, apply: func(_ *App, item *T, v string) error {
		if v == "" {
			return commandError("--%s must not be empty", name)
		}
		*target(item) = v
		return nil
	}}
}

func amountField[T any](name, usage string, required bool, target func(*T) *decimal.Decimal) field[T] {
	return field[T]{name: name, usage: usage, required: required, apply: func(_ *App, item *T, v string) error {
		d, err := parseAmount(name, v)
		if err != nil {
			return err
		}
		if d.IsNegative() {
			return commandError("--%s must not be negative", name)
		}
		*target(item) = d
		return nil
	}}
}

// dateField replaces the calendar day of the target time, keeping its
// clock.
func dateField[T any](target func(*T) *time.Time) field[T] {
	return field[T]{name: "date", usage: "day in " + dateLayout + " form, default today", apply: func(_ *App, item *T, v string) error {
		day, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return commandError("--date must look like %s, got %q", dateLayout, v)
		}
		t := target(item)
		local := t.In(time.Local)
		*t = timeutil.At(day, local.Hour(), local.Minute())
		return nil
	}}
}

// clockField replaces the time of day of the target, keeping its day.
func clockField[T any](target func(*T) *time.Time) field[T] {
	return field[T]{name: "at", usage: "time of day such as 7:15pm, default now", apply: func(_ *App, item *T, v string) error {
		hour, minute, err := timeutil.ParseClock(v)
		if err != nil {
			return &ExitError{Code: ExitCommandError, Message: "invalid --at", Err: err}
		}
		t := target(item)
		*t = timeutil.At(t.In(time.Local), hour, minute)
		return nil
	}}
}

func newActionsCommand(opts *RootOptions) *cobra.Command {
	return resourceCommand[domain.Action]{
		use:        "actions",
		short:      "Measurable activities that earn tokens",
		collection: (*service.Store).Actions,
		fields: []field[domain.Action]{
			textField("name", "action name", true, func(a *domain.Action) *string { return &a.Name }),
			textField("unit", "conversion unit, e.g. minutes", true, func(a *domain.Action) *string { return &a.ConversionUnit }),
			amountField("input-quantity", "units per payout, default 1", false, func(a *domain.Action) *decimal.Decimal { return &a.InputQuantity }),
			amountField("tokens", "tokens earned per payout", true, func(a *domain.Action) *decimal.Decimal { return &a.TokensEarnedPerInput }),
			amountField("min", "smallest deposit, default 0", false, func(a *domain.Action) *decimal.Decimal { return &a.MinDeposit }),
			amountField("max", "largest deposit", true, func(a *domain.Action) *decimal.Decimal { return &a.MaxDeposit }),
		},
		draft: func(_ *App, user domain.User) domain.Action {
			return domain.Action{VBUserID: user.ID, InputQuantity: decimal.NewFromInt(1)}
		},
		check: func(a domain.Action) error {
			if a.InputQuantity.IsZero() {
				return commandError("--input-quantity must be greater than 0")
			}
			if a.MaxDeposit.LessThan(a.MinDeposit) {
				return commandError("--max must be at least --min")
			}
			return nil
		},
		id:     func(a domain.Action) string { return a.ID },
		view:   func(a domain.Action) any { return toActionView(a) },
		row:    func(a domain.Action) []string { return actionRow(toActionView(a)) },
		header: actionHeader,
	}.command(opts)
}

func newTasksCommand(opts *RootOptions) *cobra.Command {
	return resourceCommand[domain.Task]{
		use:        "tasks",
		short:      "Recurring chores worth a fixed number of tokens",
		collection: (*service.Store).Tasks,
		fields: []field[domain.Task]{
			textField("name", "task name", true, func(t *domain.Task) *string { return &t.Name }),
			{name: "frequency", usage: "daily, weekly or monthly", required: true, apply: func(_ *App, t *domain.Task, v string) error {
				switch f := domain.Frequency(v); f {
				case domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly:
					t.Frequency = f
					return nil
				}
				return commandError("--frequency must be daily, weekly or monthly, got %q", v)
			}},
			amountField("tokens", "tokens earned per completion", true, func(t *domain.Task) *decimal.Decimal { return &t.TokensEarnedPerInput }),
		},
		draft:  func(_ *App, user domain.User) domain.Task { return domain.Task{VBUserID: user.ID} },
		id:     func(t domain.Task) string { return t.ID },
		view:   func(t domain.Task) any { return toTaskView(t) },
		row:    func(t domain.Task) []string { return taskRow(toTaskView(t)) },
		header: taskHeader,
	}.command(opts)
}

func newRewardsCommand(opts *RootOptions) *cobra.Command {
	return resourceCommand[domain.Reward]{
		use:        "rewards",
		short:      "Things to spend tokens on",
		collection: (*service.Store).Rewards,
		fields: []field[domain.Reward]{
			textField("name", "reward name", true, func(r *domain.Reward) *string { return &r.Name }),
			amountField("price", "price in tokens", true, func(r *domain.Reward) *decimal.Decimal { return &r.Price }),
		},
		draft:  func(_ *App, user domain.User) domain.Reward { return domain.Reward{VBUserID: user.ID} },
		id:     func(r domain.Reward) string { return r.ID },
		view:   func(r domain.Reward) any { return toRewardView(r) },
		row:    func(r domain.Reward) []string { return rewardRow(toRewardView(r)) },
		header: rewardHeader,
	}.command(opts)
}

func newActionDepositsCommand(opts *RootOptions) *cobra.Command {
	return resourceCommand[domain.ActionDeposit]{
		use:        "action-deposits",
		short:      "Record performed actions",
		collection: (*service.Store).ActionDeposits,
		fields: []field[domain.ActionDeposit]{
			{name: "action", usage: "id of the action performed", required: true, apply: func(app *App, d *domain.ActionDeposit, v string) error {
				action, ok := app.Store.Actions().Get(v)
				if !ok {
					return commandError("unknown action %q", v)
				}
				d.Action = action
				return nil
			}},
			amountField("quantity", "amount performed, in the action's unit", true, func(d *domain.ActionDeposit) *decimal.Decimal { return &d.DepositQuantity }),
			dateField(func(d *domain.ActionDeposit) *time.Time { return &d.Date }),
			clockField(func(d *domain.ActionDeposit) *time.Time { return &d.Date }),
		},
		draft: func(app *App, user domain.User) domain.ActionDeposit {
			return domain.ActionDeposit{VBUserID: user.ID, Date: app.now()}
		},
		check: func(d domain.ActionDeposit) error {
			a := d.Action
			if d.DepositQuantity.LessThan(a.MinDeposit) || (a.MaxDeposit.IsPositive() && d.DepositQuantity.GreaterThan(a.MaxDeposit)) {
				return commandError("--quantity for %s must be between %s and %s", a.Name, a.MinDeposit, a.MaxDeposit)
			}
			return nil
		},
		id:     func(d domain.ActionDeposit) string { return d.ID },
		view:   func(d domain.ActionDeposit) any { return toActionDepositView(d) },
		row:    func(d domain.ActionDeposit) []string { return entryRow(toActionDepositView(d)) },
		header: entryHeader,
	}.command(opts)
}

func newTaskDepositsCommand(opts *RootOptions) *cobra.Command {
	return resourceCommand[domain.TaskDeposit]{
		use:        "task-deposits",
		short:      "Record completed tasks",
		collection: (*service.Store).TaskDeposits,
		fields: []field[domain.TaskDeposit]{
			{name: "task", usage: "id of the task completed", required: true, apply: func(app *App, d *domain.TaskDeposit, v string) error {
				task, ok := app.Store.Tasks().Get(v)
				if !ok {
					return commandError("unknown task %q", v)
				}
				d.Task = task
				return nil
			}},
			dateField(func(d *domain.TaskDeposit) *time.Time { return &d.Date }),
			clockField(func(d *domain.TaskDeposit) *time.Time { return &d.Date }),
		},
		draft: func(app *App, user domain.User) domain.TaskDeposit {
			return domain.TaskDeposit{VBUserID: user.ID, Date: app.now()}
		},
		id:     func(d domain.TaskDeposit) string { return d.ID },
		view:   func(d domain.TaskDeposit) any { return toTaskDepositView(d) },
		row:    func(d domain.TaskDeposit) []string { return entryRow(toTaskDepositView(d)) },
		header: entryHeader,
	}.command(opts)
}

func newPurchasesCommand(opts *RootOptions) *cobra.Command {
	return resourceCommand[domain.Purchase]{
		use:        "purchases",
		short:      "Spend tokens on rewards",
		collection: (*service.Store).Purchases,
		fields: []field[domain.Purchase]{
			{name: "reward", usage: "id of the reward bought", required: true, apply: func(app *App, p *domain.Purchase, v string) error {
				reward, ok := app.Store.Rewards().Get(v)
				if !ok {
					return commandError("unknown reward %q", v)
				}
				p.Reward = reward
				return nil
			}},
			{name: "quantity", usage: "how many, default 1", apply: func(_ *App, p *domain.Purchase, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil || n < 1 {
					return commandError("--quantity must be a whole number of at least 1, got %q", v)
				}
				p.PurchasedQuantity = n
				return nil
			}},
			dateField(func(p *domain.Purchase) *time.Time { return &p.Date }),
			clockField(func(p *domain.Purchase) *time.Time { return &p.Date }),
		},
		draft: func(app *App, user domain.User) domain.Purchase {
			return domain.Purchase{VBUserID: user.ID, Date: app.now(), PurchasedQuantity: 1}
		},
		id:     func(p domain.Purchase) string { return p.ID },
		view:   func(p domain.Purchase) any { return toPurchaseView(p) },
		row:    func(p domain.Purchase) []string { return entryRow(toPurchaseView(p)) },
		header: entryHeader,
	}.command(opts)
}
