package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/pkg/collect"
	"github.com/vicebank/vicebank-client/internal/pkg/timeutil"
)

type dayView struct {
	Date    string      `json:"date"    yaml:"date"`
	Entries []entryView `json:"entries" yaml:"entries"`
}

func newHistoryCommand(opts *RootOptions) *cobra.Command {
	var limitDays int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Deposits and purchases of the current user, grouped by day",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, _, err := opts.openSelected(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			var entries []entryView
			for _, d := range app.Store.ActionDeposits().Items() {
				entries = append(entries, toActionDepositView(d))
			}
			for _, d := range app.Store.TaskDeposits().Items() {
				entries = append(entries, toTaskDepositView(d))
			}
			for _, p := range app.Store.Purchases().Items() {
				entries = append(entries, toPurchaseView(p))
			}

			days := groupByDay(entries)
			if limitDays > 0 && len(days) > limitDays {
				days = days[:limitDays]
			}

			if opts.Format != "text" {
				return opts.printer(cmd).print(days, nil, nil)
			}
			if len(days) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "(no history)")
				return err
			}
			for i, day := range days {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), day.Date)
				rows := make([][]string, 0, len(day.Entries))
				for _, e := range day.Entries {
					rows = append(rows, entryRow(e))
				}
				if err := writeTable(cmd.OutOrStdout(), entryHeader, rows); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limitDays, "days", 0, "only show the most recent N days")
	return cmd
}

// groupByDay buckets entries by local calendar day, newest day first and
// newest entry first within a day.
func groupByDay(entries []entryView) []dayView {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })

	dayOf := func(e entryView) time.Time { return timeutil.At(e.Date.In(time.Local), 0, 0) }
	groups := collect.GroupBy(entries, dayOf)

	keys := make([]time.Time, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].After(keys[j]) })

	days := make([]dayView, 0, len(keys))
	for _, k := range keys {
		days = append(days, dayView{Date: timeutil.FriendlyDate(k, nil), Entries: groups[k]})
	}
	return days
}
