package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

type balanceView struct {
	VBUserID  string    `json:"vb_user_id" yaml:"vb_user_id"`
	Name      string    `json:"name"       yaml:"name"`
	Tokens    string    `json:"tokens"     yaml:"tokens"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

func newBalanceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current user's token balance",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := opts.openUsers(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}
			bal, ok := app.Store.Balance()
			if !ok || bal.VBUserID != user.ID {
				if _, err := app.Store.RefreshBalance(ctx, user.ID); err != nil {
					return err
				}
				bal, _ = app.Store.Balance()
			}

			v := balanceView{VBUserID: user.ID, Name: user.Name, Tokens: domain.FormatTokens(bal.Tokens), FetchedAt: bal.FetchedAt}
			if opts.Format == "text" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s has %s tokens\n", v.Name, v.Tokens)
				return err
			}
			return opts.printer(cmd).print(v, nil, nil)
		},
	}
}
