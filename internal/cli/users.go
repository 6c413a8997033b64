package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/pkg/collect"
)

func newUsersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the Vice Bank users of this account",
	}
	cmd.AddCommand(newUsersListCommand(opts))
	cmd.AddCommand(newUsersAddCommand(opts))
	cmd.AddCommand(newUsersUpdateCommand(opts))
	cmd.AddCommand(newUsersDeleteCommand(opts))
	cmd.AddCommand(newUsersSelectCommand(opts))
	return cmd
}

func printUsers(opts *RootOptions, cmd *cobra.Command, app *App, users []domain.User) error {
	var selected string
	if u, ok := app.Store.CurrentUser(); ok {
		selected = u.ID
	}
	views := make([]userView, 0, len(users))
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		v := toUserView(u, selected)
		views = append(views, v)
		rows = append(rows, userRow(v))
	}
	return opts.printer(cmd).print(views, userHeader, rows)
}

func printUser(opts *RootOptions, cmd *cobra.Command, app *App, user domain.User) error {
	var selected string
	if u, ok := app.Store.CurrentUser(); ok {
		selected = u.ID
	}
	v := toUserView(user, selected)
	return opts.printer(cmd).print(v, userHeader, [][]string{userRow(v)})
}

func newUsersListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users; the selected one is marked with *",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := opts.openUsers(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)
			return printUsers(opts, cmd, app, app.Store.Users().Items())
		},
	}
}

func newUsersAddCommand(opts *RootOptions) *cobra.Command {
	var name, tokens string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return commandError("--name is required")
			}
			amount, err := parseAmount("tokens", tokens)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := opts.openUsers(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			res, err := app.Store.Users().Create(ctx, name, amount)
			if err != nil {
				return err
			}
			warnStale(cmd, res.Err())
			return printUser(opts, cmd, app, res.Item)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&tokens, "tokens", "0", "starting token balance")
	return cmd
}

func newUsersUpdateCommand(opts *RootOptions) *cobra.Command {
	var name, tokens string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a user or correct their token count",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := opts.openUsers(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, ok := app.Store.Users().Get(args[0])
			if !ok {
				return commandError("unknown user %q", args[0])
			}
			if cmd.Flags().Changed("name") {
				user.Name = name
			}
			if cmd.Flags().Changed("tokens") {
				if user.CurrentTokens, err = parseAmount("tokens", tokens); err != nil {
					return err
				}
			}

			res, err := app.Store.Users().Update(ctx, user)
			if err != nil {
				return err
			}
			warnStale(cmd, res.Err())
			return printUser(opts, cmd, app, res.Item)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&tokens, "tokens", "", "new token count")
	return cmd
}

func newUsersDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user and everything they own",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := opts.openUsers(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			res, err := app.Store.Users().Delete(ctx, args[0])
			if err != nil {
				return err
			}
			warnStale(cmd, res.Err())
			return printUser(opts, cmd, app, res.Item)
		},
	}
}

func newUsersSelectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a user the current one",
		Long:  "Make a user the current one. The choice is remembered when a session store is configured.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := opts.openUsers(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, err := app.Store.SelectUser(ctx, args[0])
			var invalid *domain.InvalidSelectionError
			if errors.As(err, &invalid) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("cannot select %q, known users: %s", args[0], knownUsers(app.Store.Users().Items())), Err: err}
			}
			if err != nil {
				return err
			}
			app.Logs.Info(ctx, "selected user "+user.Name)
			return printUser(opts, cmd, app, user)
		},
	}
}

// knownUsers lists users as "id (name)" sorted by id.
func knownUsers(users []domain.User) string {
	names := collect.ToMappedMap(users,
		func(u domain.User) string { return u.ID },
		func(u domain.User) string { return u.Name })
	if len(names) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s (%s)", id, names[id])
	}
	return strings.Join(parts, ", ")
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, commandError("--%s must be a number, got %q", flag, value)
	}
	return d, nil
}
