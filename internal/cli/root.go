package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/infrastructure/config"
	"github.com/vicebank/vicebank-client/pkg/logger"
)

// Loader builds the App for one invocation.
type Loader func(ctx context.Context, opts *RootOptions) (*App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	// User overrides the saved selection for this invocation.
	User string

	load Loader
}

// NewRootCommand creates the vicebank command tree wired from the
// environment.
func NewRootCommand() *cobra.Command {
	return newRootCommand(loadFromEnv)
}

func newRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{load: load}

	cmd := &cobra.Command{
		Use:   "vicebank",
		Short: "Vice Bank client",
		Long: `Track actions, tasks and rewards against a Vice Bank server.

Deposits earn tokens, purchases spend them. Diagnostic events are kept in a
local log database for one calendar month.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return commandError("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitCommandError, Message: "invalid flags", Err: err}
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.User, "user", "u", "", "vice bank user id to act as")

	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newActionsCommand(opts))
	cmd.AddCommand(newTasksCommand(opts))
	cmd.AddCommand(newRewardsCommand(opts))
	cmd.AddCommand(newPurchasesCommand(opts))
	cmd.AddCommand(newActionDepositsCommand(opts))
	cmd.AddCommand(newTaskDepositsCommand(opts))
	cmd.AddCommand(newBalanceCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newLogsCommand(opts))
	cmd.AddCommand(newServeCommand(opts))

	return cmd
}

func loadFromEnv(ctx context.Context, opts *RootOptions) (*App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "invalid configuration", Err: err}
	}
	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level, Pretty: cfg.LogPretty && !cfg.IsProduction()})
	return Bootstrap(ctx, cfg, logger.Component("cli"))
}

func (o *RootOptions) printer(cmd *cobra.Command) printer {
	return printer{format: o.Format, w: cmd.OutOrStdout()}
}

// open builds the App without contacting the Vice Bank server.
func (o *RootOptions) open(ctx context.Context) (*App, error) {
	return o.load(ctx, o)
}

// openUsers builds the App and loads the user list and selection.
func (o *RootOptions) openUsers(ctx context.Context) (*App, error) {
	app, err := o.open(ctx)
	if err != nil {
		return nil, err
	}
	if err := app.Prepare(ctx, o.User); err != nil {
		app.Close(ctx)
		return nil, err
	}
	return app, nil
}

// openSelected additionally requires a selected user and fetches all of
// that user's data.
func (o *RootOptions) openSelected(ctx context.Context) (*App, domain.User, error) {
	app, err := o.openUsers(ctx)
	if err != nil {
		return nil, domain.User{}, err
	}
	user, err := app.CurrentUser()
	if err == nil {
		err = app.Store.RefreshCurrent(ctx)
	}
	if err != nil {
		app.Close(ctx)
		return nil, domain.User{}, err
	}
	return app, user, nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return commandError("%s expects %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// warnStale reports a write whose follow-up fetch failed.
func warnStale(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: saved, but the local copy may be stale: %v\n", err)
	}
}
