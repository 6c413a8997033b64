package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/service"
)

type logEventView struct {
	ID        string    `json:"id"        yaml:"id"`
	Level     string    `json:"level"     yaml:"level"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Message   string    `json:"message"   yaml:"message"`
}

func toLogEventView(e domain.LogEvent) logEventView {
	return logEventView{ID: e.ID, Level: string(e.Level), Timestamp: e.Timestamp, Message: e.Message}
}

func logEventRow(v logEventView) []string {
	return []string{v.Timestamp.Local().Format(time.DateTime), strings.ToUpper(v.Level), v.Message}
}

func newLogsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect and maintain the local event log",
		Long: `Inspect and maintain the local event log.

Events are kept from the first day of last month (UTC) onwards; prune
removes anything older.`,
	}
	cmd.AddCommand(newLogsListCommand(opts))
	cmd.AddCommand(newLogsAddCommand(opts))
	cmd.AddCommand(newLogsPruneCommand(opts))
	cmd.AddCommand(newLogsClearCommand(opts))
	cmd.AddCommand(newLogsExportCommand(opts))
	return cmd
}

func newLogsListCommand(opts *RootOptions) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show retained events, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if level != "" && !domain.LogLevel(level).Valid() {
				return commandError("--level must be info, warning or error, got %q", level)
			}
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			events, err := app.Logs.ReadRecent(ctx)
			if err != nil {
				return err
			}
			views := make([]logEventView, 0, len(events))
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				if level != "" && string(e.Level) != level {
					continue
				}
				v := toLogEventView(e)
				views = append(views, v)
				rows = append(rows, logEventRow(v))
			}
			return opts.printer(cmd).print(views, []string{"TIME", "LEVEL", "MESSAGE"}, rows)
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "only show events of this level")
	return cmd
}

func newLogsAddCommand(opts *RootOptions) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "add <message>",
		Short: "Append an event",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.LogLevel(level).Valid() {
				return commandError("--level must be info, warning or error, got %q", level)
			}
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			event, err := app.Logs.Append(ctx, args[0], domain.LogLevel(level))
			if err != nil {
				return err
			}
			v := toLogEventView(event)
			return opts.printer(cmd).print(v, []string{"TIME", "LEVEL", "MESSAGE"}, [][]string{logEventRow(v)})
		},
	}
	cmd.Flags().StringVar(&level, "level", string(domain.LevelInfo), "info, warning or error")
	return cmd
}

func newLogsPruneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete events older than the retention window",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			before := service.RetentionBoundary(app.now())
			n, err := app.Logs.Prune(ctx)
			if err != nil {
				return err
			}
			return printCount(opts, cmd, "removed", n, "events before "+before.Format(time.DateOnly))
		},
	}
}

func newLogsClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Destroy the local log database",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return commandError("refusing to delete the log database without --yes")
			}
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			if err := app.Logs.Clear(ctx); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", app.Repo.Path())
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newLogsExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Copy retained events to the MongoDB archive",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			n, err := app.Logs.Export(ctx)
			if errors.Is(err, service.ErrArchiveDisabled) {
				return &ExitError{Code: ExitCommandError, Message: "set VB_MONGO_URI to export", Err: err}
			}
			if err != nil {
				return err
			}
			return printCount(opts, cmd, "archived", n, "events")
		},
	}
}

func printCount(opts *RootOptions, cmd *cobra.Command, verb string, n int, what string) error {
	if opts.Format == "text" {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", verb, n, what)
		return err
	}
	return opts.printer(cmd).print(map[string]int{verb: n}, nil, [][]string{{strconv.Itoa(n)}})
}
