package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/service"
)

// field is one flag shared by the add and update commands of a resource.
// Fields are applied in declaration order.
type field[T any] struct {
	name  string
	usage string
	// required fields must be given on add.
	required bool
	apply    func(app *App, item *T, value string) error
}

// resourceCommand builds list/add/update/delete for one per-user resource.
type resourceCommand[T any] struct {
	use   string
	short string

	collection func(*service.Store) *service.Collection[T]
	fields     []field[T]
	// draft is the starting point of add, owned by user.
	draft func(app *App, user domain.User) T
	// check runs after the fields are applied.
	check func(T) error
	id    func(T) string

	view   func(T) any
	row    func(T) []string
	header []string
}

func (r resourceCommand[T]) command(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: r.use, Short: r.short}
	cmd.AddCommand(r.listCommand(opts), r.addCommand(opts), r.updateCommand(opts), r.deleteCommand(opts))
	return cmd
}

func (r resourceCommand[T]) print(opts *RootOptions, cmd *cobra.Command, items ...T) error {
	views := make([]any, 0, len(items))
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		views = append(views, r.view(item))
		rows = append(rows, r.row(item))
	}
	if len(items) == 1 && cmd.Name() != "list" {
		return opts.printer(cmd).print(views[0], r.header, rows)
	}
	return opts.printer(cmd).print(views, r.header, rows)
}

func (r resourceCommand[T]) listCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List " + r.use + " of the current user",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, _, err := opts.openSelected(ctx)
			if err != nil {
				return err
			}
			defer app.Close(ctx)
			return r.print(opts, cmd, r.collection(app.Store).Items()...)
		},
	}
}

func (r resourceCommand[T]) bindFlags(cmd *cobra.Command) []string {
	values := make([]string, len(r.fields))
	for i, f := range r.fields {
		usage := f.usage
		if f.required && cmd.Name() == "add" {
			usage += " (required)"
		}
		cmd.Flags().StringVar(&values[i], f.name, "", usage)
	}
	return values
}

func (r resourceCommand[T]) applyFlags(cmd *cobra.Command, app *App, item *T, values []string, adding bool) error {
	var missing []string
	changed := 0
	for i, f := range r.fields {
		if !cmd.Flags().Changed(f.name) {
			if adding && f.required {
				missing = append(missing, "--"+f.name)
			}
			continue
		}
		changed++
		if err := f.apply(app, item, values[i]); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return commandError("missing required flag(s): %s", strings.Join(missing, ", "))
	}
	if !adding && changed == 0 {
		return commandError("nothing to update: pass at least one flag")
	}
	if r.check != nil {
		if err := r.check(*item); err != nil {
			return err
		}
	}
	return nil
}

func (r resourceCommand[T]) addCommand(opts *RootOptions) *cobra.Command {
	var values []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one of the current user's " + r.use,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.write(cmd, opts, func(ctx context.Context, app *App, user domain.User) (service.MutationResult[T], error) {
				item := r.draft(app, user)
				if err := r.applyFlags(cmd, app, &item, values, true); err != nil {
					return service.MutationResult[T]{}, err
				}
				return r.collection(app.Store).Create(ctx, item)
			})
		},
	}
	values = r.bindFlags(cmd)
	return cmd
}

func (r resourceCommand[T]) updateCommand(opts *RootOptions) *cobra.Command {
	var values []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change one of the current user's " + r.use,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.write(cmd, opts, func(ctx context.Context, app *App, _ domain.User) (service.MutationResult[T], error) {
				item, ok := r.collection(app.Store).Get(args[0])
				if !ok {
					return service.MutationResult[T]{}, commandError("unknown id %q", args[0])
				}
				if err := r.applyFlags(cmd, app, &item, values, false); err != nil {
					return service.MutationResult[T]{}, err
				}
				return r.collection(app.Store).Update(ctx, item)
			})
		},
	}
	values = r.bindFlags(cmd)
	return cmd
}

func (r resourceCommand[T]) deleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of the current user's " + r.use,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.write(cmd, opts, func(ctx context.Context, app *App, _ domain.User) (service.MutationResult[T], error) {
				return r.collection(app.Store).Delete(ctx, args[0])
			})
		},
	}
}

// write runs one mutation for the current user and prints the server's
// copy of the entity.
func (r resourceCommand[T]) write(
	cmd *cobra.Command,
	opts *RootOptions,
	mutate func(ctx context.Context, app *App, user domain.User) (service.MutationResult[T], error),
) error {
	ctx := cmd.Context()
	app, user, err := opts.openSelected(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	res, err := mutate(ctx, app, user)
	if err != nil {
		return err
	}
	app.Logs.Info(ctx, cmd.CommandPath()+" "+r.id(res.Item))
	warnStale(cmd, res.Err())
	return r.print(opts, cmd, res.Item)
}
