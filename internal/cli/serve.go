package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vicebank/vicebank-client/internal/api"
	"github.com/vicebank/vicebank-client/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local event log and cached data over HTTP",
		Long: `Serve the local event log and cached data over HTTP.

Routes under /v1 require an HS256 bearer token signed with
VB_SERVE_JWT_SECRET. Log pruning runs in the background every
VB_LOG_PRUNE_INTERVAL.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(ctx))

			if app.Config.Serve.JWTSecret == "" {
				return commandError("VB_SERVE_JWT_SECRET is required to serve")
			}
			if err := app.Prepare(ctx, opts.User); err != nil {
				app.Log.Warn().Err(err).Msg("starting without server data")
			}
			if addr == "" {
				addr = net.JoinHostPort("", app.Config.Serve.Port)
			}
			return serve(ctx, app, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, default :VB_SERVE_PORT")
	return cmd
}

// serve runs the HTTP mirror and the maintenance worker until ctx is
// cancelled.
func serve(ctx context.Context, app *App, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	worker := queue.NewMaintenance(app.Logs, app.Config.EventLog.PruneInterval, app.Log)
	workerDone := worker.Start(ctx)

	e := api.NewRouter(api.Deps{
		Logs:        app.Logs,
		Store:       app.Store,
		Users:       app.Store.Users(),
		Checks:      app.Checks,
		Maintenance: worker,
		JWTSecret:   app.Config.Serve.JWTSecret,
		Docs:        !app.Config.IsProduction(),
		Log:         app.Log.With().Str("component", "http").Logger(),
	})

	errCh := make(chan error, 1)
	go func() {
		app.Log.Info().Str("addr", addr).Msg("serving")
		errCh <- e.Start(addr)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		app.Log.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
	<-workerDone

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}
