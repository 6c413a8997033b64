package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vicebank/vicebank-client/internal/api/handler"
	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
	"github.com/vicebank/vicebank-client/internal/core/service"
	"github.com/vicebank/vicebank-client/internal/infrastructure/auth"
	"github.com/vicebank/vicebank-client/internal/infrastructure/config"
	mongodb "github.com/vicebank/vicebank-client/internal/infrastructure/db/mongo"
	redisdb "github.com/vicebank/vicebank-client/internal/infrastructure/db/redis"
	"github.com/vicebank/vicebank-client/internal/infrastructure/db/sqlite"
	"github.com/vicebank/vicebank-client/internal/infrastructure/vicebank"
)

// App holds the wired client shared by the commands of one invocation.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Store  *service.Store
	Logs   *service.EventLog
	Repo   *sqlite.EventLogRepository
	// Owner is the account behind the auth token, or empty when it cannot
	// be determined. Sessions are only persisted for a known owner.
	Owner string
	// Checks are the readiness probes of the configured dependencies.
	Checks map[string]handler.Check

	now     func() time.Time
	closers []func(context.Context) error
}

// Bootstrap connects every configured dependency. Redis and MongoDB are
// optional and only dialled when their address is set.
func Bootstrap(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Log:    log,
		Checks: map[string]handler.Check{},
		now:    time.Now,
	}

	tokens, err := tokenSource(cfg.Auth)
	if err != nil {
		return nil, err
	}
	if owner, err := auth.Owner(ctx, tokens); err != nil {
		log.Debug().Err(err).Msg("account unknown, session persistence disabled")
	} else {
		app.Owner = owner
	}

	client := vicebank.New(vicebank.Options{
		BaseURL:    cfg.Server.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Server.Timeout},
		Tokens:     tokens,
		Logger:     log.With().Str("component", "vicebank").Logger(),
	})

	var sessions ports.SessionStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		app.Checks["redis"] = rdb.Ping
		sessions = rdb.Sessions(cfg.Redis.SessionTTL)
	}

	var logOpts []service.EventLogOption
	if cfg.Mongo.URI != "" {
		mc, err := mongodb.Open(ctx, cfg.Mongo)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.closers = append(app.closers, mc.Close)
		app.Checks["mongodb"] = mc.Ping
		logOpts = append(logOpts, service.WithArchive(mc.Archive(app.Owner)))
	}

	app.Repo = sqlite.NewEventLogRepository(cfg.EventLog.Path, log)
	app.Checks["sqlite"] = app.Repo.Ping
	app.Logs = service.NewEventLog(app.Repo, log, logOpts...)
	app.Store = service.NewStore(client, sessions, log)
	return app, nil
}

// tokenSource prefers a verbatim token over a locally signed one. With
// neither configured every request fails with domain.ErrNotAuthenticated.
func tokenSource(cfg config.AuthConfig) (ports.TokenSource, error) {
	switch {
	case cfg.Token != "":
		return auth.StaticTokenSource{Value: cfg.Token}, nil
	case cfg.SigningSecret != "":
		if cfg.Subject == "" {
			return nil, commandError("VB_AUTH_SUBJECT is required with VB_AUTH_SIGNING_SECRET")
		}
		return auth.NewSignedTokenSource([]byte(cfg.SigningSecret), cfg.Subject, cfg.TokenTTL, time.Now), nil
	default:
		return auth.StaticTokenSource{}, nil
	}
}

// Prepare loads the user list and re-applies the saved selection. A
// non-empty vbUserID overrides the saved selection.
func (a *App) Prepare(ctx context.Context, vbUserID string) error {
	if _, err := a.Store.Users().List(ctx); err != nil {
		return err
	}
	if vbUserID != "" {
		a.Store.BindOwner(a.Owner)
		_, err := a.Store.SelectUser(ctx, vbUserID)
		return err
	}
	if _, err := a.Store.RestoreSession(ctx, a.Owner); err != nil {
		a.Log.Warn().Err(err).Msg("could not restore session")
	}
	return nil
}

// CurrentUser returns the selected user or a command error telling the
// caller how to select one.
func (a *App) CurrentUser() (domain.User, error) {
	user, ok := a.Store.CurrentUser()
	if !ok {
		return domain.User{}, commandError("no user selected: pass --user or run `vicebank users select <id>`")
	}
	return user, nil
}

// Close releases the connections opened by Bootstrap.
func (a *App) Close(ctx context.Context) {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.Log.Warn().Err(fmt.Errorf("close: %w", err)).Msg("shutdown incomplete")
	}
}
