// Package app wires configuration, storage, sessions and the portfolio engine into
// a runnable Telegram application.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/portfoliobot/core/bootstrap"
	corecmd "github.com/m3rciful/portfoliobot/core/cmd"
	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	"github.com/m3rciful/portfoliobot/core/health"
	tg "github.com/m3rciful/portfoliobot/core/telegram"
	"github.com/m3rciful/portfoliobot/core/telegram/commands"
	"github.com/m3rciful/portfoliobot/core/telegram/middleware"
	"github.com/m3rciful/portfoliobot/core/telegram/router"
	"github.com/m3rciful/portfoliobot/core/telegram/sender"
	"github.com/m3rciful/portfoliobot/core/telegram/state"
	"github.com/m3rciful/portfoliobot/internal/portfolio"
	"github.com/m3rciful/portfoliobot/internal/store"
	"github.com/m3rciful/portfoliobot/internal/transport"
)

const rateLimitedText = "⏳ Too many requests, please slow down."

// Application holds the long-lived dependencies of a running bot.
type Application struct {
	Config   *coreconfig.Config
	DB       *sqlx.DB
	Store    *store.Store
	Sessions state.Store
	Registry *tg.Registry
	Queue    *middleware.KeyedQueue
	Health   *health.Server
}

var _ corecmd.TelegramApp = (*Application)(nil)

// Bootstrap runs the infrastructure pipeline and opens the session store.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg, Seeders: Seeders(cfg)})
	if err != nil {
		return nil, err
	}
	sessions, err := state.Open(ctx, cfg.Session)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	return New(cfg, res.DB, sessions), nil
}

// New assembles an application from opened infrastructure.
func New(cfg *coreconfig.Config, db *sqlx.DB, sessions state.Store) *Application {
	a := &Application{
		Config:   cfg,
		DB:       db,
		Store:    store.New(db),
		Sessions: sessions,
		Registry: NewRegistry(),
		Queue:    middleware.NewKeyedQueue(),
	}
	if cfg.Health.Listen != "" {
		a.Health = health.New(cfg.Health.Listen, map[string]health.Check{
			"database": a.Store.Ping,
			"sessions": sessions.Ping,
		})
	}
	return a
}

// NewRegistry declares the slash commands shown in the Telegram menu.
func NewRegistry() *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Description: "Main menu"})
	reg.RegisterCommand("/help", commands.Command{Description: "Show help"})
	reg.RegisterCommand("/add_project", commands.Command{Description: "Suggest a project", Aliases: []string{"/add"}})
	reg.RegisterCommand("/cancel", commands.Command{Description: "Cancel the current submission"})
	reg.RegisterCommand("/admin", commands.Command{Description: "Admin panel", AdminOnly: true})
	return reg
}

// Engine builds the portfolio engine on top of a transport.
func (a *Application) Engine(tr portfolio.Transport, n portfolio.Notifier) *portfolio.Engine {
	return portfolio.New(portfolio.Deps{
		Repo:      a.Store,
		Sessions:  a.Sessions,
		Transport: tr,
		Notifier:  n,
		AdminID:   a.Config.Telegram.AdminID,
	})
}

// Routes binds every update kind to the engine through the telebot adapter.
func (a *Application) Routes(rt tg.Runtime) []tg.Route {
	tr := transport.NewTelebot(rt.Bot)
	engine := a.Engine(tr, transport.NewNotifier(rt.Dispatcher, tr))
	adapter := transport.NewAdapter(engine, rt.Registry)
	return append(router.MessageRoutes(adapter), router.CallbackRoute(adapter))
}

// TelegramRunOptions implements corecmd.TelegramApp.
func (a *Application) TelegramRunOptions() (tg.RunOptions, error) {
	s := a.Config.Sender
	return tg.RunOptions{
		Config:   a.Config,
		Registry: a.Registry,
		DispatcherOptions: sender.Options{
			QueueSize:    s.QueueSize,
			Workers:      s.Workers,
			MaxRetries:   s.MaxRetries,
			RetryBackoff: time.Duration(s.RetryBackoffMS) * time.Millisecond,
		},
		Middlewares: tg.DefaultMiddlewares(a.Config, a.Queue, onLimited),
		Routes:      a.Routes,
		OnStart: func(ctx context.Context, _ tg.Runtime) error {
			if a.Health != nil {
				a.Health.Start(ctx)
			}
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			if a.Health == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return a.Health.Shutdown(ctx)
		},
	}, nil
}

// Close releases the session store and the database.
func (a *Application) Close() error {
	var errs []error
	if a.Sessions != nil {
		errs = append(errs, a.Sessions.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func onLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: rateLimitedText})
}
