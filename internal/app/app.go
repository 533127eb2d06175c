package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	corebootstrap "github.com/m3rciful/catalogbot/core/bootstrap"
	corecmd "github.com/m3rciful/catalogbot/core/cmd"
	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/metrics"
	"github.com/m3rciful/catalogbot/core/opsserver"
	tg "github.com/m3rciful/catalogbot/core/telegram"
	"github.com/m3rciful/catalogbot/core/telegram/router"
	"github.com/m3rciful/catalogbot/internal/catalog"
	"github.com/m3rciful/catalogbot/internal/dialog"
)

const opsShutdownTimeout = 5 * time.Second

// App owns the long-lived components of the bot.
type App struct {
	cfg      *Config
	engine   *dialog.Engine
	registry *tg.Registry
	checks   map[string]opsserver.Check
	ops      *opsserver.Server
	closers  []func() error
}

// New builds the application. db may be nil unless the postgres state backend is selected.
func New(ctx context.Context, cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	client, err := catalog.New(catalog.Options{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		return nil, err
	}
	backend, err := openStore(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		engine: dialog.NewEngine(client, backend.store),
		checks: map[string]opsserver.Check{},
	}
	if backend.check != nil {
		a.checks["state"] = backend.check
	}
	if backend.close != nil {
		a.closers = append(a.closers, backend.close)
	}

	if a.registry, err = a.buildRegistry(); err != nil {
		_ = a.Close()
		return nil, err
	}
	metrics.MustRegister(prometheus.DefaultRegisterer)

	logger.LogEvent(ctx, logger.TWire, slog.LevelInfo, "app.built",
		slog.String("catalog_url", client.BaseURL()),
		slog.String("state_backend", cfg.State.Backend),
	)
	return a, nil
}

// Bootstrap runs the core bootstrap pipeline for cfg and builds the App on top of it.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	res, err := corebootstrap.Run(ctx, corebootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.DatabaseConfig(),
	})
	if err != nil {
		return nil, err
	}
	a, err := New(ctx, cfg, res.DB)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	a.closers = append(a.closers, res.Close)
	return a, nil
}

// LoadConfig adapts Load to the runner's loader signature.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// TelegramRunOptions wires middleware, routes and lifecycle hooks for the core runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry)
	routes = append(routes, router.TextRoutes(a, a.registry, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, a.UnknownCallback()))

	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg.RateLimit, a.RateLimited()),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(context.Context, tg.Runtime) error {
	if a.cfg.Ops.Listen == "" {
		return nil
	}
	srv := opsserver.New(opsserver.Options{
		Listen:   a.cfg.Ops.Listen,
		Gatherer: prometheus.DefaultGatherer,
		Checks:   a.checks,
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("app: ops server: %w", err)
	}
	a.ops = srv
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	if a.ops == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opsShutdownTimeout)
	defer cancel()
	return a.ops.Shutdown(ctx)
}

// Close releases the state backend and the database pool.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
