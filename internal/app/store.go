package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/opsserver"
	"github.com/m3rciful/catalogbot/core/telegram/state"
)

// dialRedis is replaced in tests.
var dialRedis = state.NewRedisClient

// sessionBackend is an opened session store with its health probe and cleanup.
type sessionBackend struct {
	store state.Store
	check opsserver.Check
	close func() error
}

func openStore(ctx context.Context, cfg *Config, db *sqlx.DB) (sessionBackend, error) {
	var b sessionBackend
	switch cfg.State.Backend {
	case state.BackendRedis:
		client, err := dialRedis(ctx, state.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return b, fmt.Errorf("open redis state store: %w", err)
		}
		b = sessionBackend{
			store: state.NewRedisStore(client, cfg.State.TTL),
			check: client.Ping,
			close: client.Close,
		}
	case state.BackendPostgres:
		if db == nil {
			return b, errors.New("postgres state store requires a database connection")
		}
		b = sessionBackend{
			store: state.NewPostgresStore(db, cfg.State.TTL),
			check: db.PingContext,
		}
	default:
		b = sessionBackend{store: state.NewMemoryStore(cfg.State.TTL)}
	}

	logger.LogEvent(ctx, logger.State, slog.LevelInfo, "state.open",
		slog.String("backend", cfg.State.Backend),
		slog.Duration("ttl", cfg.State.TTL),
	)
	return b, nil
}
