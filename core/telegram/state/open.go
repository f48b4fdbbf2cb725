package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	"github.com/m3rciful/portfoliobot/core/logger"
)

// Open builds the configured session backend and checks that it answers.
func Open(ctx context.Context, cfg coreconfig.SessionConfig) (Store, error) {
	var st Store
	switch cfg.Backend {
	case coreconfig.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password.Value(),
			DB:       cfg.Redis.DB,
		})
		st = NewRedisStore(client, cfg.Redis.Prefix, cfg.TTL)
	case coreconfig.SessionMemory, "":
		st = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("session store ping: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCSessions, slog.LevelInfo, "sessions.open",
		slog.String("status", "ok"),
		slog.String("mode", cfg.Backend),
		slog.Duration("ttl", cfg.TTL),
	)
	return st, nil
}
