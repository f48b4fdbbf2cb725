package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/portfoliobot/core/bootstrap"
	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/internal/domain"
	"github.com/m3rciful/portfoliobot/internal/store"
)

// Seeders returns the reference data loaders run after migrations.
func Seeders(cfg *coreconfig.Config) []bootstrap.Seeder {
	return []bootstrap.Seeder{
		bootstrap.SeederFunc{Label: "categories", Fn: func(ctx context.Context, db *sqlx.DB) error {
			return seedCategories(ctx, store.New(db), cfg.Catalog.DefaultCategories)
		}},
		bootstrap.SeederFunc{Label: "admin", Fn: func(ctx context.Context, db *sqlx.DB) error {
			return seedAdmin(ctx, store.New(db), cfg.Telegram.AdminID)
		}},
	}
}

func seedCategories(ctx context.Context, s *store.Store, names []string) error {
	if len(names) == 0 {
		names = domain.DefaultCategories
	}
	added, err := s.UpsertDefaultCategories(ctx, names)
	if err != nil {
		return err
	}
	logger.LogEvent(ctx, logger.SEED, slog.LevelDebug, "seed.categories",
		slog.Int("count", len(names)),
		slog.Int("added", added),
	)
	return nil
}

// seedAdmin records the configured admin so statistics list it before its first message.
// An existing row is left alone to keep its username.
func seedAdmin(ctx context.Context, s *store.Store, adminID int64) error {
	if adminID <= 0 {
		return nil
	}
	_, err := s.FindUserByIdentity(ctx, adminID)
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = s.UpsertUser(ctx, adminID, nil, true)
	return err
}
