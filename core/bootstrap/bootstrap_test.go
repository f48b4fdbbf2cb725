package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/portfoliobot/core/config"
)

func sqliteConfig(t *testing.T) *coreconfig.Config {
	t.Helper()
	return &coreconfig.Config{Database: coreconfig.DatabaseConfig{
		Driver:         coreconfig.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "bot.db"),
		MaxConnections: 1,
	}}
}

func noLogger(*coreconfig.Config) error { return nil }

func TestRunMigratesAndSeeds(t *testing.T) {
	var order []string
	seeders := []Seeder{
		SeederFunc{Label: "first", Fn: func(ctx context.Context, db *sqlx.DB) error {
			order = append(order, "first")
			var n int
			return db.GetContext(ctx, &n, "SELECT COUNT(*) FROM categories")
		}},
		SeederFunc{Label: "second", Fn: func(context.Context, *sqlx.DB) error {
			order = append(order, "second")
			return nil
		}},
	}

	res, err := Run(context.Background(), Options{Config: sqliteConfig(t), Seeders: seeders, LoggerInit: noLogger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.DB.Close() })
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRunStopsAtFailingSeeder(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	seeders := []Seeder{
		SeederFunc{Label: "broken", Fn: func(context.Context, *sqlx.DB) error { return boom }},
		SeederFunc{Label: "never", Fn: func(context.Context, *sqlx.DB) error { ran = true; return nil }},
	}

	_, err := Run(context.Background(), Options{Config: sqliteConfig(t), Seeders: seeders, LoggerInit: noLogger})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.False(t, ran)
}

func TestRunReportsHookFailures(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = Run(context.Background(), Options{Config: sqliteConfig(t), LoggerInit: func(*coreconfig.Config) error { return boom }})
	assert.ErrorIs(t, err, boom)

	_, err = Run(context.Background(), Options{
		Config:     sqliteConfig(t),
		LoggerInit: noLogger,
		Migrate:    func(context.Context, coreconfig.DatabaseConfig) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}
