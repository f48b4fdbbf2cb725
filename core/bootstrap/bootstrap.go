// Package bootstrap brings up shared infrastructure before the bot starts:
// logger, database connection, schema migrations and reference data.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	coredatabase "github.com/m3rciful/portfoliobot/core/database"
	"github.com/m3rciful/portfoliobot/core/logger"
)

// Seeder loads reference data once the schema is current. Seeders must be idempotent.
type Seeder interface {
	Name() string
	Seed(ctx context.Context, db *sqlx.DB) error
}

// SeederFunc adapts a function to Seeder.
type SeederFunc struct {
	Label string
	Fn    func(ctx context.Context, db *sqlx.DB) error
}

// Name implements Seeder.
func (f SeederFunc) Name() string { return f.Label }

// Seed implements Seeder.
func (f SeederFunc) Seed(ctx context.Context, db *sqlx.DB) error { return f.Fn(ctx, db) }

// Options control the bootstrap pipeline. Nil hooks fall back to the core implementations.
type Options struct {
	Config  *coreconfig.Config
	Seeders []Seeder

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error)
	Migrate    func(context.Context, coreconfig.DatabaseConfig) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, applies migrations, connects and seeds.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, opts.Config.Database); err != nil {
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, opts.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if err := Seed(ctx, db, opts.Seeders...); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Result{DB: db}, nil
}

// Seed runs seeders in order and stops at the first failure.
func Seed(ctx context.Context, db *sqlx.DB, seeders ...Seeder) error {
	for _, s := range seeders {
		start := time.Now()
		if err := s.Seed(ctx, db); err != nil {
			logger.LogEvent(ctx, logger.SEED, slog.LevelError, "seed.run",
				slog.String("status", "error"),
				slog.String("name", s.Name()),
				slog.String("err", logger.ErrAttr(err)),
			)
			return fmt.Errorf("bootstrap: seeder %s failed: %w", s.Name(), err)
		}
		logger.LogEvent(ctx, logger.SEED, slog.LevelInfo, "seed.run",
			slog.String("status", "ok"),
			slog.String("name", s.Name()),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	}
	return nil
}
