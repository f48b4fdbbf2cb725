package database

import (
	"fmt"
	"net/url"

	coreconfig "github.com/m3rciful/portfoliobot/core/config"
)

// DriverName maps the configured backend to the database/sql driver name.
// modernc registers itself as "sqlite".
func DriverName(cfg coreconfig.DatabaseConfig) string {
	if cfg.Driver == coreconfig.DriverSQLite {
		return "sqlite"
	}
	return "postgres"
}

// DSN builds the connection string for the configured backend.
func DSN(cfg coreconfig.DatabaseConfig) string {
	switch cfg.Driver {
	case coreconfig.DriverSQLite:
		return SQLiteDSN(cfg.Path)
	default:
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			cfg.User, cfg.Password.Value(), cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
		)
	}
}

// SQLiteDSN enables foreign keys and a busy timeout for a database file.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}

// Target describes the database for logs without leaking credentials.
func Target(cfg coreconfig.DatabaseConfig) (host, port, name string) {
	if cfg.Driver == coreconfig.DriverSQLite {
		return "", "", cfg.Path
	}
	return cfg.Host, cfg.Port, cfg.Name
}
