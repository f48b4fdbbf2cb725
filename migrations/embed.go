// Package migrations embeds the schema for every supported driver.
package migrations

import "embed"

// FS holds postgres/ and sqlite/ migration sets.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the migration directory for a driver name.
func Dir(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
