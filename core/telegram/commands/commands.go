// Package commands describes the slash commands a bot advertises.
package commands

import "strings"

// Command is the metadata of one slash command. Handlers live with the dispatcher.
type Command struct {
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Normalize strips the leading slash and any @botname suffix and lowercases the name.
func Normalize(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}
