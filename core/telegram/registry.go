package telegram

import (
	"context"
	"log/slog"
	"sort"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/core/telegram/commands"
)

// Registry holds the slash commands the bot understands.
type Registry struct {
	commands map[string]commands.Command
	aliases  map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		aliases:  make(map[string]string),
	}
}

// RegisterCommand adds a command under its canonical name, e.g. "/start".
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	key := commands.Normalize(name)
	if r == nil || key == "" || cmd.Description == "" {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[key]; exists {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[key] = cmd
	for _, alias := range cmd.Aliases {
		if a := commands.Normalize(alias); a != "" {
			r.aliases[a] = key
		}
	}
}

// LookupCommand resolves a name or alias (with or without slash or @bot suffix) to its canonical name.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	key := commands.Normalize(name)
	if cmd, ok := r.commands[key]; ok {
		return key, cmd, true
	}
	if canonical, ok := r.aliases[key]; ok {
		return canonical, r.commands[canonical], true
	}
	return "", commands.Command{}, false
}

// ListCommands returns the commands sorted by name, optionally without hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// Len reports the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("err", logger.ErrAttr(err)),
		)
		return
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
}
