package portfolio

import (
	"context"
	"log/slog"

	"github.com/m3rciful/portfoliobot/core/logger"
)

const deniedText = "⛔️ You do not have access to this command."

// Gate admits only the configured administrator.
type Gate struct {
	AdminID int64
}

// IsAdmin reports whether principal is the administrator. A zero AdminID admits nobody.
func (g Gate) IsAdmin(principal int64) bool {
	return g.AdminID != 0 && principal == g.AdminID
}

// handlerFunc is the shape of every event handler in the engine.
type handlerFunc func(ctx context.Context, ev *Event) (Outcome, error)

// Require wraps an admin-only handler. Other principals get the denial notice and
// the wrapped handler is never invoked.
func (e *Engine) Require(name string, next handlerFunc) handlerFunc {
	return func(ctx context.Context, ev *Event) (Outcome, error) {
		if e.gate.IsAdmin(ev.Principal) {
			return next(ctx, ev)
		}
		deniedTotal.Inc()
		logger.LogEvent(ctx, logger.SVCModeration, slog.LevelWarn, "admin.denied",
			slog.String("status", "denied"),
			slog.String("entry", name),
		)
		if err := e.notice(ctx, ev, deniedText, true); err != nil {
			return Outcome{}, err
		}
		return handled(name, ResultDenied), nil
	}
}
