// Package router binds telebot update endpoints to a single update handler and
// writes one handler.handled summary line per update.
package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/portfoliobot/core/telegram"
)

// Outcome is reported by the update handler for the summary line.
type Outcome struct {
	// Handler names the route that served the update, e.g. "dialogue.await_title".
	Handler string
	// Result is one of ok, notice, denied, cancelled. Empty means ok.
	Result string
}

// UpdateHandler serves every routed update.
type UpdateHandler interface {
	HandleUpdate(c tele.Context) (Outcome, error)
}

func summarized(h UpdateHandler) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		out, err := h.HandleUpdate(c)
		logHandlerSummary(c, out, start, err)
		return err
	}
}

// MessageRoutes routes text (commands included), photos, documents and other media.
func MessageRoutes(h UpdateHandler) []tg.Route {
	handler := summarized(h)
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: handler},
		{Endpoint: tele.OnPhoto, Handler: handler},
		{Endpoint: tele.OnDocument, Handler: handler},
		{Endpoint: tele.OnMedia, Handler: handler},
	}
}
