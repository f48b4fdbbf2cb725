package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/portfoliobot/core/telegram"
	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
)

// CallbackRoute routes every button press. Answering the callback is left to the handler,
// which knows whether a notice or alert is due.
func CallbackRoute(h UpdateHandler) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: func(c tele.Context) error {
			if c.Callback() == nil {
				return nil
			}
			start := time.Now()
			out, err := h.HandleUpdate(c)
			logHandlerSummary(c, out, start, err, slog.String("cb_key", callbacks.CallbackKey(c)))
			return err
		},
	}
}
