package transport

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/portfoliobot/core/telegram"
	tghelpers "github.com/m3rciful/portfoliobot/core/telegram/helpers"
	"github.com/m3rciful/portfoliobot/core/telegram/router"
	"github.com/m3rciful/portfoliobot/internal/portfolio"
)

// Handler serves engine events. *portfolio.Engine implements it.
type Handler interface {
	Handle(ctx context.Context, ev *portfolio.Event) (portfolio.Outcome, error)
}

// Adapter feeds telebot updates to a Handler.
type Adapter struct {
	handler  Handler
	registry *tg.Registry
}

// NewAdapter builds an adapter resolving commands through reg.
func NewAdapter(h Handler, reg *tg.Registry) *Adapter {
	return &Adapter{handler: h, registry: reg}
}

var _ router.UpdateHandler = (*Adapter)(nil)

// HandleUpdate converts the update, runs the handler and reports its outcome to the router.
func (a *Adapter) HandleUpdate(c tele.Context) (router.Outcome, error) {
	ev := EventFrom(c, a.registry)
	out, err := a.handler.Handle(tghelpers.BuildContext(c), ev)
	return router.Outcome{Handler: out.Handler, Result: out.Result}, err
}
