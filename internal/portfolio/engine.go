// Package portfolio drives the submission dialogue, the stateless project browser and
// moderation. It talks to the chat, the entity store and the session store only through
// the interfaces in ports.go and state.Store.
package portfolio

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/core/telegram/state"
)

// Deps wires the engine. Notifier may be nil, in which case notifications go
// through Transport.SendText.
type Deps struct {
	Repo      Repository
	Sessions  state.Store
	Transport Transport
	Notifier  Notifier
	AdminID   int64
}

// Engine handles inbound events. It keeps no per-principal state of its own, so one
// instance serves all principals concurrently.
type Engine struct {
	repo     Repository
	sessions state.Store
	tr       Transport
	notifier Notifier
	gate     Gate
}

// New builds an engine from its dependencies.
func New(d Deps) *Engine {
	n := d.Notifier
	if n == nil {
		n = transportNotifier{tr: d.Transport}
	}
	return &Engine{
		repo:     d.Repo,
		sessions: d.Sessions,
		tr:       d.Transport,
		notifier: n,
		gate:     Gate{AdminID: d.AdminID},
	}
}

// Gate returns the authorization gate in use.
func (e *Engine) Gate() Gate {
	return e.gate
}

type transportNotifier struct {
	tr Transport
}

func (n transportNotifier) Notify(ctx context.Context, principal int64, text string) error {
	_, err := n.tr.SendText(ctx, principal, text, nil)
	return err
}

// ack acknowledges a button press without text. Failures are logged only: an
// expired callback must not abort the handler.
func (e *Engine) ack(ctx context.Context, ev *Event) {
	if ev.Kind != KindButton || ev.Answered() {
		return
	}
	if err := e.tr.AnswerEvent(ctx, ev, "", false); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "callback.answer",
			slog.String("status", "fail"),
			slog.String("err", logger.ErrAttr(err)),
		)
	}
	ev.MarkAnswered()
}

// notice shows a short message: as a callback answer for fresh button presses,
// as a chat message otherwise.
func (e *Engine) notice(ctx context.Context, ev *Event, text string, alert bool) error {
	if ev.Kind == KindButton && !ev.Answered() {
		ev.MarkAnswered()
		return e.tr.AnswerEvent(ctx, ev, text, alert)
	}
	_, err := e.tr.SendText(ctx, ev.ChatID, text, nil)
	return err
}

// reply sends a new message into the event's chat.
func (e *Engine) reply(ctx context.Context, ev *Event, text string, kb keyboard.Markup) error {
	_, err := e.tr.SendText(ctx, ev.ChatID, text, kb)
	return err
}

// show replaces the screen a button belongs to, or replies to a message.
// Media messages cannot become text, so they are deleted and a new message is sent.
func (e *Engine) show(ctx context.Context, ev *Event, text string, kb keyboard.Markup) error {
	e.ack(ctx, ev)
	if ev.Kind != KindButton || !ev.Source.Valid() {
		return e.reply(ctx, ev, text, kb)
	}
	if !ev.Source.Photo {
		err := e.tr.EditText(ctx, ev.Source, text, kb)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrEditFailed) {
			return err
		}
	}
	e.dropSource(ctx, ev)
	return e.reply(ctx, ev, text, kb)
}

// showPhoto replaces the screen with a photo message.
func (e *Engine) showPhoto(ctx context.Context, ev *Event, photoRef, caption string, kb keyboard.Markup) error {
	e.ack(ctx, ev)
	if ev.Kind == KindButton {
		e.dropSource(ctx, ev)
	}
	_, err := e.tr.SendPhoto(ctx, ev.ChatID, photoRef, caption, kb)
	return err
}

func (e *Engine) dropSource(ctx context.Context, ev *Event) {
	if !ev.Source.Valid() {
		return
	}
	if err := e.tr.DeleteMessage(ctx, ev.Source); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "message.delete",
			slog.String("status", "skip"),
			slog.String("err", logger.ErrAttr(err)),
		)
	}
}
