package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
)

// Command names, canonical form without slash.
const (
	CommandStart      = "start"
	CommandHelp       = "help"
	CommandAddProject = "add_project"
	CommandAdmin      = "admin"
	CommandCancel     = "cancel"
)

// Handle routes one event. The order is fixed:
//
//  1. the principal is upserted (the first event creates the user)
//  2. explicit cancellation clears any session
//  3. an open session consumes the event
//  4. stateless commands
//  5. structured button payloads
//  6. fallback
//
// Callers must serialize events of one principal.
func (e *Engine) Handle(ctx context.Context, ev *Event) (Outcome, error) {
	if ev.Principal == 0 {
		return handled("ignored", ResultOK), nil
	}
	defer func() {
		// every button press is acknowledged, even when handling failed
		e.ack(ctx, ev)
	}()

	if _, err := e.repo.UpsertUser(ctx, ev.Principal, ev.UsernamePtr(), e.gate.IsAdmin(ev.Principal)); err != nil {
		return Outcome{}, fmt.Errorf("upsert user %d: %w", ev.Principal, err)
	}

	if e.isCancel(ev) {
		return e.Cancel(ctx, ev)
	}

	sess, open, err := e.session(ctx, ev.Principal)
	if err != nil {
		return Outcome{}, err
	}
	if open {
		if ev.Kind == KindButton && !(ev.PayloadErr == nil && ev.Payload.Family == callbacks.FamilyCategory) {
			logger.LogEvent(logger.WithSession(ctx, sess.ID), logger.SVCSessions, slog.LevelDebug, "dialogue.busy",
				slog.String("status", "skip"),
				slog.String("stage", string(sess.Stage)),
			)
			return handled("dialogue.busy", ResultNotice), e.notice(ctx, ev, busyText, false)
		}
		return e.Step(ctx, ev, sess)
	}

	switch ev.Kind {
	case KindCommand:
		return e.handleCommand(ctx, ev)
	case KindButton:
		return e.handleButton(ctx, ev)
	}
	return handled("fallback", ResultNotice), e.reply(ctx, ev, fallbackText, fallbackMarkup())
}

func (e *Engine) isCancel(ev *Event) bool {
	switch ev.Kind {
	case KindCommand:
		return ev.Command == CommandCancel
	case KindButton:
		return ev.PayloadErr == nil && ev.Payload.Family == callbacks.FamilyMenu && ev.Payload.Menu == MenuStart
	}
	return false
}

func (e *Engine) handleCommand(ctx context.Context, ev *Event) (Outcome, error) {
	switch ev.Command {
	case CommandStart:
		return handled("command.start", ResultOK), e.showMainMenu(ctx, ev, startText)
	case CommandHelp:
		return handled("command.help", ResultOK), e.reply(ctx, ev, helpText, mainMenuMarkup())
	case CommandAddProject:
		return e.Start(ctx, ev, false)
	case CommandAdmin:
		return e.Require("command.admin", func(ctx context.Context, ev *Event) (Outcome, error) {
			return handled("command.admin", ResultOK), e.showAdminPanel(ctx, ev)
		})(ctx, ev)
	}
	return handled("fallback", ResultNotice), e.reply(ctx, ev, fallbackText, fallbackMarkup())
}

func (e *Engine) handleButton(ctx context.Context, ev *Event) (Outcome, error) {
	if ev.PayloadErr != nil {
		logger.LogEvent(ctx, logger.SVCPortfolio, slog.LevelDebug, "callback.decode",
			slog.String("status", "skip"),
			slog.String("data", logger.SanitizeLimit(ev.Data, 64)),
			slog.String("err", logger.ErrAttr(ev.PayloadErr)),
		)
		return handled("callback.unsupported", ResultNotice), e.notice(ctx, ev, unsupportedText, false)
	}

	p := ev.Payload
	switch p.Family {
	case callbacks.FamilyMenu:
		return e.handleMenu(ctx, ev, p.Menu)
	case callbacks.FamilyCategory:
		return e.Browse(ctx, ev, p.CategoryID, 0)
	case callbacks.FamilyProject:
		return e.handleProject(ctx, ev, p)
	}
	return handled("callback.unsupported", ResultNotice), e.notice(ctx, ev, unsupportedText, false)
}

func (e *Engine) handleMenu(ctx context.Context, ev *Event, menu string) (Outcome, error) {
	switch menu {
	case MenuNoop:
		e.ack(ctx, ev)
		return handled("menu.noop", ResultOK), nil
	case MenuSubmit:
		return e.Start(ctx, ev, false)
	case MenuPortfolio, MenuCategories:
		return handled("menu."+menu, ResultOK), e.showCategories(ctx, ev)
	case MenuAdmin:
		return e.Require("menu.admin", func(ctx context.Context, ev *Event) (Outcome, error) {
			return handled("menu.admin", ResultOK), e.showAdminPanel(ctx, ev)
		})(ctx, ev)
	case MenuAdminAdd:
		return e.Require("menu.admin_add", func(ctx context.Context, ev *Event) (Outcome, error) {
			return e.Start(ctx, ev, true)
		})(ctx, ev)
	case MenuModerate:
		return e.Require("menu.moderate", func(ctx context.Context, ev *Event) (Outcome, error) {
			return e.Moderate(ctx, ev, 0)
		})(ctx, ev)
	case MenuStats, MenuUsers:
		return e.Require("menu."+menu, func(ctx context.Context, ev *Event) (Outcome, error) {
			return handled("menu."+menu, ResultOK), e.showStats(ctx, ev, menu == MenuUsers)
		})(ctx, ev)
	}
	return handled("callback.unsupported", ResultNotice), e.notice(ctx, ev, unsupportedText, false)
}

func (e *Engine) handleProject(ctx context.Context, ev *Event, p callbacks.Payload) (Outcome, error) {
	switch p.Action {
	case callbacks.ActionNext, callbacks.ActionPrev:
		if p.Pending() {
			return e.Require("browse.moderation", func(ctx context.Context, ev *Event) (Outcome, error) {
				return e.Moderate(ctx, ev, p.Index)
			})(ctx, ev)
		}
		return e.Browse(ctx, ev, p.CategoryID, p.Index)
	case callbacks.ActionGetDoc:
		return e.SendDocument(ctx, ev, p.ItemID)
	case callbacks.ActionApprove:
		return e.Require("moderation.approve", func(ctx context.Context, ev *Event) (Outcome, error) {
			return e.Approve(ctx, ev, p.ItemID, p.Index)
		})(ctx, ev)
	case callbacks.ActionReject:
		return e.Require("moderation.reject", func(ctx context.Context, ev *Event) (Outcome, error) {
			return e.Reject(ctx, ev, p.ItemID, p.Index)
		})(ctx, ev)
	case callbacks.ActionDelete:
		return e.Require("moderation.delete", func(ctx context.Context, ev *Event) (Outcome, error) {
			return e.Delete(ctx, ev, p.ItemID)
		})(ctx, ev)
	}
	return handled("callback.unsupported", ResultNotice), e.notice(ctx, ev, unsupportedText, false)
}
