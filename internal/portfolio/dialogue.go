package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/format"
	"github.com/m3rciful/portfoliobot/core/telegram/state"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

// Dialogue stages, in order.
const (
	StageAwaitCategory    state.Stage = "await_category"
	StageAwaitTitle       state.Stage = "await_title"
	StageAwaitDescription state.Stage = "await_description"
	StageAwaitLink        state.Stage = "await_link"
	StageAwaitPhoto       state.Stage = "await_photo"
	StageAwaitDocument    state.Stage = "await_document"
)

// SkipKeyword skips the optional steps, case-insensitively.
const SkipKeyword = "no"

const (
	userStartPrompt  = "➡️ SUGGESTING YOUR PROJECT\n\nStep 1/6: Select the project category:"
	adminStartPrompt = "➡️ ADDING A PROJECT (Admin)\n\nStep 1/6: Select the project category:"
	sentinelWarning  = "Please select a specific category for your project."
	missingCategory  = "⛔️ This category no longer exists. Please pick another one."
	userDoneText     = "✅ Your project '%s' has been sent for moderation! An administrator will review it soon."
	adminDoneText    = "✅ Project '%s' successfully added to the database!"
	newPendingText   = "🆕 New project '%s' is waiting for moderation."
)

var stagePrompts = map[state.Stage]string{
	StageAwaitTitle:       "Step 2/6: Enter the project title:",
	StageAwaitDescription: "Step 3/6: Enter a detailed description of the project:",
	StageAwaitLink:        "Step 4/6: Enter the project link (or type 'no'):",
	StageAwaitPhoto:       "Step 5/6: Send a photo (cover) for this project (or type 'no'):",
	StageAwaitDocument:    "Step 6/6: Great. Now, if needed, send a document (PDF, ZIP, etc.) or type 'no':",
}

var invalidPrompts = map[state.Stage]string{
	StageAwaitTitle:       "Invalid format. Please send the project title as text.",
	StageAwaitDescription: "Invalid format. Please send the project description as text.",
	StageAwaitLink:        "Invalid format. Please send the link as text or type 'no'.",
	StageAwaitPhoto:       "Invalid format. Please send a photo or type 'no'.",
	StageAwaitDocument:    "Invalid format. Please send a document or type 'no'.",
}

// errInvalidInput marks input that does not fit the current stage.
var errInvalidInput = errors.New("input does not fit the stage")

func startPrompt(privileged bool) string {
	if privileged {
		return adminStartPrompt
	}
	return userStartPrompt
}

// isSkip reports whether text is the skip keyword.
func isSkip(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), SkipKeyword)
}

// Start opens a submission dialogue and presents the category picker. An open
// session makes it a no-op apart from a notice.
func (e *Engine) Start(ctx context.Context, ev *Event, privileged bool) (Outcome, error) {
	name := "dialogue.start." + flowLabel(privileged)
	if _, open, err := e.session(ctx, ev.Principal); err != nil {
		return Outcome{}, err
	} else if open {
		return handled(name, ResultNotice), e.notice(ctx, ev, alreadyStartText, false)
	}

	kb, err := e.categoryPicker(ctx)
	if err != nil {
		return Outcome{}, err
	}
	sess := state.NewSession(StageAwaitCategory, privileged)
	if err := e.sessions.Set(ctx, ev.Principal, sess); err != nil {
		return Outcome{}, fmt.Errorf("open session: %w", err)
	}
	ctx = logger.WithSession(ctx, sess.ID)
	logger.LogEvent(ctx, logger.SVCSessions, slog.LevelInfo, "dialogue.start",
		slog.String("status", "ok"),
		slog.String("stage", string(sess.Stage)),
		slog.Bool("privileged", privileged),
	)
	return handled(name, ResultOK), e.show(ctx, ev, startPrompt(privileged), kb)
}

// Cancel clears any session regardless of its stage and returns to the main menu.
func (e *Engine) Cancel(ctx context.Context, ev *Event) (Outcome, error) {
	sess, open, err := e.session(ctx, ev.Principal)
	if err != nil {
		return Outcome{}, err
	}
	if err := e.sessions.Clear(ctx, ev.Principal); err != nil {
		return Outcome{}, fmt.Errorf("clear session: %w", err)
	}
	result := ResultOK
	text := backToMenuText
	if open {
		result = ResultCancelled
		text = cancelledText + "\n\n" + backToMenuText
		logger.LogEvent(logger.WithSession(ctx, sess.ID), logger.SVCSessions, slog.LevelInfo, "dialogue.cancel",
			slog.String("status", "cancelled"),
			slog.String("stage", string(sess.Stage)),
		)
	}
	return handled("menu.start", result), e.showMainMenu(ctx, ev, text)
}

// Step feeds one event into an open dialogue. Invalid input leaves the session
// untouched and reissues the stage prompt.
func (e *Engine) Step(ctx context.Context, ev *Event, sess state.Session) (Outcome, error) {
	ctx = logger.WithSession(ctx, sess.ID)
	name := "dialogue." + string(sess.Stage)

	if sess.Stage == StageAwaitCategory {
		return e.stepCategory(ctx, ev, sess, name)
	}
	if ev.Kind == KindButton {
		// buttons of earlier screens do not answer text stages
		dialogueSteps.WithLabelValues(string(sess.Stage), "invalid").Inc()
		e.ack(ctx, ev)
		return handled(name, ResultNotice), e.reprompt(ctx, ev, sess.Stage)
	}

	next, err := applyInput(&sess.Draft, sess.Stage, ev)
	if errors.Is(err, errInvalidInput) {
		dialogueSteps.WithLabelValues(string(sess.Stage), "invalid").Inc()
		logger.LogEvent(ctx, logger.SVCSessions, slog.LevelDebug, "dialogue.invalid",
			slog.String("status", "skip"),
			slog.String("stage", string(sess.Stage)),
			slog.String("kind", ev.Kind.String()),
		)
		return handled(name, ResultNotice), e.reprompt(ctx, ev, sess.Stage)
	}
	if err != nil {
		return Outcome{}, err
	}
	dialogueSteps.WithLabelValues(string(sess.Stage), "advanced").Inc()

	if next == "" {
		return handled(name, ResultOK), e.commit(ctx, ev, sess)
	}
	return handled(name, ResultOK), e.advance(ctx, ev, sess, next)
}

func (e *Engine) stepCategory(ctx context.Context, ev *Event, sess state.Session, name string) (Outcome, error) {
	if ev.Kind != KindButton || ev.PayloadErr != nil || ev.Payload.Family != callbacks.FamilyCategory {
		dialogueSteps.WithLabelValues(string(sess.Stage), "invalid").Inc()
		if ev.Kind == KindButton {
			return handled(name, ResultNotice), e.notice(ctx, ev, busyText, false)
		}
		kb, err := e.categoryPicker(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return handled(name, ResultNotice), e.reply(ctx, ev, startPrompt(sess.Privileged), kb)
	}

	id := ev.Payload.CategoryID
	if id == domain.AllCategories {
		dialogueSteps.WithLabelValues(string(sess.Stage), "invalid").Inc()
		return handled(name, ResultNotice), e.notice(ctx, ev, sentinelWarning, true)
	}
	if _, err := e.repo.FindCategory(ctx, id); errors.Is(err, domain.ErrNotFound) {
		dialogueSteps.WithLabelValues(string(sess.Stage), "invalid").Inc()
		return handled(name, ResultNotice), e.notice(ctx, ev, missingCategory, true)
	} else if err != nil {
		return Outcome{}, err
	}

	dialogueSteps.WithLabelValues(string(sess.Stage), "advanced").Inc()
	sess.Draft.CategoryID = id
	return handled(name, ResultOK), e.advance(ctx, ev, sess, StageAwaitTitle)
}

// applyInput validates ev against stage and writes the accepted value into d.
// It returns the next stage, or "" when the dialogue is complete.
func applyInput(d *state.Draft, stage state.Stage, ev *Event) (state.Stage, error) {
	text := strings.TrimSpace(ev.Text)
	isText := ev.Kind == KindText && text != ""

	switch stage {
	case StageAwaitTitle:
		if !isText {
			return stage, errInvalidInput
		}
		d.Title = text
		return StageAwaitDescription, nil
	case StageAwaitDescription:
		if !isText {
			return stage, errInvalidInput
		}
		d.Description = text
		return StageAwaitLink, nil
	case StageAwaitLink:
		if !isText {
			return stage, errInvalidInput
		}
		d.Link = nil
		if !isSkip(text) {
			d.Link = format.OptionalString(text)
		}
		return StageAwaitPhoto, nil
	case StageAwaitPhoto:
		switch {
		case ev.Kind == KindPhoto && ev.PhotoRef != "":
			d.PhotoRef = format.OptionalString(ev.PhotoRef)
		case isText && isSkip(text):
			d.PhotoRef = nil
		default:
			return stage, errInvalidInput
		}
		return StageAwaitDocument, nil
	case StageAwaitDocument:
		switch {
		case ev.Kind == KindDocument && ev.DocumentRef != "":
			d.DocumentRef = format.OptionalString(ev.DocumentRef)
		case isText && isSkip(text):
			d.DocumentRef = nil
		default:
			return stage, errInvalidInput
		}
		return "", nil
	}
	return stage, fmt.Errorf("dialogue: unknown stage %q", stage)
}

func (e *Engine) advance(ctx context.Context, ev *Event, sess state.Session, next state.Stage) error {
	from := sess.Stage
	sess.Stage = next
	if err := e.sessions.Set(ctx, ev.Principal, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCSessions, slog.LevelDebug, "dialogue.step",
		slog.String("status", "ok"),
		slog.String("from", string(from)),
		slog.String("stage", string(next)),
	)
	if from == StageAwaitCategory {
		// the picker message turns into the next prompt
		return e.show(ctx, ev, stagePrompts[next], nil)
	}
	return e.reply(ctx, ev, stagePrompts[next], nil)
}

func (e *Engine) reprompt(ctx context.Context, ev *Event, stage state.Stage) error {
	text, ok := invalidPrompts[stage]
	if !ok {
		text = stagePrompts[stage]
	}
	return e.reply(ctx, ev, text, nil)
}

// commit persists the finished draft and clears the session. A failed insert keeps
// the session so the last step can be resent.
func (e *Engine) commit(ctx context.Context, ev *Event, sess state.Session) error {
	d := sess.Draft
	item, err := e.repo.InsertItem(ctx, domain.PortfolioItem{
		Title:       d.Title,
		Description: d.Description,
		Link:        d.Link,
		PhotoRef:    d.PhotoRef,
		DocumentRef: d.DocumentRef,
		IsApproved:  sess.Privileged,
		CreatorID:   ev.Principal,
		CategoryID:  d.CategoryID,
	})
	if err != nil {
		return fmt.Errorf("commit item: %w", err)
	}
	itemsSubmitted.WithLabelValues(flowLabel(sess.Privileged)).Inc()
	logger.LogEvent(ctx, logger.SVCPortfolio, slog.LevelInfo, "item.committed",
		slog.String("status", "ok"),
		slog.Int64("item_id", item.ID),
		slog.Int64("category_id", item.CategoryID),
		slog.Bool("privileged", sess.Privileged),
	)

	var sendErr error
	if sess.Privileged {
		sendErr = e.reply(ctx, ev, fmt.Sprintf(adminDoneText, displayTitle(item.Title)), adminMenuMarkup())
	} else {
		sendErr = e.reply(ctx, ev, fmt.Sprintf(userDoneText, displayTitle(item.Title)), mainMenuMarkup())
		if e.gate.AdminID != 0 && e.gate.AdminID != ev.Principal {
			e.notifyBestEffort(ctx, e.gate.AdminID, fmt.Sprintf(newPendingText, displayTitle(item.Title)), "submitted")
		}
	}
	clearErr := e.sessions.Clear(ctx, ev.Principal)
	if clearErr != nil {
		clearErr = fmt.Errorf("clear session: %w", clearErr)
	}
	return errors.Join(sendErr, clearErr)
}

// session returns the principal's session and whether it is an open dialogue.
func (e *Engine) session(ctx context.Context, principal int64) (state.Session, bool, error) {
	sess, ok, err := e.sessions.Get(ctx, principal)
	if err != nil {
		return state.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return sess, ok && sess.Open(), nil
}
