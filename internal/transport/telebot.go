package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/portfoliobot/core/telegram/helpers"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/internal/portfolio"
)

// botAPI is the subset of *tele.Bot the transport uses.
type botAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
}

// Telebot implements portfolio.Transport over the Bot API. Every message is sent as HTML.
type Telebot struct {
	bot botAPI
}

// NewTelebot wraps a bot.
func NewTelebot(bot botAPI) *Telebot {
	return &Telebot{bot: bot}
}

var _ portfolio.Transport = (*Telebot)(nil)

func sendOptions(kb keyboard.Markup) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: keyboard.Inline(kb),
	}
}

func stored(msg portfolio.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(msg.MessageID), ChatID: msg.ChatID}
}

func sentRef(chatID int64, m *tele.Message) portfolio.MessageRef {
	if m == nil {
		return portfolio.MessageRef{ChatID: chatID}
	}
	ref := refOf(m)
	if ref.ChatID == 0 {
		ref.ChatID = chatID
	}
	return ref
}

func (t *Telebot) SendText(ctx context.Context, chatID int64, text string, kb keyboard.Markup) (portfolio.MessageRef, error) {
	m, err := t.bot.Send(tele.ChatID(chatID), text, sendOptions(kb))
	if err != nil {
		return portfolio.MessageRef{}, fmt.Errorf("send text: %w", err)
	}
	tghelpers.CountSent(ctx, len(kb) > 0)
	return sentRef(chatID, m), nil
}

func (t *Telebot) EditText(ctx context.Context, msg portfolio.MessageRef, text string, kb keyboard.Markup) error {
	if msg.Photo {
		return portfolio.ErrEditFailed
	}
	_, err := t.bot.Edit(stored(msg), text, sendOptions(kb))
	if err = classifyEdit(err); err != nil {
		return err
	}
	tghelpers.CountSent(ctx, len(kb) > 0)
	return nil
}

// classifyEdit drops "not modified" and maps refusals of the message to ErrEditFailed.
func classifyEdit(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "message is not modified"):
		return nil
	case strings.Contains(msg, "no text in the message"),
		strings.Contains(msg, "message can't be edited"),
		strings.Contains(msg, "message to edit not found"):
		return fmt.Errorf("%w: %v", portfolio.ErrEditFailed, err)
	}
	return fmt.Errorf("edit text: %w", err)
}

func (t *Telebot) SendPhoto(ctx context.Context, chatID int64, photoRef, caption string, kb keyboard.Markup) (portfolio.MessageRef, error) {
	photo := &tele.Photo{File: tele.File{FileID: photoRef}, Caption: caption}
	m, err := t.bot.Send(tele.ChatID(chatID), photo, sendOptions(kb))
	if err != nil {
		return portfolio.MessageRef{}, fmt.Errorf("send photo: %w", err)
	}
	tghelpers.CountSent(ctx, len(kb) > 0)
	ref := sentRef(chatID, m)
	ref.Photo = true
	return ref, nil
}

func (t *Telebot) SendDocument(ctx context.Context, chatID int64, documentRef string) error {
	doc := &tele.Document{File: tele.File{FileID: documentRef}}
	if _, err := t.bot.Send(tele.ChatID(chatID), doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	tghelpers.CountSent(ctx, false)
	return nil
}

func (t *Telebot) DeleteMessage(_ context.Context, msg portfolio.MessageRef) error {
	if !msg.Valid() {
		return nil
	}
	if err := t.bot.Delete(stored(msg)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (t *Telebot) AnswerEvent(_ context.Context, ev *portfolio.Event, text string, alert bool) error {
	if ev == nil || ev.CallbackID == "" {
		return nil
	}
	resp := &tele.CallbackResponse{Text: text, ShowAlert: alert}
	if err := t.bot.Respond(&tele.Callback{ID: ev.CallbackID}, resp); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}
