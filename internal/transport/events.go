// Package transport connects the portfolio engine to telebot: it turns updates into
// engine events and carries the engine's replies back to the Bot API.
package transport

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/portfoliobot/core/telegram"
	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/commands"
	"github.com/m3rciful/portfoliobot/internal/portfolio"
)

// EventFrom converts a telebot update. Commands resolve through reg, so aliases and
// @bot suffixes arrive in canonical form; unknown commands keep their normalized name.
func EventFrom(c tele.Context, reg *tg.Registry) *portfolio.Event {
	ev := &portfolio.Event{Kind: portfolio.KindOther}
	if u := c.Sender(); u != nil {
		ev.Principal = u.ID
		ev.Username = u.Username
		ev.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if chat := c.Chat(); chat != nil {
		ev.ChatID = chat.ID
	}
	if ev.ChatID == 0 {
		ev.ChatID = ev.Principal
	}

	if cb := c.Callback(); cb != nil {
		ev.Kind = portfolio.KindButton
		ev.CallbackID = cb.ID
		ev.Data = callbacks.Data(c)
		ev.Payload, ev.PayloadErr = callbacks.Decode(ev.Data)
		if msg := cb.Message; msg != nil {
			ev.Source = refOf(msg)
		}
		return ev
	}

	msg := c.Message()
	if msg == nil {
		return ev
	}
	switch {
	case msg.Photo != nil:
		// telebot keeps the largest size of the photo array
		ev.Kind = portfolio.KindPhoto
		ev.PhotoRef = msg.Photo.FileID
		ev.Text = msg.Caption
	case msg.Document != nil:
		ev.Kind = portfolio.KindDocument
		ev.DocumentRef = msg.Document.FileID
		ev.Text = msg.Caption
	case strings.HasPrefix(msg.Text, "/"):
		ev.Kind = portfolio.KindCommand
		ev.Text = msg.Text
		name, args, _ := strings.Cut(msg.Text, " ")
		ev.Args = strings.TrimSpace(args)
		ev.Command = commands.Normalize(name)
		if reg == nil {
			break
		}
		if canonical, _, ok := reg.LookupCommand(name); ok {
			ev.Command = canonical
		}
	case msg.Text != "":
		ev.Kind = portfolio.KindText
		ev.Text = msg.Text
	}
	return ev
}

func refOf(msg *tele.Message) portfolio.MessageRef {
	ref := portfolio.MessageRef{
		MessageID: msg.ID,
		Photo:     msg.Photo != nil || msg.Document != nil || msg.Video != nil || msg.Animation != nil,
	}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	return ref
}
