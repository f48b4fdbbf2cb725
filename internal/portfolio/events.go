package portfolio

import (
	"strings"

	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
)

// Kind classifies an inbound event.
type Kind int

const (
	KindText Kind = iota
	KindCommand
	KindPhoto
	KindDocument
	// KindOther covers media the bot has no use for (stickers, voice, ...).
	KindOther
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCommand:
		return "command"
	case KindPhoto:
		return "photo"
	case KindDocument:
		return "document"
	case KindButton:
		return "button"
	}
	return "other"
}

// MessageRef points at a message the bot can edit or delete.
type MessageRef struct {
	ChatID    int64
	MessageID int
	// Photo is set for media messages, which cannot be edited into text.
	Photo bool
}

// Valid reports whether the reference points at a real message.
func (m MessageRef) Valid() bool {
	return m.ChatID != 0 && m.MessageID != 0
}

// Event is one inbound update in transport-neutral form.
type Event struct {
	Kind      Kind
	Principal int64
	ChatID    int64
	Username  string
	FullName  string

	// Command is the canonical command name without slash, e.g. "add_project".
	Command string
	Args    string
	Text    string
	// PhotoRef is the file reference of the largest photo variant.
	PhotoRef    string
	DocumentRef string

	// Data is the raw button data; Payload and PayloadErr its decoded form.
	Data       string
	Payload    callbacks.Payload
	PayloadErr error
	CallbackID string

	// Source is the message a button was attached to.
	Source MessageRef

	answered bool
}

// IsMessage reports whether the event is a message rather than a button press.
func (e *Event) IsMessage() bool {
	return e.Kind != KindButton
}

// Answered reports whether the button press was already acknowledged.
func (e *Event) Answered() bool {
	return e.answered
}

// MarkAnswered records that the button press was acknowledged.
func (e *Event) MarkAnswered() {
	e.answered = true
}

// UsernamePtr returns the username or nil when the principal has none.
func (e *Event) UsernamePtr() *string {
	u := strings.TrimPrefix(strings.TrimSpace(e.Username), "@")
	if u == "" {
		return nil
	}
	return &u
}

// DisplayName is used in greetings.
func (e *Event) DisplayName() string {
	if n := strings.TrimSpace(e.FullName); n != "" {
		return n
	}
	if e.Username != "" {
		return e.Username
	}
	return "there"
}

// Outcome summarizes how an event was handled.
type Outcome struct {
	Handler string
	// Result is one of ok, notice, denied, cancelled.
	Result string
}

const (
	ResultOK        = "ok"
	ResultNotice    = "notice"
	ResultDenied    = "denied"
	ResultCancelled = "cancelled"
)

func handled(handler, result string) Outcome {
	return Outcome{Handler: handler, Result: result}
}
