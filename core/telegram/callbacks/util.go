package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData strips telebot's "\f" unique marker and returns the unique part
// (when present) and the payload.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := cb.Data
	if !strings.HasPrefix(raw, "\f") {
		return "", strings.TrimSpace(raw)
	}
	unique, payload, _ := strings.Cut(raw[1:], "|")
	return strings.TrimSpace(unique), payload
}

// Data returns the raw payload of a callback update.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	unique, payload := ParseCallbackData(cb)
	if payload == "" {
		return unique
	}
	return payload
}

// CallbackKey returns the payload family for log summaries.
func CallbackKey(c tele.Context) string {
	family, _, _ := strings.Cut(Data(c), ":")
	return family
}

// FromContext decodes the payload of a callback update.
func FromContext(c tele.Context) (Payload, error) {
	return Decode(Data(c))
}
