// Package format renders user-supplied text safely into Telegram HTML messages.
package format

import (
	"html"
	"unicode/utf8"
)

// Escape makes s safe inside an HTML parse-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Italic wraps escaped s in <i>.
func Italic(s string) string {
	return "<i>" + Escape(s) + "</i>"
}

// Bold wraps escaped s in <b>.
func Bold(s string) string {
	return "<b>" + Escape(s) + "</b>"
}

// Code wraps escaped s in <code>.
func Code(s string) string {
	return "<code>" + Escape(s) + "</code>"
}

// Truncate cuts s to at most max runes, appending an ellipsis when shortened.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
