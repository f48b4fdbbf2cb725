package keyboard

import tele "gopkg.in/telebot.v4"

// Inline converts a markup to telebot inline keyboard markup. Data is sent verbatim,
// without telebot's unique prefix, so payloads decode on any handler. Nil for an empty markup.
func Inline(m Markup) *tele.ReplyMarkup {
	if len(m) == 0 {
		return nil
	}
	inline := make([][]tele.InlineButton, 0, len(m))
	for _, row := range m {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				r = append(r, tele.InlineButton{Text: b.Text, URL: b.URL})
				continue
			}
			r = append(r, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		inline = append(inline, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
