// Package keyboard describes inline keyboards independently of the bot API
// and converts them to telebot markup at the edge.
package keyboard

// Button is one inline button. URL buttons open a link; the rest carry callback Data.
type Button struct {
	Text string
	Data string
	URL  string
}

// Markup is a grid of inline buttons, one slice per row.
type Markup [][]Button

// Data returns a callback button.
func Data(text, data string) Button {
	return Button{Text: text, Data: data}
}

// URL returns a link button.
func URL(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Row drops empty buttons, so callers can pass optional ones unconditionally.
func Row(buttons ...Button) []Button {
	out := make([]Button, 0, len(buttons))
	for _, b := range buttons {
		if b.Text != "" {
			out = append(out, b)
		}
	}
	return out
}

// Rows builds a markup and drops empty rows.
func Rows(rows ...[]Button) Markup {
	m := make(Markup, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 {
			m = append(m, r)
		}
	}
	return m
}

// Chunk splits a flat list of buttons into rows with up to n buttons per row.
func Chunk(buttons []Button, n int) [][]Button {
	if n < 1 {
		n = 1
	}
	var rows [][]Button
	for i := 0; i < len(buttons); i += n {
		rows = append(rows, buttons[i:min(i+n, len(buttons))])
	}
	return rows
}

// Single is a markup with one button.
func Single(b Button) Markup {
	return Markup{{b}}
}
