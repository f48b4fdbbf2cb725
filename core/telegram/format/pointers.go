package format

import "strings"

// OptionalString returns nil for blank input, otherwise a pointer to the trimmed value.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
