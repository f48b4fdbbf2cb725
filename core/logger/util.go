package logger

import (
	"strings"
	"time"
)

// RoundMS rounds to whole milliseconds; non-positive input yields 0.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// SummarizeStrings joins up to limit values and reports whether some were left out.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}

// ErrAttr renders err for the err attribute, trimmed for log hygiene.
func ErrAttr(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeLimit(err.Error(), 256)
}
