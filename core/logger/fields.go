package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
	"fatal":   "FATAL",
}

// status is free-form; only the known spellings are canonicalised
var statusNames = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"error":        "fail",
	"skip":         "skip",
	"retry":        "retry",
	"denied":       "denied",
	"rate_limited": "rate_limited",
	"cancelled":    "cancelled",
}

// outcome values outside this set are dropped
var outcomeNames = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"notice":       "notice",
	"denied":       "denied",
	"cancelled":    "cancelled",
	"rate_limited": "rate_limited",
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func lookupEnum(table map[string]string, v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	if mapped, ok := table[v]; ok {
		return mapped, true
	}
	return v, false
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"kind",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"session",
	"stage",
	"privileged",
	"item_id",
	"category_id",
	"index",
	"total",
	"action",
	"count",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"driver",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"attempts",
	"backoff_ms",
}
