package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

var levelNames = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// Statuses of Telegram sends and handler runs. Unknown values pass through.
var knownStatus = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"retry":        {},
	"rate_limited": {},
	"cancelled":    {},
	"not_found":    {},
}

// Dialog reply outcomes. Unknown values are dropped.
var knownOutcome = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"cancelled":    {},
	"rate_limited": {},
	"not_found":    {},
	"usage":        {},
	"invalid":      {},
}

// keyOrder lists the keys that lead every line. Other keys follow in sorted order.
var keyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"outcome",
	"rid",
	"rid_full",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"command",
	"flow",
	"state",
	"from_state",
	"to_state",
	"op",
	"product_id",
	"duration_ms",
	"err",
}

func normalizeLevel(level string) string {
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	if level == "" {
		return LevelInfo
	}
	return strings.ToUpper(level)
}

func known(value string, set map[string]struct{}) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	_, ok := set[value]
	return value, ok && value != ""
}
