package logger

import "strings"

// Outcome maps an error to the outcome enumeration used in handler summaries.
func Outcome(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// SummarizeStrings joins up to limit elements and reports whether any were left out.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
