package format

import "unicode/utf8"

const ellipsis = "…"

// Truncate limits s to max runes. A cut string ends with an ellipsis that counts toward max.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + ellipsis
}
