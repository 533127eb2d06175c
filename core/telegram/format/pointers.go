package format

import "strings"

// DerefString returns *s, or defaultVal when s is nil or blank.
func DerefString(s *string, defaultVal string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return defaultVal
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
