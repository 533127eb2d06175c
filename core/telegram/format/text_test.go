package format

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "…", Truncate("abc", 1))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	got := Truncate(strings.Repeat("ж", 10), 4)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "жжж…", got)
	assert.Equal(t, 4, utf8.RuneCountInString(got))
}
