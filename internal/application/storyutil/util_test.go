package storyutil

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "abc", TruncateByRunes("abc", 5))
	assert.Equal(t, "ab", TruncateByRunes("abc", 2))
	assert.Equal(t, "小熊", TruncateByRunes("小熊去野餐", 2))
}

func TestDropLines(t *testing.T) {
	re := regexp.MustCompile(`(?i)image`)
	assert.Equal(t, "a c", DropLines("a\nAn IMAGE here\nc", re))
	assert.Equal(t, "", DropLines("image only", re))
	assert.Equal(t, "x", DropLines("  x  ", re))
}

func TestFirstNonEmptyLine(t *testing.T) {
	line, ok := FirstNonEmptyLine("\n\n  first\nsecond")
	assert.True(t, ok)
	assert.Equal(t, "  first", line)

	_, ok = FirstNonEmptyLine("\n\n")
	assert.False(t, ok)
}

func TestStripWrappingQuote(t *testing.T) {
	assert.Equal(t, "hi", StripWrappingQuote(`"hi"`))
	assert.Equal(t, `"hi"`, StripWrappingQuote(`""hi""`))
	assert.Equal(t, "hi", StripWrappingQuote("hi"))
	assert.Equal(t, "", StripWrappingQuote(`"`))
}
