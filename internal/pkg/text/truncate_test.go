package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "中...", Truncate("中文", 4))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "FINAL", FirstLine("\n  \n  FINAL  \nmore", 20))
	assert.Equal(t, "abc...", FirstLine("abcdef", 3))
	assert.Equal(t, "", FirstLine(" \n\t", 10))
}
