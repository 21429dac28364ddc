package textsplit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitShortTextReturnsSingleChunk(t *testing.T) {
	parts := Split("a short fact", 100, 10)
	assert.Equal(t, []string{"a short fact"}, parts)
}

func TestSplitEmptyTextReturnsNil(t *testing.T) {
	assert.Nil(t, Split("   ", 100, 10))
}

func TestSplitBreaksOnWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 50) // 250 runes
	parts := Split(text, 100, 20)

	assert.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 100)
		assert.False(t, strings.HasPrefix(p, "ord"), "chunk must not start mid-word: %q", p)
	}
}

func TestSplitOverlapPreservesBoundaryContent(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	text := strings.Join(words, " ")
	parts := Split(text, 60, 15)

	assert.Greater(t, len(parts), 1)
	for i := 1; i < len(parts); i++ {
		first := strings.Fields(parts[i])[0]
		assert.Contains(t, parts[i-1], first, "chunk %d should overlap the previous one", i)
	}
}

func TestSplitHardCutsUnbrokenRuns(t *testing.T) {
	text := strings.Repeat("x", 250)
	parts := Split(text, 100, 10)

	var total int
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 100)
		total += len(p)
	}
	assert.GreaterOrEqual(t, total, 250)
}
