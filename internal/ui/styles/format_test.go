package styles

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "exact", TruncateString("exact", 5))
	assert.Equal(t, "bert-ba...", TruncateString("bert-base-uncased", 10))
	assert.Equal(t, "", TruncateString("anything", 0))

	// Below four cells there is no room for an ellipsis
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
}

func TestTruncateString_WideRunes(t *testing.T) {
	// Each CJK rune occupies two display cells
	s := "日本語テスト"
	assert.Equal(t, 12, runewidth.StringWidth(s))

	got := TruncateString(s, 8)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 8)
	assert.Contains(t, got, "...")
}

func TestPadCell(t *testing.T) {
	assert.Equal(t, "ab   ", PadCell("ab", 5))
	assert.Equal(t, "abcde", PadCell("abcde", 5))
	assert.Equal(t, "ab...", PadCell("abcdefgh", 5))

	// Wide runes still land on the exact cell width
	got := PadCell("日本", 6)
	assert.Equal(t, 6, runewidth.StringWidth(got))
}
