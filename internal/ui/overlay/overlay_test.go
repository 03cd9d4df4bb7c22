package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func background(width, height int) string {
	line := strings.Repeat(".", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestPlace_Center(t *testing.T) {
	out := Place(Config{Width: 10, Height: 5, Position: Center}, "XX", background(10, 5))
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "....XX....", lines[2])
	assert.Equal(t, "..........", lines[0])
	assert.Equal(t, "..........", lines[4])
}

func TestPlace_Bottom(t *testing.T) {
	out := Place(Config{Width: 10, Height: 5, Position: Bottom, PadY: 1}, "XX", background(10, 5))
	lines := strings.Split(out, "\n")

	assert.Equal(t, "....XX....", lines[3])
	assert.Equal(t, "..........", lines[4])
}

func TestPlace_MultilineForeground(t *testing.T) {
	fg := "AAAA\nBBBB"
	out := Place(Config{Width: 8, Height: 4, Position: Center}, fg, background(8, 4))
	lines := strings.Split(out, "\n")

	assert.Equal(t, "..AAAA..", lines[1])
	assert.Equal(t, "..BBBB..", lines[2])
}

func TestPlace_OversizedForeground(t *testing.T) {
	fg := strings.TrimSuffix(strings.Repeat("WWWW\n", 6), "\n")
	out := Place(Config{Width: 4, Height: 3, Position: Center}, fg, background(4, 3))
	lines := strings.Split(out, "\n")

	// Extra foreground lines are clipped to the viewport
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Equal(t, "WWWW", line)
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 6, Height: 4, Position: Bottom}, "XX", "..")
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "  XX  ", lines[3])
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	styled := "\x1b[31m......\x1b[0m"
	bg := strings.Join([]string{styled, styled, styled}, "\n")

	out := Place(Config{Width: 6, Height: 3, Position: Center}, "XX", bg)
	lines := strings.Split(out, "\n")

	// The untouched rows keep their escape sequences
	assert.Contains(t, lines[0], "\x1b[31m")
	assert.Contains(t, lines[1], "XX")
}
