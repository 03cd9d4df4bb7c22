package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyStrings(b key.Binding) []string {
	return b.Keys()
}

func TestDefaultBrowseKeyMap(t *testing.T) {
	k := DefaultBrowseKeyMap()

	assert.Contains(t, keyStrings(k.FocusSearch), "/")
	assert.Contains(t, keyStrings(k.Execute), "enter")
	assert.Contains(t, keyStrings(k.Blur), "esc")
	assert.Contains(t, keyStrings(k.HistPrev), "ctrl+p")
	assert.Contains(t, keyStrings(k.HistNext), "ctrl+n")
	assert.Contains(t, keyStrings(k.Enrich), "e")
	assert.Contains(t, keyStrings(k.Submit), "s")
	assert.Contains(t, keyStrings(k.Yank), "y")
	assert.Contains(t, keyStrings(k.Logs), "ctrl+x")
	assert.Contains(t, keyStrings(k.Quit), "q")
	assert.Contains(t, keyStrings(k.Quit), "ctrl+c")
}

func TestBrowseKeyMap_Help(t *testing.T) {
	k := DefaultBrowseKeyMap()

	short := k.ShortHelp()
	require.NotEmpty(t, short)
	for _, b := range short {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}

	full := k.FullHelp()
	require.Len(t, full, 4)
	for _, column := range full {
		assert.NotEmpty(t, column)
	}
}

func TestDefaultInspectKeyMap(t *testing.T) {
	k := DefaultInspectKeyMap()

	assert.Contains(t, keyStrings(k.Back), "esc")
	assert.Contains(t, keyStrings(k.Copy), "c")
	assert.Contains(t, keyStrings(k.Update), "u")
	assert.Contains(t, keyStrings(k.Delete), "d")
	assert.Contains(t, keyStrings(k.Delete), "x")
	assert.Contains(t, keyStrings(k.Refresh), "r")
}

func TestInspectKeyMap_Help(t *testing.T) {
	k := DefaultInspectKeyMap()

	require.NotEmpty(t, k.ShortHelp())

	full := k.FullHelp()
	require.Len(t, full, 3)
	for _, column := range full {
		for _, b := range column {
			assert.NotEmpty(t, b.Help().Key)
		}
	}
}
