package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// readHistory parses the searches list back out of the file.
func readHistory(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed struct {
		History struct {
			Searches []string `yaml:"searches"`
		} `yaml:"history"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	return parsed.History.Searches
}

func TestSaveSearchHistory_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveSearchHistory(path, []string{"bert.*", "squad"}))

	assert.Equal(t, []string{"bert.*", "squad"}, readHistory(t, path))
}

func TestSaveSearchHistory_PreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := `# Curio Configuration

# Artifact registry connection
registry:
  base_url: http://localhost:9090  # custom port

ui:
  show_status_bar: false
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	require.NoError(t, SaveSearchHistory(path, []string{"resnet"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	// Comments and untouched sections survive the rewrite
	assert.Contains(t, content, "# Curio Configuration")
	assert.Contains(t, content, "# custom port")
	assert.Contains(t, content, "http://localhost:9090")
	assert.Contains(t, content, "show_status_bar: false")

	assert.Equal(t, []string{"resnet"}, readHistory(t, path))
}

func TestSaveSearchHistory_ReplacesExistingSearches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := `history:
  max_entries: 10
  searches:
    - "old-one"
    - "old-two"
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	require.NoError(t, SaveSearchHistory(path, []string{"new-one"}))

	assert.Equal(t, []string{"new-one"}, readHistory(t, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_entries: 10")
	assert.NotContains(t, string(data), "old-two")
}

func TestSaveSearchHistory_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveSearchHistory(path, nil))
	assert.Empty(t, readHistory(t, path))
}
