package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifactType(t *testing.T) {
	tests := []struct {
		in   string
		want ArtifactType
	}{
		{"model", TypeModel},
		{"DATASET", TypeDataset},
		{" code ", TypeCode},
	}
	for _, tt := range tests {
		got, err := ParseArtifactType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseArtifactType("plugin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin")
}

func TestArtifactType_Valid(t *testing.T) {
	assert.True(t, TypeModel.Valid())
	assert.True(t, TypeDataset.Valid())
	assert.True(t, TypeCode.Valid())
	assert.False(t, ArtifactType("plugin").Valid())
	assert.False(t, ArtifactType("").Valid())
}

func TestFormatRating(t *testing.T) {
	// Shortest decimal representation, no trailing zeros
	assert.Equal(t, "0.82", FormatRating(0.82))
	assert.Equal(t, "1", FormatRating(1.0))
	assert.Equal(t, "0", FormatRating(0))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "120 MB", FormatCost(120))
	assert.Equal(t, "3.5 MB", FormatCost(3.5))
}
