package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilypad-dao/lilypad/core"
)

func TestParseType(t *testing.T) {
	for _, typ := range AllTypes {
		got, err := ParseType(strings.ToLower(string(typ)))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
		assert.True(t, got.IsValid())
	}

	got, err := ParseType("  ")
	require.NoError(t, err)
	assert.Equal(t, Type(""), got)
	assert.False(t, got.IsValid())

	_, err = ParseType("blog")
	assert.True(t, core.IsArgumentError(err))
}
