package manip_test

import (
	"testing"

	"github.com/nagelea/keysentry/pkg/manip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeContext(t *testing.T) {
	contents := "one two three four five"
	codeRange := manip.FindLineRange(contents, "three")
	require.NotNil(t, codeRange)

	// Fire
	before, after := manip.CodeContext(contents, codeRange, 100)

	assert.Equal(t, "one two ", before.ExtractValue(contents).Value)
	assert.Equal(t, " four five", after.ExtractValue(contents).Value)
}

func TestCodeContext_LimitDropsPartialTokens(t *testing.T) {
	contents := "aaaa bbbb cccc dddd eeee"
	codeRange := manip.FindLineRange(contents, "cccc")
	require.NotNil(t, codeRange)

	// Fire: limit lands inside "aaaa" and "eeee", the fragments are dropped
	before, after := manip.CodeContext(contents, codeRange, 6)

	assert.Equal(t, "bbbb ", before.ExtractValue(contents).Value)
	assert.Equal(t, " dddd", after.ExtractValue(contents).Value)
}

func TestCodeContext_LimitSmallerThanNeighborTokens(t *testing.T) {
	contents := "aaaa bbbb cccc dddd eeee"
	codeRange := manip.FindLineRange(contents, "cccc")
	require.NotNil(t, codeRange)

	// Fire: only fragments of "bbbb" and "dddd" fit, so nothing survives
	before, after := manip.CodeContext(contents, codeRange, 3)

	assert.Equal(t, "", before.ExtractValue(contents).Value)
	assert.Equal(t, "", after.ExtractValue(contents).Value)
}

func TestCodeContextValue_IncludesCode(t *testing.T) {
	contents := "AZURE_OPENAI_KEY=deadbeef suffix"
	codeRange := manip.FindLineRange(contents, "deadbeef")
	require.NotNil(t, codeRange)

	// Fire
	window := manip.CodeContextValue(contents, codeRange, 100)

	assert.Contains(t, window, "AZURE_OPENAI_KEY")
	assert.Contains(t, window, "deadbeef")
}

func TestLineRange_Overlaps(t *testing.T) {
	assert.True(t, manip.NewLineRange(0, 5).Overlaps(manip.NewLineRange(4, 8)))
	assert.False(t, manip.NewLineRange(0, 5).Overlaps(manip.NewLineRange(5, 8)))
}
