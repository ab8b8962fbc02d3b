package manip_test

import (
	"testing"

	"github.com/nagelea/keysentry/pkg/manip"

	"github.com/stretchr/testify/assert"
)

func TestMakeOneLine(t *testing.T) {
	assert.Equal(t, "a b c", manip.MakeOneLine("a\nb\r\nc", " "))
	assert.Equal(t, "flat", manip.MakeOneLine("flat", " "))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", manip.TruncateString("abcdef", 3))
	assert.Equal(t, "abcdef", manip.TruncateString("abcdef", 10))
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "sk-ant...x9Qz", manip.MaskValue("sk-ant-REDACTED", 6))

	// Values too short to keep anything of are masked entirely
	assert.Equal(t, "********", manip.MaskValue("shortkey", 6))
}
