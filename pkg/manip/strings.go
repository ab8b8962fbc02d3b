package manip

import (
	"strings"
)

func MakeOneLine(val, replacement string) string {
	return strings.ReplaceAll(strings.ReplaceAll(val, "\r\n", replacement), "\n", replacement)
}

// MaskValue keeps the first and last keep characters of a value and replaces
// the middle with a fixed ellipsis. Short values are masked entirely.
func MaskValue(val string, keep int) string {
	if len(val) <= keep*2 {
		return strings.Repeat("*", len(val))
	}
	return val[:keep] + "..." + val[len(val)-keep:]
}

func TruncateString(val string, limit int) string {
	if len(val) <= limit {
		return val
	}
	return val[:limit]
}
