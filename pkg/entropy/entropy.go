package entropy

import (
	"math"
	"strings"
)

const (
	Base64CharsetName = "base64"
	HexCharsetName    = "hex"

	base64Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
	hexCharset    = "1234567890abcdefABCDEF"
)

// Entropy returns the Shannon entropy of input measured against a charset.
func Entropy(input, charsetChars string) (result float64) {
	if input == "" {
		return 0
	}
	inputLen := len(input)
	for _, charsetChar := range charsetChars {
		px := float64(strings.Count(input, string(charsetChar))) / float64(inputLen)
		if px > 0 {
			result += -px * math.Log2(px)
		}
	}

	return
}

func AgainstCharset(inputString, charsetName string) (result float64) {
	return Entropy(inputString, getCharsetChars(charsetName))
}

func ValidCharsets() []string {
	return []string{Base64CharsetName, HexCharsetName}
}

func getCharsetChars(charsetName string) (result string) {
	switch charsetName {
	case Base64CharsetName:
		result = base64Charset
	case HexCharsetName:
		result = hexCharset
	default:
		panic("unknown charset name: " + charsetName)
	}
	return
}
