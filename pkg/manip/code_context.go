package manip

import "strings"

const tokenBoundaryChars = " \t\r\n"

// CodeContext returns the ranges before and after a code range, up to limit
// characters each side. When the cap lands mid-token, the partial token
// fragment at the edge is dropped so a window never starts or ends inside a
// word.
func CodeContext(contents string, codeRange *LineRange, limit int) (before, after *LineRange) {
	contextRange := CreateCodeContext(contents, codeRange, limit)

	before = NewLineRange(contextRange.StartIndex, codeRange.StartIndex)
	after = NewLineRange(codeRange.EndIndex, contextRange.EndIndex)

	return
}

// CodeContextValue returns the full window around a code range as one string,
// including the code itself.
func CodeContextValue(contents string, codeRange *LineRange, limit int) string {
	return CreateCodeContext(contents, codeRange, limit).ExtractValue(contents).Value
}

func CreateCodeContext(contents string, codeRange *LineRange, limit int) (result *LineRange) {
	start := 0
	if limit > -1 && codeRange.StartIndex > limit {
		start = codeRange.StartIndex - limit

		// Cut landed mid-token, drop the leading fragment
		if !isBoundary(contents[start-1]) {
			if i := strings.IndexAny(contents[start:codeRange.StartIndex], tokenBoundaryChars); i != -1 {
				start += i + 1
			}
		}
	}

	end := len(contents)
	if limit > -1 && end-codeRange.EndIndex > limit {
		end = codeRange.EndIndex + limit

		// Cut landed mid-token, drop the trailing fragment
		if !isBoundary(contents[end]) {
			if i := strings.LastIndexAny(contents[codeRange.EndIndex:end], tokenBoundaryChars); i != -1 {
				end = codeRange.EndIndex + i
			}
		}
	}

	return NewLineRange(start, end)
}

func isBoundary(c byte) bool {
	return strings.IndexByte(tokenBoundaryChars, c) != -1
}
