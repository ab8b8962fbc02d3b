package extract

import (
	"strings"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/fetch"
	"github.com/nagelea/keysentry/pkg/manip"
)

// ContextWindowSize is how many characters of context are kept on each side
// of a match for classification.
const ContextWindowSize = 300

// Extract applies every enabled pattern spec to the content in priority
// order. Once a literal has been attributed to a provider it is never
// re-attributed to a lower-priority one, neither at the same offset nor
// elsewhere in the file. Pure function of (content, catalog, mode).
func Extract(content *fetch.Content, cat *catalog.Catalog, mode catalog.ScanMode) (result []*Candidate) {
	text := content.Text

	var claimedRanges []*manip.LineRange
	claimedLiterals := map[string]bool{}

	for _, spec := range cat.AllSpecs(mode) {
		matches := spec.Re().FindAllStringIndex(text, -1)

		for _, match := range matches {
			matchRange := manip.NewLineRange(match[0], match[1])
			literal := matchRange.ExtractValue(text).Value

			if claimedLiterals[literal] {
				continue
			}
			if overlapsAny(matchRange, claimedRanges) {
				continue
			}

			claimedLiterals[literal] = true
			claimedRanges = append(claimedRanges, matchRange)

			before, after := manip.CodeContext(text, matchRange, ContextWindowSize)

			result = append(result, &Candidate{
				Value:         literal,
				KeyType:       spec.KeyType,
				Confidence:    spec.Confidence,
				Ref:           content.Ref,
				Offset:        match[0],
				ContextBefore: before.ExtractValue(text).Value,
				ContextAfter:  after.ExtractValue(text).Value,
				Line:          lineAround(text, match[0], match[1]),
			})
		}
	}

	return
}

func overlapsAny(r *manip.LineRange, ranges []*manip.LineRange) bool {
	for _, claimed := range ranges {
		if r.Overlaps(claimed) {
			return true
		}
	}
	return false
}

func lineAround(text string, start, end int) string {
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1

	lineEnd := len(text)
	if i := strings.IndexByte(text[end:], '\n'); i != -1 {
		lineEnd = end + i
	}

	return text[lineStart:lineEnd]
}
