package classify

import (
	"strings"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/entropy"
	"github.com/nagelea/keysentry/pkg/extract"
	"github.com/nagelea/keysentry/pkg/logg"
)

const (
	// How many characters around the literal count as "immediately
	// surrounded" for the fake-indicator screen
	fakeIndicatorReach = 60
)

var (
	// Tokens that mark a literal as documentation rather than a credential
	fakeIndicators = []string{
		"example",
		"sample",
		"placeholder",
		"dummy",
		"fake",
		"test",
		"your_api_key",
		"your-api-key",
		"<your",
		"xxxxxx",
		"000000000000",
		"insert_key_here",
	}

	commentMarkers = []string{"//", "#", "*", "--", ";", "<!--", "/*", "'''", `"""`, "rem "}

	highSeveritySignals   = []string{"prod", "deploy", "release", "live"}
	mediumSeveritySignals = []string{".env", "config", "settings", "secret", "credential", "docker", "k8s", "kubernetes"}
)

type (

	// Verdict is the classifier's decision for one candidate
	Verdict struct {
		Accepted   bool
		KeyType    catalog.KeyType
		Confidence catalog.Confidence
		Severity   catalog.Severity
		Reason     Reason
	}

	Classifier struct {
		cat *catalog.Catalog
		log logg.Logg
	}
)

func NewClassifier(cat *catalog.Catalog, log logg.Logg) *Classifier {
	return &Classifier{cat: cat, log: log}
}

// Classify runs the veto sequence against one candidate. The decision is a
// pure function of (candidate, catalog); reprocessing stored candidates later
// with the same catalog must reproduce it exactly.
func (c *Classifier) Classify(candidate *extract.Candidate) (result Verdict) {
	log := c.log.AddPrefixPath(candidate.KeyType.String())

	if c.hasFakeIndicator(candidate) {
		log.WithField("value", candidate.Value).Trace("rejected: fake indicator")
		return rejected(FakeIndicator)
	}

	if isCommentLine(candidate.Line) {
		log.WithField("value", candidate.Value).Trace("rejected: comment line")
		return rejected(CommentLine)
	}

	spec, ok := c.cat.Lookup(candidate.KeyType)
	if !ok {
		// A stored type the current catalog no longer knows loses its
		// context support by definition
		return rejected(MissingRequiredContext)
	}

	if spec.Gated() {
		window := strings.ToLower(candidate.Window())

		if containsAny(window, spec.ExcludedContext) {
			log.Trace("rejected: excluded context present")
			return rejected(ExcludedContextPresent)
		}
		if !containsAny(window, spec.RequiredContext) {
			log.Trace("rejected: no required context in window")
			return rejected(MissingRequiredContext)
		}
	}

	if spec.EntropyFloor > 0 {
		if entropy.AgainstCharset(candidate.Value, spec.EntropyCharset) < spec.EntropyFloor {
			log.Trace("rejected: entropy below floor")
			return rejected(LowEntropy)
		}
	}

	return Verdict{
		Accepted:   true,
		KeyType:    candidate.KeyType,
		Confidence: spec.Confidence,
		Severity:   c.severity(candidate),
	}
}

func (c *Classifier) hasFakeIndicator(candidate *extract.Candidate) bool {
	return LooksFake(candidate.Value,
		tail(candidate.ContextBefore, fakeIndicatorReach),
		head(candidate.ContextAfter, fakeIndicatorReach))
}

// LooksFake applies the fake-indicator lexicon to a literal and its
// immediate surroundings. This screen holds for every ingestion path,
// including operator-declared imports.
func LooksFake(value, before, after string) bool {
	if containsAny(strings.ToLower(value), fakeIndicators) {
		return true
	}
	return containsAny(strings.ToLower(before+after), fakeIndicators)
}

// Severity measures impact if the secret is live, independent of confidence
func (c *Classifier) severity(candidate *extract.Candidate) catalog.Severity {
	signals := strings.ToLower(candidate.Window())
	if candidate.Ref != nil {
		signals += " " + strings.ToLower(candidate.Ref.Path)
	}

	if containsAny(signals, highSeveritySignals) {
		return catalog.SeverityHigh
	}
	if containsAny(signals, mediumSeveritySignals) {
		return catalog.SeverityMedium
	}
	return catalog.SeverityLow
}

func isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(line))
	for _, marker := range commentMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

func rejected(reason Reason) Verdict {
	return Verdict{Reason: reason}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func head(val string, n int) string {
	if len(val) <= n {
		return val
	}
	return val[:n]
}

func tail(val string, n int) string {
	if len(val) <= n {
		return val
	}
	return val[len(val)-n:]
}
