package catalog

import (
	"regexp"

	"github.com/nagelea/keysentry/pkg/errors"
)

type (

	// PatternSpec is one provider rule: how to match a token, how confident a
	// bare match is, and what context the classifier requires around it.
	PatternSpec struct {
		KeyType    KeyType
		Pattern    string
		Confidence Confidence

		// At least one must appear in the window for low/medium confidence
		RequiredContext []string

		// Presence of any in the window vetoes the match
		ExcludedContext []string

		// Entropy gate for generic (format-only) patterns; zero disables it
		EntropyFloor   float64
		EntropyCharset string

		// Code-search queries that tend to surface this token family
		SearchQueries []string

		re *regexp.Regexp
	}

	// Catalog holds pattern specs in priority order, most specific first.
	// A literal matched by one spec is never re-attributed to a later one.
	Catalog struct {
		specs  []*PatternSpec
		byType map[KeyType]*PatternSpec
	}
)

func New(specs []*PatternSpec) (result *Catalog, err error) {
	byType := make(map[KeyType]*PatternSpec, len(specs))
	for _, spec := range specs {
		if _, ok := byType[spec.KeyType]; ok {
			err = errors.Errorv("duplicate pattern spec for key type", spec.KeyType)
			return
		}
		spec.re, err = regexp.Compile(spec.Pattern)
		if err != nil {
			err = errors.Wrapv(err, "unable to compile pattern", spec.KeyType, spec.Pattern)
			return
		}
		byType[spec.KeyType] = spec
	}

	result = &Catalog{specs: specs, byType: byType}
	return
}

func NewDefault() *Catalog {
	result, err := New(builtinSpecs())
	if err != nil {
		panic(err.Error())
	}
	return result
}

func (c *Catalog) Lookup(keyType KeyType) (result *PatternSpec, ok bool) {
	result, ok = c.byType[keyType]
	return
}

// AllSpecs returns enabled specs in priority order
func (c *Catalog) AllSpecs(mode ScanMode) (result []*PatternSpec) {
	for _, spec := range c.specs {
		if mode == ModeStrict && spec.Confidence != ConfidenceHigh {
			continue
		}
		result = append(result, spec)
	}
	return
}

func (c *Catalog) SearchQueries(mode ScanMode) (result []string) {
	for _, spec := range c.AllSpecs(mode) {
		result = append(result, spec.SearchQueries...)
	}
	return
}

func (s *PatternSpec) Re() *regexp.Regexp {
	return s.re
}

// Gated reports whether the context gate applies to matches of this spec
func (s *PatternSpec) Gated() bool {
	return s.Confidence != ConfidenceHigh
}
