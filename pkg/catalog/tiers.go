package catalog

import "strings"

type (
	// Confidence estimates whether a match is a real secret of the claimed type
	Confidence int

	// Severity estimates the impact if the secret is real and live
	Severity int

	// ScanMode selects which pattern specs are enabled
	ScanMode int
)

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

const (
	ModeFull ScanMode = iota
	ModeStrict
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	}
	panic("unknown confidence tier")
}

func NewConfidenceFromValue(val string) Confidence {
	for _, c := range []Confidence{ConfidenceLow, ConfidenceMedium, ConfidenceHigh} {
		if c.String() == strings.ToLower(val) {
			return c
		}
	}
	panic("unknown confidence tier: " + val)
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	panic("unknown severity tier")
}

func NewSeverityFromValue(val string) Severity {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh} {
		if s.String() == strings.ToLower(val) {
			return s
		}
	}
	panic("unknown severity tier: " + val)
}

func ValidSeverity(val string) bool {
	switch strings.ToLower(val) {
	case "low", "medium", "high":
		return true
	}
	return false
}

func (m ScanMode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeStrict:
		return "strict"
	}
	panic("unknown scan mode")
}

func NewScanModeFromValue(val string) ScanMode {
	switch strings.ToLower(val) {
	case "full":
		return ModeFull
	case "strict":
		return ModeStrict
	}
	panic("unknown scan mode: " + val)
}
