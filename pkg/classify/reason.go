package classify

import "strings"

// Reason is a machine-readable rejection code
type Reason int

const (
	NoReason Reason = iota
	FakeIndicator
	CommentLine
	MissingRequiredContext
	ExcludedContextPresent
	LowEntropy
)

func Reasons() []Reason {
	return []Reason{
		NoReason,
		FakeIndicator,
		CommentLine,
		MissingRequiredContext,
		ExcludedContextPresent,
		LowEntropy,
	}
}

func (r Reason) String() string {
	switch r {
	case NoReason:
		return "none"
	case FakeIndicator:
		return "fake-indicator"
	case CommentLine:
		return "comment-line"
	case MissingRequiredContext:
		return "missing-required-context"
	case ExcludedContextPresent:
		return "excluded-context-present"
	case LowEntropy:
		return "low-entropy"
	}
	panic("unknown rejection reason")
}

func NewReasonFromValue(val string) Reason {
	for _, r := range Reasons() {
		if r.String() == strings.ToLower(val) {
			return r
		}
	}
	panic("unknown rejection reason: " + val)
}
