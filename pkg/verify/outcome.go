package verify

type Outcome int

const (
	// The probe set has no safe read-only call for this provider
	OutcomeUnsupported Outcome = iota

	OutcomeValid
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unsupported"
	}
}

func NewOutcomeFromValue(val string) Outcome {
	for _, o := range []Outcome{OutcomeUnsupported, OutcomeValid, OutcomeInvalid} {
		if o.String() == val {
			return o
		}
	}
	return OutcomeUnsupported
}
