package logg

import "strings"

type Level int

const (
	Error Level = iota
	Warn
	Info
	Debug
	Trace
)

func Levels() []Level {
	return []Level{Error, Warn, Info, Debug, Trace}
}

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
	panic("unknown log level")
}

func NewLevelFromValue(val string) Level {
	for _, level := range Levels() {
		if level.String() == strings.ToLower(val) {
			return level
		}
	}
	panic("unknown log level: " + val)
}

func (l Level) CanLog(other Level) bool {
	return other <= l
}
