package manip

import (
	"fmt"
	"strings"
)

type (
	LineRange struct {
		StartIndex int
		EndIndex   int
	}
	LineRangeValue struct {
		LineRange *LineRange
		Value     string
	}
)

func NewLineRange(startIndex, endIndex int) (result *LineRange) {
	if endIndex < startIndex {
		panic(fmt.Sprintf("end index must be equal or greater than start index (%d >= %d)", startIndex, endIndex))
	}
	return &LineRange{StartIndex: startIndex, EndIndex: endIndex}
}

func FindLineRange(val, sub string) (result *LineRange) {
	index := strings.Index(val, sub)
	if index == -1 {
		return
	}
	return NewLineRange(index, index+len(sub))
}

func (r *LineRange) Len() int {
	return r.EndIndex - r.StartIndex
}

func (r *LineRange) Equals(other *LineRange) bool {
	return r.StartIndex == other.StartIndex && r.EndIndex == other.EndIndex
}

func (r *LineRange) Overlaps(other *LineRange) bool {
	return r.StartIndex < other.EndIndex && other.StartIndex < r.EndIndex
}

func (r *LineRange) Contains(other *LineRange) bool {
	return r.StartIndex <= other.StartIndex && other.EndIndex <= r.EndIndex
}

func (r *LineRange) ExtractValue(contents string) (result *LineRangeValue) {
	return &LineRangeValue{LineRange: r, Value: contents[r.StartIndex:r.EndIndex]}
}

func (r *LineRange) String() string {
	return fmt.Sprintf("[%d:%d]", r.StartIndex, r.EndIndex)
}
