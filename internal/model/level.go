package model

import "strings"

// Level is a CEFR proficiency level. The zero value is not a valid level.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// DefaultLevel is used when neither a module nor its course carries a level.
const DefaultLevel = LevelB1

var levelOrder = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// ParseLevel normalises a level string. Unknown values fall back to DefaultLevel.
func ParseLevel(s string) Level {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if l.Valid() {
		return l
	}
	return DefaultLevel
}

func (l Level) Valid() bool {
	return l.Index() >= 0
}

// Index returns the position of l on the ordered CEFR scale, -1 if unknown.
func (l Level) Index() int {
	for i, v := range levelOrder {
		if v == l {
			return i
		}
	}
	return -1
}

// Distance is the absolute distance between two levels on the CEFR scale.
// Unknown levels compare as DefaultLevel.
func (l Level) Distance(other Level) int {
	a, b := l.Index(), other.Index()
	if a < 0 {
		a = DefaultLevel.Index()
	}
	if b < 0 {
		b = DefaultLevel.Index()
	}
	if a > b {
		return a - b
	}
	return b - a
}

// Above reports whether l is strictly above other on the CEFR scale.
func (l Level) Above(other Level) bool {
	return l.Index() > other.Index()
}

func (l Level) String() string { return string(l) }
