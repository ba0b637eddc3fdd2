// Package srs implements the SM-2 style scheduler shared by vocabulary cards
// and grammar exercises. The functions here are pure: they map (state, grade,
// now) to the next state, and the services persist the result.
package srs

import (
	"math"
	"time"
)

// Grade is the user's answer quality on the 0..5 scale.
type Grade int

const (
	GradeAgain     Grade = 0
	GradeWrong     Grade = 1
	GradeWrongNear Grade = 2
	GradeHard      Grade = 3
	GradeGood      Grade = 4
	GradeEasy      Grade = 5
)

// Correct reports whether the grade counts as a successful recall.
func (g Grade) Correct() bool { return g >= GradeHard }

const (
	// MinEase is the SM-2 ease floor.
	MinEase = 1.3
	// DefaultEase is the starting ease for fresh cards.
	DefaultEase = 2.5
)

// State is the SM-2 scheduling state common to both card kinds.
type State struct {
	Ease        float64
	Interval    int // days
	Repetitions int
}

// NewState returns the state of a card that has never been reviewed.
func NewState() State {
	return State{Ease: DefaultEase, Interval: 0, Repetitions: 0}
}

// Next applies one review to the state and returns the updated state together
// with the next review time (reviewedAt + interval days).
func Next(s State, grade Grade, reviewedAt time.Time) (State, time.Time) {
	switch {
	case grade <= GradeWrongNear:
		// Again and both incorrect grades reset the card.
		s.Repetitions = 0
		s.Interval = 1
		s.Ease = math.Max(MinEase, s.Ease-0.2)

	case grade == GradeHard:
		s.Ease = math.Max(MinEase, s.Ease-0.15)
		s.Interval = ceilDays(float64(s.Interval) * 1.2)
		s.Repetitions++

	default: // Good and Easy
		switch s.Repetitions {
		case 0:
			s.Interval = 1
		case 1:
			s.Interval = 6
		default:
			s.Interval = ceilDays(float64(s.Interval) * s.Ease)
		}
		s.Repetitions++
		if grade == GradeEasy {
			s.Ease += 0.1
			s.Interval = ceilDays(float64(s.Interval) * 1.3)
		}
	}

	// A successful review always pushes the card at least one day out.
	if grade.Correct() && s.Interval < 1 {
		s.Interval = 1
	}

	return s, reviewedAt.AddDate(0, 0, s.Interval)
}

func ceilDays(v float64) int {
	return int(math.Ceil(v))
}

// Phase labels a vocabulary card for deck items.
func Phase(s State) string {
	switch {
	case s.Repetitions == 0:
		return "new"
	case s.Interval >= MatureIntervalDays:
		return "review"
	default:
		return "learning"
	}
}

const (
	// MatureIntervalDays marks a card as mature.
	MatureIntervalDays = 21
	// MasteredIntervalDays marks a card as mastered.
	MasteredIntervalDays = 180
)
