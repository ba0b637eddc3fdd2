package srs

import "time"

// Grammar cards carry an Anki-like learning-state machine on top of the SM-2
// numbers. States mirror model.CardState*.
const (
	StateNew        = "new"
	StateLearning   = "learning"
	StateReview     = "review"
	StateRelearning = "relearning"
)

const (
	// learningSteps is the number of successful answers needed to graduate
	// from learning (or relearning) into review.
	learningSteps = 2
	// LapseThreshold resets a leech back to learning from step zero.
	LapseThreshold = 8
	// BuryDuration suppresses a card after a wrong answer without touching
	// its schedule.
	BuryDuration = 24 * time.Hour
)

// GrammarState is the full scheduling state of a grammar exercise.
type GrammarState struct {
	State
	CardState string
	StepIndex int
	Lapses    int
}

// NewGrammarState returns the state of an unseen grammar exercise.
func NewGrammarState() GrammarState {
	return GrammarState{State: NewState(), CardState: StateNew}
}

// NextGrammar applies one review to a grammar card. It layers the state
// machine transitions over the shared SM-2 arithmetic.
func NextGrammar(g GrammarState, grade Grade, reviewedAt time.Time) (GrammarState, time.Time) {
	next, due := Next(g.State, grade, reviewedAt)
	g.State = next

	if !grade.Correct() {
		g.Lapses++
		g.CardState = StateRelearning
		g.StepIndex = 0
		if g.Lapses >= LapseThreshold {
			// leech: back to the start of learning
			g.CardState = StateLearning
			g.Lapses = 0
		}
		return g, due
	}

	switch g.CardState {
	case StateNew:
		g.CardState = StateLearning
		g.StepIndex = 1
	case StateLearning, StateRelearning:
		g.StepIndex++
		if g.StepIndex >= learningSteps {
			g.CardState = StateReview
			g.StepIndex = 0
		}
	case StateReview:
		// stays in review
	}
	return g, due
}

// BuryUntil returns the suppression deadline after a wrong answer.
func BuryUntil(now time.Time) time.Time {
	return now.Add(BuryDuration)
}
