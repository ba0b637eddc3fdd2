package tasks

// QuizScore is the outcome of a graded attempt.
type QuizScore struct {
	Score      int  `json:"score"`
	Percentage int  `json:"percentage"`
	XPAwarded  int  `json:"xp_awarded"`
	Passed     bool `json:"passed"`
}

const (
	xpPerCorrect = 10
	xpPassBonus  = 20
	xpSpeedBonus = 10

	// speedSecondsPerQuestion is the threshold under which a passed attempt
	// earns the speed bonus.
	speedSecondsPerQuestion = 30
)

// CalculateQuizScore grades an attempt. A zero attempt yields a zero result
// rather than an error so unanswered quizzes record cleanly.
func CalculateQuizScore(correct, total, timeSpentSeconds int) QuizScore {
	if total <= 0 || correct <= 0 {
		return QuizScore{}
	}
	if correct > total {
		correct = total
	}
	percentage := correct * 100 / total
	score := QuizScore{
		Score:      correct,
		Percentage: percentage,
		XPAwarded:  correct * xpPerCorrect,
		Passed:     percentage >= PassScore,
	}
	if score.Passed {
		score.XPAwarded += xpPassBonus
		if timeSpentSeconds > 0 && timeSpentSeconds < total*speedSecondsPerQuestion {
			score.XPAwarded += xpSpeedBonus
		}
	}
	return score
}
