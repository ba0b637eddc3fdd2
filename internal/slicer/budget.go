package slicer

import "github.com/nekto007/language-learning-tool/internal/model"

// WordBudget bounds one reading slice. Target is where the greedy cut aims;
// Max is never exceeded unless a single sentence is longer on its own.
type WordBudget struct {
	Target int
	Max    int
}

var wordBudgets = map[model.Level]WordBudget{
	model.LevelA1: {Target: 100, Max: 150},
	model.LevelA2: {Target: 125, Max: 200},
	model.LevelB1: {Target: 400, Max: 600},
	model.LevelB2: {Target: 700, Max: 800},
	model.LevelC1: {Target: 900, Max: 1000},
	model.LevelC2: {Target: 1050, Max: 1200},
}

// BudgetFor returns the slice budget of a level, defaulting to B1 pacing.
func BudgetFor(level model.Level) WordBudget {
	if b, ok := wordBudgets[level]; ok {
		return b
	}
	return wordBudgets[model.DefaultLevel]
}

// minSliceWords is the floor for a slice while more content remains; a
// smaller tail is merged into its predecessor.
const minSliceWords = 50

// dayPair is the two lesson types sharing one day.
type dayPair struct {
	First  string
	Second string
}

// beginnerCycle is the repeating 7-day pattern for A1 and A2, a module test
// day closes the module.
var beginnerCycle = []dayPair{
	{model.LessonVocabulary, model.LessonReading},
	{model.LessonReading, model.LessonGrammar},
	{model.LessonReading, model.LessonMCQ},
	{model.LessonReading, model.LessonCloze},
	{model.LessonVocabReview, model.LessonReading},
	{model.LessonReading, model.LessonSummary},
	{model.LessonVocabulary, model.LessonReading},
}

// intermediateRotation pairs each reading day with one practice type for B1
// and above.
var intermediateRotation = []string{
	model.LessonVocabulary,
	model.LessonGrammar,
	model.LessonMCQ,
	model.LessonCloze,
	model.LessonVocabReview,
	model.LessonSummary,
}

// pairForDay returns the lesson pair of the d-th slice day (1-based).
func pairForDay(level model.Level, day int) dayPair {
	if level.Index() <= model.LevelA2.Index() {
		return beginnerCycle[(day-1)%len(beginnerCycle)]
	}
	return dayPair{
		First:  model.LessonReading,
		Second: intermediateRotation[(day-1)%len(intermediateRotation)],
	}
}
