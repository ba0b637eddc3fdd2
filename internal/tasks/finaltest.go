package tasks

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Section sizes for the module test. Sections shrink when the block cannot
// supply enough material, but never below zero.
const (
	finalVocabQuestions     = 10
	finalReadingQuestions   = 8
	finalGrammarQuestions   = 8
	finalCompletionCount    = 6
	finalWordFormationCount = 4
)

var translationDecoys = []string{"корабль", "встреча", "утро", "дорога", "письмо", "берег"}

// FinalTest assembles the module test from all other task material.
func (g *Generator) FinalTest(in Input) FinalTestPayload {
	rng := g.rng(in)

	sections := []FinalTestSection{
		{Name: "vocabulary", Questions: g.vocabQuestions(in, rng)},
		{Name: "reading", Questions: g.readingMCQ(in, finalReadingQuestions).Questions},
		{Name: "grammar", Questions: g.grammarQuestions(in)},
		{Name: "completion", Questions: g.completionQuestions(in, rng)},
		{Name: "word_formation", Questions: g.formationQuestions(in, rng)},
	}

	total := 0
	kept := sections[:0]
	for _, s := range sections {
		if len(s.Questions) == 0 {
			continue
		}
		total += len(s.Questions)
		kept = append(kept, s)
	}

	return FinalTestPayload{
		Sections:       kept,
		TotalQuestions: total,
		PassScore:      PassScore,
		EstimatedTime:  maxInt(45, 2*total),
		Instructions:   "Complete every section. You need 70% to pass the module.",
	}
}

// vocabQuestions asks for the translation of block words, with translations
// of other block words as distractors.
func (g *Generator) vocabQuestions(in Input, rng *rand.Rand) []MCQQuestion {
	var pool []string
	for _, entry := range in.Vocab {
		if entry.Word != nil && entry.Word.Russian != "" {
			pool = append(pool, entry.Word.Russian)
		}
	}

	questions := make([]MCQQuestion, 0, finalVocabQuestions)
	for _, entry := range in.Vocab {
		if len(questions) >= finalVocabQuestions {
			break
		}
		if entry.Word == nil || entry.Word.Russian == "" {
			continue
		}
		options := []string{entry.Word.Russian}
		for _, other := range pool {
			if len(options) >= 4 {
				break
			}
			if other != entry.Word.Russian && !containsString(options, other) {
				options = append(options, other)
			}
		}
		for _, decoy := range translationDecoys {
			if len(options) >= 4 {
				break
			}
			if !containsString(options, decoy) {
				options = append(options, decoy)
			}
		}
		correct := rng.Intn(len(options))
		options[0], options[correct] = options[correct], options[0]
		questions = append(questions, MCQQuestion{
			Question: fmt.Sprintf("What is the translation of %q?", entry.Word.English),
			Options:  options,
			Correct:  correct,
		})
	}
	return questions
}

// grammarQuestions takes the block topic's exercises and pads from the other
// catalogue topics in stable order.
func (g *Generator) grammarQuestions(in Input) []MCQQuestion {
	sheet := lookupGrammarSheet(in.GrammarKey)
	questions := append([]MCQQuestion(nil), sheet.Exercises...)

	catalogue := orderedCatalogue()
	for i := 0; i < len(catalogue) && len(questions) < finalGrammarQuestions; i++ {
		other := catalogue[i]
		if other.Topic == sheet.Topic {
			continue
		}
		for _, q := range other.Exercises {
			if len(questions) >= finalGrammarQuestions {
				break
			}
			questions = append(questions, q)
		}
	}
	if len(questions) > finalGrammarQuestions {
		questions = questions[:finalGrammarQuestions]
	}
	return questions
}

// completionQuestions turns open-cloze gaps into multiple choice, offering
// three other function words per gap.
func (g *Generator) completionQuestions(in Input, rng *rand.Rand) []MCQQuestion {
	cloze := g.openCloze(in, finalCompletionCount)
	others := sortedFunctionWords()

	questions := make([]MCQQuestion, 0, len(cloze.Gaps))
	for _, gap := range cloze.Gaps {
		options := []string{gap.Answer}
		for len(options) < 4 && len(others) > 0 {
			candidate := others[rng.Intn(len(others))]
			if !containsString(options, candidate) {
				options = append(options, candidate)
			}
		}
		correct := rng.Intn(len(options))
		options[0], options[correct] = options[correct], options[0]
		questions = append(questions, MCQQuestion{
			Question: fmt.Sprintf("Choose the word for gap (%d): %s", gap.ID, clampWords(cloze.Text, 40)),
			Options:  options,
			Correct:  correct,
		})
	}
	return questions
}

// formationQuestions turns word-formation items into multiple choice, with
// other forms of the same family as distractors.
func (g *Generator) formationQuestions(in Input, rng *rand.Rand) []MCQQuestion {
	formation := g.WordFormation(in)
	items := formation.Items
	if len(items) > finalWordFormationCount {
		items = items[:finalWordFormationCount]
	}

	questions := make([]MCQQuestion, 0, len(items))
	for _, item := range items {
		options := []string{item.Answer}
		for _, family := range wordFamilies {
			if family.Base != item.BaseWord {
				continue
			}
			for _, form := range family.Forms {
				if len(options) >= 4 {
					break
				}
				if !strings.EqualFold(form, item.Answer) {
					options = append(options, form)
				}
			}
		}
		for _, suffix := range []string{"ness", "ly", "ment"} {
			if len(options) >= 4 {
				break
			}
			decoy := item.BaseWord + suffix
			if !containsString(options, decoy) {
				options = append(options, decoy)
			}
		}
		correct := rng.Intn(len(options))
		options[0], options[correct] = options[correct], options[0]
		questions = append(questions, MCQQuestion{
			Question:    item.Sentence,
			Options:     options,
			Correct:     correct,
			Explanation: fmt.Sprintf("Form of %q.", item.BaseWord),
		})
	}
	return questions
}

func sortedFunctionWords() []string {
	out := make([]string, 0, len(functionWords))
	for w := range functionWords {
		out = append(out, w)
	}
	// map order is random; sort for reproducible distractor pools
	sort.Strings(out)
	return out
}
