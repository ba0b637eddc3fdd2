package tasks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleText() string {
	paragraphs := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"The old fisherman walked slowly along the harbour wall at dawn on day %d. "+
				"He had received a strange letter from the captain of a whaling ship. "+
				"The village children followed him because they wanted to hear another story. "+
				"Nobody in the village believed that the lighthouse keeper had really disappeared. "+
				"A cold wind from the sea carried the smell of salt and burning wood.", i+1))
	}
	return strings.Join(paragraphs, "\n\n")
}

func sampleVocab() []*model.BlockVocab {
	words := []struct {
		en, ru string
	}{
		{"harbour", "гавань"}, {"captain", "капитан"}, {"lighthouse", "маяк"},
		{"village", "деревня"}, {"letter", "письмо"}, {"fisherman", "рыбак"},
	}
	out := make([]*model.BlockVocab, 0, len(words))
	for i, w := range words {
		out = append(out, &model.BlockVocab{
			BlockID:   1,
			WordID:    uint(i + 1),
			Frequency: 10 - i,
			Word:      &model.Word{WordID: uint(i + 1), English: w.en, Russian: w.ru, Level: model.LevelB1},
		})
	}
	return out
}

func sampleInput() Input {
	return Input{BlockID: 7, GrammarKey: "present_perfect", Text: sampleText(), Vocab: sampleVocab()}
}

func TestGenerate_AllBlockTaskTypes(t *testing.T) {
	g := NewGenerator()
	for _, taskType := range model.BlockTaskTypes {
		payload, err := g.Generate(taskType, sampleInput())
		require.NoError(t, err, taskType)
		raw, err := Marshal(payload)
		require.NoError(t, err, taskType)
		assert.NotEmpty(t, raw, taskType)
	}
}

func TestGenerate_UnknownType(t *testing.T) {
	_, err := NewGenerator().Generate("karaoke", sampleInput())
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator()
	for _, taskType := range []string{model.TaskReadingMCQ, model.TaskOpenCloze, model.TaskFinalTest} {
		first, err := g.Generate(taskType, sampleInput())
		require.NoError(t, err)
		second, err := g.Generate(taskType, sampleInput())
		require.NoError(t, err)

		rawFirst, err := Marshal(first)
		require.NoError(t, err)
		rawSecond, err := Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(rawFirst), string(rawSecond), taskType)
	}
}

func TestVocabulary_CardsCarryExamples(t *testing.T) {
	payload := NewGenerator().Vocabulary(sampleInput())

	require.Len(t, payload.Cards, 6)
	assert.Equal(t, 6, payload.TotalCards)
	for _, card := range payload.Cards {
		assert.NotEmpty(t, card.Front)
		assert.NotEmpty(t, card.Back.Translation)
		require.NotNil(t, card.Back.Examples)
	}
	// every sample word occurs in the text, so each card has a sentence
	assert.NotEmpty(t, payload.Cards[0].Back.Examples)
}

func TestVocabularyNormalize_Idempotent(t *testing.T) {
	payload := VocabularyPayload{Cards: []VocabCard{
		{Front: "  harbour  ", Back: VocabBack{Translation: "гавань"}},
		{Front: "", Back: VocabBack{Translation: "dropped"}},
	}}

	once := payload.Normalize()
	twice := once.Normalize()

	assert.Equal(t, once, twice)
	require.Len(t, once.Cards, 1)
	assert.Equal(t, "harbour", once.Cards[0].Front)
	assert.NotNil(t, once.Cards[0].Back.Examples)
}

func TestReadingPassage_CutAtSentenceBoundary(t *testing.T) {
	payload := NewGenerator().ReadingPassage(sampleInput())

	assert.LessOrEqual(t, payload.WordCount, 750)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(payload.Text), "."),
		"passage must end on a sentence boundary")
	assert.Contains(t, payload.VocabularyWords, "harbour")
	assert.GreaterOrEqual(t, payload.EstimatedTime, 5)
}

func TestReadingMCQ_Shape(t *testing.T) {
	payload := NewGenerator().ReadingMCQ(sampleInput())

	require.Len(t, payload.Questions, 10)
	assert.Equal(t, 10, payload.TotalQuestions)
	assert.Equal(t, PassScore, payload.PassScore)
	for _, q := range payload.Questions {
		require.Len(t, q.Options, 4)
		require.GreaterOrEqual(t, q.Correct, 0)
		require.Less(t, q.Correct, 4)
		// distractors differ from the correct statement
		for i, opt := range q.Options {
			if i != q.Correct {
				assert.NotEqual(t, q.Options[q.Correct], opt)
			}
		}
	}
}

func TestMatchHeadings_SixParagraphsTwoDistractors(t *testing.T) {
	payload := NewGenerator().MatchHeadings(sampleInput())

	require.Len(t, payload.Paragraphs, 6)
	require.Len(t, payload.Headings, 8)

	var withTarget, without int
	for _, h := range payload.Headings {
		if h.CorrectFor != nil {
			withTarget++
		} else {
			without++
		}
	}
	assert.Equal(t, 6, withTarget)
	assert.Equal(t, 2, without)
}

func TestOpenCloze_EightGapsMatchingBlanks(t *testing.T) {
	payload := NewGenerator().OpenCloze(sampleInput())

	require.Len(t, payload.Gaps, 8)
	assert.Equal(t, 8, payload.TotalGaps)
	for _, gap := range payload.Gaps {
		assert.Contains(t, payload.Text, fmt.Sprintf("___(%d)", gap.ID))
		assert.True(t, isFunctionWord(gap.Answer), "gap answer %q must be a function word", gap.Answer)
	}
}

func TestWordFormation_FallbackFillsToEight(t *testing.T) {
	// text with no word-family matches forces the fallback pool
	payload := NewGenerator().WordFormation(Input{BlockID: 3, Text: "Short plain text."})

	require.Len(t, payload.Items, 8)
	for _, item := range payload.Items {
		assert.Contains(t, item.Sentence, "___")
		assert.NotEmpty(t, item.Answer)
	}
}

func TestWordFormation_PrefersTextMatches(t *testing.T) {
	text := "Her unexpected kindness was wonderful for the whole unhappy village that day."
	payload := NewGenerator().WordFormation(Input{BlockID: 3, Text: text})

	bases := make(map[string]bool)
	for _, item := range payload.Items {
		bases[item.BaseWord] = true
	}
	assert.True(t, bases["expect"], "derived form found in text must produce an item")
	assert.True(t, bases["happy"])
}

func TestKeywordTransform_PaddedToSix(t *testing.T) {
	payload := NewGenerator().KeywordTransform(sampleInput())

	require.Len(t, payload.Sentences, 6)
	assert.Equal(t, 6, payload.TotalSentences)
	// the block's own topic comes first
	assert.Equal(t, "FOR", payload.Sentences[0].Keyword)
}

func TestGrammarSheet_UnknownKeyFallsBack(t *testing.T) {
	g := NewGenerator()

	known := g.GrammarSheet(Input{GrammarKey: "passive_voice"})
	assert.Equal(t, "Passive Voice", known.Topic)

	unknown := g.GrammarSheet(Input{GrammarKey: "subjunctive_xxl"})
	assert.Equal(t, "Past Simple", unknown.Topic)
	assert.Equal(t, PassScore, unknown.PassScore)
}

func TestFinalTest_SectionsAndTotals(t *testing.T) {
	payload := NewGenerator().FinalTest(sampleInput())

	names := make([]string, 0, len(payload.Sections))
	counted := 0
	for _, s := range payload.Sections {
		names = append(names, s.Name)
		counted += len(s.Questions)
		for _, q := range s.Questions {
			require.GreaterOrEqual(t, q.Correct, 0)
			require.Less(t, q.Correct, len(q.Options))
		}
	}

	assert.Equal(t, []string{"vocabulary", "reading", "grammar", "completion", "word_formation"}, names)
	assert.Equal(t, counted, payload.TotalQuestions)
	assert.Equal(t, PassScore, payload.PassScore)
	assert.GreaterOrEqual(t, payload.EstimatedTime, 45)
	assert.GreaterOrEqual(t, payload.TotalQuestions, 30)
}

func TestCalculateQuizScore(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		total     int
		timeSpent int
		want      QuizScore
	}{
		{"empty attempt", 0, 0, 0, QuizScore{}},
		{"zero correct", 0, 10, 60, QuizScore{}},
		{"failing", 5, 10, 600, QuizScore{Score: 5, Percentage: 50, XPAwarded: 50}},
		{"passing slow", 8, 10, 600, QuizScore{Score: 8, Percentage: 80, XPAwarded: 100, Passed: true}},
		{"passing fast", 8, 10, 120, QuizScore{Score: 8, Percentage: 80, XPAwarded: 110, Passed: true}},
		{"overflow clamps", 12, 10, 600, QuizScore{Score: 10, Percentage: 100, XPAwarded: 120, Passed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateQuizScore(tt.correct, tt.total, tt.timeSpent))
		})
	}
}
