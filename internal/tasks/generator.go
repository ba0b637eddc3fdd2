package tasks

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/textutil"
)

const (
	// PassScore is the default passing percentage for graded tasks.
	PassScore = 70
	// passageWordBudget limits the reading passage excerpt.
	passageWordBudget = 750
)

// Input carries everything a generator needs for one block or slice. For
// standalone tasks built from a daily slice, BlockID is zero and Text holds
// the slice.
type Input struct {
	BlockID    uint
	GrammarKey string
	Text       string
	Vocab      []*model.BlockVocab // Word preloaded
}

// Generator synthesises task payloads. Stateless; randomness is seeded from
// the input so regeneration is reproducible.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Generate dispatches on task type and returns the typed payload.
func (g *Generator) Generate(taskType string, in Input) (interface{}, error) {
	switch taskType {
	case model.TaskVocabulary:
		return g.Vocabulary(in), nil
	case model.TaskReadingPassage:
		return g.ReadingPassage(in), nil
	case model.TaskReadingMCQ:
		return g.ReadingMCQ(in), nil
	case model.TaskMatchHeadings:
		return g.MatchHeadings(in), nil
	case model.TaskOpenCloze:
		return g.OpenCloze(in), nil
	case model.TaskWordFormation:
		return g.WordFormation(in), nil
	case model.TaskKeywordTransform:
		return g.KeywordTransform(in), nil
	case model.TaskGrammarSheet:
		return g.GrammarSheet(in), nil
	case model.TaskFinalTest:
		return g.FinalTest(in), nil
	default:
		return nil, fmt.Errorf("unknown task type %q: %w", taskType, model.ErrInvalidInput)
	}
}

func (g *Generator) rng(in Input) *rand.Rand {
	return rand.New(rand.NewSource(int64(in.BlockID)*31 + int64(len(in.Text))))
}

// Vocabulary builds flashcards from the block vocabulary, with the word's
// first occurrence in the text as the example sentence.
func (g *Generator) Vocabulary(in Input) VocabularyPayload {
	cards := make([]VocabCard, 0, len(in.Vocab))
	for _, entry := range in.Vocab {
		if entry.Word == nil {
			continue
		}
		var examples []string
		if s := textutil.FirstSentenceWith(in.Text, entry.Word.English); s != "" {
			examples = append(examples, s)
		}
		cards = append(cards, VocabCard{
			Front: entry.Word.English,
			Back: VocabBack{
				Translation: entry.Word.Russian,
				Examples:    examples,
				Level:       entry.Word.Level.String(),
			},
		})
	}
	return VocabularyPayload{Cards: cards}.Normalize()
}

// ReadingPassage cuts the first ~750 words at a sentence boundary and lists
// the vocabulary lemmas present for highlighting.
func (g *Generator) ReadingPassage(in Input) ReadingPassagePayload {
	text := textutil.TruncateAtSentence(in.Text, passageWordBudget)
	var highlighted []string
	for _, entry := range in.Vocab {
		if entry.Word != nil && textutil.ContainsWord(text, entry.Word.English) {
			highlighted = append(highlighted, entry.Word.English)
		}
	}
	wordCount := textutil.CountWords(text)
	return ReadingPassagePayload{
		Text:            text,
		WordCount:       wordCount,
		VocabularyWords: highlighted,
		EstimatedTime:   maxInt(5, wordCount/150),
	}
}

// ReadingMCQ builds 10 comprehension questions. Each takes a substantial
// sentence as the correct statement and mutates it into three distractors.
func (g *Generator) ReadingMCQ(in Input) ReadingMCQPayload {
	return g.readingMCQ(in, 10)
}

func (g *Generator) readingMCQ(in Input, count int) ReadingMCQPayload {
	rng := g.rng(in)
	sentences := substantialSentences(in.Text, 8)
	if len(sentences) == 0 {
		return ReadingMCQPayload{Questions: []MCQQuestion{}, PassScore: PassScore, EstimatedTime: 5}
	}
	picked := spreadPick(sentences, count)

	replacements := contentTokens(in.Text)
	questions := make([]MCQQuestion, 0, len(picked))
	for _, s := range picked {
		correct := clampWords(s, 14)
		options := []string{correct}
		for len(options) < 4 {
			d := mutateSentence(correct, replacements, rng)
			if !containsString(options, d) {
				options = append(options, d)
			} else {
				// token pool too small to keep mutating distinctly
				options = append(options, d+".")
			}
		}
		correctIdx := rng.Intn(4)
		options[0], options[correctIdx] = options[correctIdx], options[0]
		questions = append(questions, MCQQuestion{
			Question:    "According to the text, which statement is true?",
			Options:     options,
			Correct:     correctIdx,
			Explanation: "The text states: " + correct,
		})
	}

	return ReadingMCQPayload{
		Questions:      questions,
		TotalQuestions: len(questions),
		EstimatedTime:  maxInt(10, 2*len(questions)),
		PassScore:      PassScore,
	}
}

// MatchHeadings picks six substantial paragraphs, derives a heading from each
// and adds two distractor headings.
func (g *Generator) MatchHeadings(in Input) MatchHeadingsPayload {
	rng := g.rng(in)
	paragraphs := substantialParagraphs(in.Text, 40)
	picked := spreadPick(paragraphs, 6)

	payload := MatchHeadingsPayload{
		Instructions: "Match each heading to the paragraph it describes. Two headings are not needed.",
	}
	for i, p := range picked {
		id := i + 1
		payload.Paragraphs = append(payload.Paragraphs, HeadingParagraph{ID: id, Text: p})
		correctFor := id
		payload.Headings = append(payload.Headings, Heading{
			ID:         id,
			Text:       deriveHeading(p),
			CorrectFor: &correctFor,
		})
	}
	distractors := []string{"A change of plans", "An unexpected visitor"}
	for i, d := range distractors {
		payload.Headings = append(payload.Headings, Heading{ID: len(picked) + i + 1, Text: d})
	}
	rng.Shuffle(len(payload.Headings), func(i, j int) {
		payload.Headings[i], payload.Headings[j] = payload.Headings[j], payload.Headings[i]
	})
	return payload
}

// OpenCloze blanks eight function words at evenly distributed spots.
func (g *Generator) OpenCloze(in Input) OpenClozePayload {
	return g.openCloze(in, 8)
}

func (g *Generator) openCloze(in Input, gapCount int) OpenClozePayload {
	fields := strings.Fields(in.Text)
	if len(fields) > 250 {
		fields = fields[:250]
	}

	var candidates []int
	for i, f := range fields {
		if isFunctionWord(f) {
			candidates = append(candidates, i)
		}
	}
	chosen := spreadPickInts(candidates, gapCount)

	gaps := make([]ClozeGap, 0, len(chosen))
	for n, idx := range chosen {
		answer := strings.ToLower(strings.Trim(fields[idx], ".,!?;:\"'"))
		gaps = append(gaps, ClozeGap{ID: n + 1, Answer: answer, Hint: "function word"})
		fields[idx] = fmt.Sprintf("___(%d)", n+1)
	}

	return OpenClozePayload{
		Text:      strings.Join(fields, " "),
		Gaps:      gaps,
		TotalGaps: len(gaps),
		PassScore: PassScore,
	}
}

// WordFormation finds word-family members in the text and asks for the
// derived form from the stem. Fallback items fill up to eight.
func (g *Generator) WordFormation(in Input) WordFormationPayload {
	items := make([]WordFormationItem, 0, 8)
	seen := map[string]bool{}

	for _, family := range wordFamilies {
		if len(items) >= 8 {
			break
		}
		for _, form := range family.Forms {
			if seen[family.Base] || !textutil.ContainsWord(in.Text, form) {
				continue
			}
			sentence := textutil.FirstSentenceWith(in.Text, form)
			if sentence == "" {
				continue
			}
			blanked := blankWord(sentence, form, strings.ToUpper(family.Base))
			items = append(items, WordFormationItem{
				Sentence: blanked,
				BaseWord: family.Base,
				Answer:   strings.ToLower(form),
				Hint:     "form of " + family.Base,
			})
			seen[family.Base] = true
			break
		}
	}

	for _, fallback := range fallbackFormationItems {
		if len(items) >= 8 {
			break
		}
		if !seen[fallback.BaseWord] {
			items = append(items, fallback)
			seen[fallback.BaseWord] = true
		}
	}

	return WordFormationPayload{Items: items, TotalItems: len(items), PassScore: PassScore}
}

// KeywordTransform serves the fixed transformations of the block's grammar
// focus.
func (g *Generator) KeywordTransform(in Input) KeywordTransformPayload {
	sheet := lookupGrammarSheet(in.GrammarKey)
	items := append([]KeywordTransformItem(nil), sheet.Transforms...)

	// pad from neighbouring topics up to six
	for _, other := range orderedCatalogue() {
		if len(items) >= 6 {
			break
		}
		if other.Topic == sheet.Topic {
			continue
		}
		for _, t := range other.Transforms {
			if len(items) >= 6 {
				break
			}
			items = append(items, t)
		}
	}

	return KeywordTransformPayload{
		Sentences:      items,
		TotalSentences: len(items),
		Instructions:   "Complete the second sentence so that it means the same as the first, using the keyword.",
	}
}

// GrammarSheet serves the explanation, examples and MCQs of the block topic.
func (g *Generator) GrammarSheet(in Input) GrammarSheetPayload {
	sheet := lookupGrammarSheet(in.GrammarKey)
	return GrammarSheetPayload{
		Topic:       sheet.Topic,
		Explanation: sheet.Explanation,
		Examples:    sheet.Examples,
		Exercises:   sheet.Exercises,
		PassScore:   PassScore,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// --- text helpers ---

func substantialSentences(text string, minWords int) []string {
	var out []string
	for _, s := range textutil.SplitSentences(text) {
		if s.WordCount >= minWords {
			out = append(out, s.Text)
		}
	}
	return out
}

func substantialParagraphs(text string, minWords int) []string {
	var out []string
	for _, p := range textutil.SplitParagraphs(text) {
		if textutil.CountWords(p) >= minWords {
			out = append(out, p)
		}
	}
	if out == nil {
		out = textutil.SplitParagraphs(text)
	}
	return out
}

// spreadPick takes up to n items evenly distributed across the slice.
func spreadPick(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	out := make([]string, 0, n)
	step := float64(len(items)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, items[int(float64(i)*step)])
	}
	return out
}

func spreadPickInts(items []int, n int) []int {
	if len(items) <= n {
		return items
	}
	out := make([]int, 0, n)
	step := float64(len(items)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, items[int(float64(i)*step)])
	}
	return out
}

func clampWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return s
	}
	return strings.Join(fields[:n], " ") + "…"
}

func contentTokens(text string) []string {
	freq := textutil.CountFrequencies(text)
	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// mutateSentence swaps one longer word for a random content token, producing
// a plausible but wrong statement.
func mutateSentence(s string, replacements []string, rng *rand.Rand) string {
	if len(replacements) == 0 {
		return s + " instead"
	}
	fields := strings.Fields(s)
	var candidates []int
	for i, f := range fields {
		if len(f) >= 5 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return s + " instead"
	}
	idx := candidates[rng.Intn(len(candidates))]
	fields[idx] = replacements[rng.Intn(len(replacements))]
	return strings.Join(fields, " ")
}

func deriveHeading(paragraph string) string {
	freq := textutil.CountFrequencies(paragraph)
	best, bestCount := "", 0
	for tok, count := range freq {
		if count > bestCount || (count == bestCount && tok < best) {
			best, bestCount = tok, count
		}
	}
	if best == "" {
		return "An important moment"
	}
	return "About " + best
}

func blankWord(sentence, word, marker string) string {
	fields := strings.Fields(sentence)
	for i, f := range fields {
		if strings.EqualFold(strings.Trim(f, ".,!?;:\"'"), word) {
			fields[i] = "___ (" + marker + ")"
			break
		}
	}
	return strings.Join(fields, " ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var functionWords = map[string]bool{
	"of": true, "in": true, "at": true, "on": true, "to": true, "for": true,
	"with": true, "by": true, "from": true, "as": true, "than": true,
	"if": true, "but": true, "and": true, "or": true, "so": true,
	"because": true, "although": true, "however": true, "there": true,
	"been": true, "being": true, "which": true, "who": true, "that": true,
	"not": true, "no": true, "more": true, "most": true,
	"a": true, "an": true, "the": true,
}

func isFunctionWord(field string) bool {
	return functionWords[strings.ToLower(strings.Trim(field, ".,!?;:\"'"))]
}

// orderedCatalogue returns the grammar catalogue in stable key order so
// padding is deterministic.
func orderedCatalogue() []grammarSheet {
	keys := make([]string, 0, len(grammarCatalogue))
	for k := range grammarCatalogue {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]grammarSheet, 0, len(keys))
	for _, k := range keys {
		out = append(out, grammarCatalogue[k])
	}
	return out
}
