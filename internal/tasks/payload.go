// Package tasks synthesises the exercise payloads stored on Task rows. All
// generators are deterministic: the same block text and vocabulary always
// produce the same payload. Payloads are typed here and serialised to a JSON
// envelope only at the storage boundary.
package tasks

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// VocabBack is the reverse side of a flashcard.
type VocabBack struct {
	Translation string   `json:"translation"`
	Examples    []string `json:"examples"`
	Level       string   `json:"level,omitempty"`
}

type VocabCard struct {
	Front string    `json:"front"`
	Back  VocabBack `json:"back"`
}

type VocabularyPayload struct {
	Cards         []VocabCard `json:"cards"`
	TotalCards    int         `json:"total_cards"`
	EstimatedTime int         `json:"estimated_time"`
}

// Normalize makes the payload canonical: trimmed fronts, non-nil example
// lists, total matching the card count. Idempotent.
func (p VocabularyPayload) Normalize() VocabularyPayload {
	cards := make([]VocabCard, 0, len(p.Cards))
	for _, c := range p.Cards {
		c.Front = strings.TrimSpace(c.Front)
		if c.Front == "" {
			continue
		}
		if c.Back.Examples == nil {
			c.Back.Examples = []string{}
		}
		cards = append(cards, c)
	}
	p.Cards = cards
	p.TotalCards = len(cards)
	if p.EstimatedTime <= 0 {
		p.EstimatedTime = estimatedVocabMinutes(len(cards))
	}
	return p
}

type ReadingPassagePayload struct {
	Text            string   `json:"text"`
	WordCount       int      `json:"word_count"`
	VocabularyWords []string `json:"vocabulary_words"`
	EstimatedTime   int      `json:"estimated_time"`
}

type MCQQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

type ReadingMCQPayload struct {
	Questions      []MCQQuestion `json:"questions"`
	TotalQuestions int           `json:"total_questions"`
	EstimatedTime  int           `json:"estimated_time"`
	PassScore      int           `json:"pass_score"`
}

type HeadingParagraph struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type Heading struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	CorrectFor *int   `json:"correct_for,omitempty"`
}

type MatchHeadingsPayload struct {
	Paragraphs   []HeadingParagraph `json:"paragraphs"`
	Headings     []Heading          `json:"headings"`
	Instructions string             `json:"instructions"`
}

type ClozeGap struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
	Hint   string `json:"hint,omitempty"`
}

type OpenClozePayload struct {
	Text      string     `json:"text"`
	Gaps      []ClozeGap `json:"gaps"`
	TotalGaps int        `json:"total_gaps"`
	PassScore int        `json:"pass_score"`
}

type WordFormationItem struct {
	Sentence string `json:"sentence"`
	BaseWord string `json:"base_word"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint,omitempty"`
}

type WordFormationPayload struct {
	Items      []WordFormationItem `json:"items"`
	TotalItems int                 `json:"total_items"`
	PassScore  int                 `json:"pass_score"`
}

type KeywordTransformItem struct {
	Original string `json:"original"`
	Keyword  string `json:"keyword"`
	Target   string `json:"target"`
	Answer   string `json:"answer"`
}

type KeywordTransformPayload struct {
	Sentences      []KeywordTransformItem `json:"sentences"`
	TotalSentences int                    `json:"total_sentences"`
	Instructions   string                 `json:"instructions"`
}

type GrammarSheetPayload struct {
	Topic       string        `json:"topic"`
	Explanation string        `json:"explanation"`
	Examples    []string      `json:"examples"`
	Exercises   []MCQQuestion `json:"exercises"`
	PassScore   int           `json:"pass_score"`
}

type FinalTestSection struct {
	Name      string        `json:"name"`
	Questions []MCQQuestion `json:"questions"`
}

type FinalTestPayload struct {
	Sections       []FinalTestSection `json:"sections"`
	TotalQuestions int                `json:"total_questions"`
	PassScore      int                `json:"pass_score"`
	EstimatedTime  int                `json:"estimated_time"`
	Instructions   string             `json:"instructions"`
}

// Marshal converts a typed payload to the JSON storage envelope.
func Marshal(payload interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Unmarshal decodes a storage envelope into a typed payload.
func Unmarshal(raw datatypes.JSON, dst interface{}) error {
	return json.Unmarshal(raw, dst)
}

func estimatedVocabMinutes(cards int) int {
	minutes := cards / 2
	if minutes < 5 {
		minutes = 5
	}
	return minutes
}
