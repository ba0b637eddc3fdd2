package textutil

import "strings"

// ParagraphSeparator joins chapter texts and marks paragraph breaks when
// slicing module text.
const ParagraphSeparator = "\n\n"

// Sentence is one unit of the splitter. Position tracks the byte offset of
// the sentence start in the original text so slices can record positions.
type Sentence struct {
	Text         string
	Start        int
	End          int
	WordCount    int
	ParagraphEnd bool
}

// SplitSentences splits text on sentence-final punctuation (. ? !), keeping
// the punctuation with the sentence. Paragraph breaks are preserved as a flag
// on the preceding sentence.
func SplitSentences(text string) []Sentence {
	var sentences []Sentence
	start := -1

	flush := func(end int, paragraphEnd bool) {
		if start < 0 {
			return
		}
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			sentences = append(sentences, Sentence{
				Text:         trimmed,
				Start:        start,
				End:          end,
				WordCount:    CountWords(trimmed),
				ParagraphEnd: paragraphEnd,
			})
		}
		start = -1
	}

	i := 0
	for i < len(text) {
		c := text[i]
		if start < 0 && !isSpaceByte(c) {
			start = i
		}
		switch c {
		case '.', '?', '!':
			// swallow a run of closing punctuation (e.g. "?!", "...")
			j := i + 1
			for j < len(text) && (text[j] == '.' || text[j] == '?' || text[j] == '!' || text[j] == '"' || text[j] == '\'' || text[j] == ')') {
				j++
			}
			flush(j, followedByParagraphBreak(text, j))
			i = j
		case '\n':
			if i+1 < len(text) && text[i+1] == '\n' {
				// paragraph break ends an unpunctuated sentence too
				flush(i, true)
			}
			i++
		default:
			i++
		}
	}
	flush(len(text), false)
	return sentences
}

// FirstSentenceWith returns the first sentence of text containing word on a
// word boundary, or "" when none does.
func FirstSentenceWith(text, word string) string {
	for _, s := range SplitSentences(text) {
		if ContainsWord(s.Text, word) {
			return s.Text
		}
	}
	return ""
}

// SplitParagraphs returns the non-empty paragraphs of text.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, ParagraphSeparator) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TruncateAtSentence cuts text down to at most maxWords words, extending to
// the end of the sentence in progress so the cut never lands mid-sentence.
func TruncateAtSentence(text string, maxWords int) string {
	sentences := SplitSentences(text)
	var sb strings.Builder
	words := 0
	for _, s := range sentences {
		if words >= maxWords {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(s.Text)
		words += s.WordCount
	}
	return sb.String()
}

func followedByParagraphBreak(text string, pos int) bool {
	newlines := 0
	for pos < len(text) {
		c := text[pos]
		if c == '\n' {
			newlines++
			if newlines >= 2 {
				return true
			}
		} else if !isSpaceByte(c) {
			return false
		}
		pos++
	}
	return false
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
