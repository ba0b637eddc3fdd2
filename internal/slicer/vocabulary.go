package slicer

import (
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/textutil"
)

const (
	// sliceVocabMin triggers the book-wide top-up.
	sliceVocabMin = 10
	// sliceVocabMax caps a lesson's vocabulary list.
	sliceVocabMax = 20
)

// extractSliceVocabulary picks the lesson's words: block vocabulary found in
// the slice first, topped up from the book-wide pool when fewer than ten
// match. Every entry appears verbatim in the slice text.
func extractSliceVocabulary(sliceText string, blockVocab, bookVocab []*model.BlockVocab) []*model.SliceVocabulary {
	freq := textutil.CountFrequencies(sliceText)

	entries := make([]*model.SliceVocabulary, 0, sliceVocabMax)
	taken := make(map[uint]bool)

	appendMatches := func(pool []*model.BlockVocab, limit int) {
		for _, candidate := range pool {
			if len(entries) >= limit {
				return
			}
			word := candidate.Word
			if word == nil || taken[candidate.WordID] {
				continue
			}
			if !textutil.ContainsWord(sliceText, word.English) {
				continue
			}
			count := freq[word.English]
			if count == 0 {
				count = 1
			}
			entries = append(entries, &model.SliceVocabulary{
				WordID:          candidate.WordID,
				Frequency:       count,
				ContextSentence: textutil.FirstSentenceWith(sliceText, word.English),
			})
			taken[candidate.WordID] = true
		}
	}

	appendMatches(blockVocab, sliceVocabMax)
	if len(entries) < sliceVocabMin {
		// the top-up fills only to the minimum, block matches keep priority
		appendMatches(bookVocab, sliceVocabMin)
	}
	return entries
}
