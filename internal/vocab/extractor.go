// Package vocab selects block vocabulary from chapter text: tokenised
// frequencies intersected with the global word catalogue, ranked by CEFR
// distance to the target level.
package vocab

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/textutil"

	"gorm.io/gorm"
)

// DefaultMaxWords caps the vocabulary entries per block.
const DefaultMaxWords = 20

type Extractor struct {
	db        *gorm.DB
	blockRepo repository.BlockRepository
	wordRepo  repository.WordRepository
	maxWords  int
}

func NewExtractor(db *gorm.DB, blockRepo repository.BlockRepository, wordRepo repository.WordRepository) *Extractor {
	return &Extractor{
		db:        db,
		blockRepo: blockRepo,
		wordRepo:  wordRepo,
		maxWords:  DefaultMaxWords,
	}
}

type candidate struct {
	word          *model.Word
	frequency     int
	levelDistance int
}

// ExtractForBook runs extraction across all blocks of a book. A failing block
// is logged and skipped; the build carries on with the rest.
func (e *Extractor) ExtractForBook(ctx context.Context, bookID uint, target model.Level) error {
	logger := slog.Default().With("book_id", bookID, "level", target.String())

	blocks, err := e.blockRepo.FindByBook(ctx, e.db, bookID)
	if err != nil {
		return err
	}

	// Cross-block uniqueness: a word selected for an earlier block is off the
	// table for later blocks of the same book.
	selected := make(map[uint]bool)

	for _, block := range blocks {
		entries, err := e.extractForBlock(ctx, block, target, selected)
		if err != nil {
			logger.Warn("vocabulary extraction failed for block, skipping",
				"block_num", block.BlockNum, "error", err)
			continue
		}
		err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return e.blockRepo.ReplaceVocab(ctx, tx, block.BlockID, entries)
		})
		if err != nil {
			logger.Warn("vocabulary write failed for block, skipping",
				"block_num", block.BlockNum, "error", err)
			continue
		}
		for _, entry := range entries {
			selected[entry.WordID] = true
		}
	}
	return nil
}

func (e *Extractor) extractForBlock(ctx context.Context, block *model.Block, target model.Level, selected map[uint]bool) ([]*model.BlockVocab, error) {
	chapters, err := e.blockRepo.FindChapters(ctx, e.db, block.BlockID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, ch := range chapters {
		sb.WriteString(ch.TextRaw)
		sb.WriteString(textutil.ParagraphSeparator)
	}
	freq := textutil.CountFrequencies(sb.String())
	if len(freq) == 0 {
		return nil, nil
	}

	lemmas := make([]string, 0, len(freq))
	for lemma := range freq {
		lemmas = append(lemmas, lemma)
	}
	words, err := e.wordRepo.FindByLemmas(ctx, e.db, lemmas)
	if err != nil {
		return nil, err
	}

	candidates := rankCandidates(words, freq, target, selected)
	if len(candidates) > e.maxWords {
		candidates = candidates[:e.maxWords]
	}

	entries := make([]*model.BlockVocab, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, &model.BlockVocab{
			BlockID:   block.BlockID,
			WordID:    c.word.WordID,
			Frequency: c.frequency,
		})
	}
	return entries, nil
}

// rankCandidates filters out words above the target level and words already
// taken by earlier blocks, then orders by (level distance asc, frequency desc).
func rankCandidates(words []*model.Word, freq map[string]int, target model.Level, selected map[uint]bool) []candidate {
	candidates := make([]candidate, 0, len(words))
	for _, w := range words {
		if w.Level.Above(target) {
			continue
		}
		if selected[w.WordID] {
			continue
		}
		candidates = append(candidates, candidate{
			word:          w,
			frequency:     freq[strings.ToLower(w.English)],
			levelDistance: w.Level.Distance(target),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].levelDistance != candidates[j].levelDistance {
			return candidates[i].levelDistance < candidates[j].levelDistance
		}
		return candidates[i].frequency > candidates[j].frequency
	})
	return candidates
}
