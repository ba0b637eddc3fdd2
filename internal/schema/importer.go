// Package schema imports and exports the chapter grouping of a book. A schema
// file lists blocks, each naming the chapter numbers it covers plus an
// optional grammar and vocabulary focus.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// BlockSpec describes one block of the schema file. Block is the declared
// block number; when omitted the block takes its position in the list.
type BlockSpec struct {
	Block      *int   `yaml:"block,omitempty" json:"block,omitempty"`
	Chapters   []int  `yaml:"chapters" json:"chapters"`
	GrammarKey string `yaml:"grammar_key,omitempty" json:"grammar_key,omitempty"`
	FocusVocab string `yaml:"focus_vocab,omitempty" json:"focus_vocab,omitempty"`
}

// Schema is the full grouping of a book's chapters into blocks.
type Schema struct {
	Blocks []BlockSpec `yaml:"blocks" json:"blocks"`
}

// Number resolves the declared block number, falling back to the position of
// the entry in the list.
func (b BlockSpec) Number(index int) int {
	if b.Block != nil {
		return *b.Block
	}
	return index + 1
}

// defaultChaptersPerBlock drives the auto schema when no file is provided.
const defaultChaptersPerBlock = 2

// defaultGrammarRotation assigns a focus to auto-generated blocks in turn.
var defaultGrammarRotation = []string{
	"past_simple",
	"present_perfect",
	"conditionals",
	"passive_voice",
	"reported_speech",
}

type Importer struct {
	db        *gorm.DB
	bookRepo  repository.BookRepository
	blockRepo repository.BlockRepository
	logger    *slog.Logger
}

func NewImporter(db *gorm.DB, bookRepo repository.BookRepository, blockRepo repository.BlockRepository, logger *slog.Logger) *Importer {
	return &Importer{db: db, bookRepo: bookRepo, blockRepo: blockRepo, logger: logger}
}

// Parse decodes a schema document: the canonical top-level list of blocks,
// or a {blocks: [...]} mapping. YAML is a superset of JSON, so both file
// flavours go through the same decoder.
func Parse(data []byte) (*Schema, error) {
	var blocks []BlockSpec
	if err := yaml.Unmarshal(data, &blocks); err == nil {
		return &Schema{Blocks: blocks}, nil
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w: %w", model.ErrInvalidInput, err)
	}
	return &s, nil
}

// DefaultSchema groups chapters pairwise with a rotating grammar focus. The
// last block absorbs a trailing odd chapter.
func DefaultSchema(chapterCount int) *Schema {
	s := &Schema{}
	for start := 1; start <= chapterCount; start += defaultChaptersPerBlock {
		end := start + defaultChaptersPerBlock - 1
		if end > chapterCount {
			end = chapterCount
		}
		chapters := make([]int, 0, end-start+1)
		for c := start; c <= end; c++ {
			chapters = append(chapters, c)
		}
		s.Blocks = append(s.Blocks, BlockSpec{
			Chapters:   chapters,
			GrammarKey: defaultGrammarRotation[len(s.Blocks)%len(defaultGrammarRotation)],
		})
	}
	return s
}

// Validate checks the schema against the book before anything is written.
// Chapter numbers must be positive, unique across the schema and present in
// the book.
func (im *Importer) Validate(ctx context.Context, bookID uint, s *Schema) error {
	if s == nil || len(s.Blocks) == 0 {
		return fmt.Errorf("schema has no blocks: %w", model.ErrInvalidInput)
	}

	chapters, err := im.bookRepo.FindChapters(ctx, im.db, bookID)
	if err != nil {
		return err
	}
	known := make(map[int]bool, len(chapters))
	for _, ch := range chapters {
		known[ch.ChapNum] = true
	}

	seen := make(map[int]int)
	seenBlocks := make(map[int]int)
	for i, block := range s.Blocks {
		blockNum := block.Number(i)
		if blockNum <= 0 {
			return fmt.Errorf("block %d: block number %d must be positive: %w", i+1, blockNum, model.ErrInvalidInput)
		}
		if prev, dup := seenBlocks[blockNum]; dup {
			return fmt.Errorf("block number %d declared by entries %d and %d: %w", blockNum, prev, i+1, model.ErrInvalidInput)
		}
		seenBlocks[blockNum] = i + 1
		if len(block.Chapters) == 0 {
			return fmt.Errorf("block %d lists no chapters: %w", i+1, model.ErrInvalidInput)
		}
		for _, num := range block.Chapters {
			if num <= 0 {
				return fmt.Errorf("block %d: chapter number %d must be positive: %w", i+1, num, model.ErrInvalidInput)
			}
			if !known[num] {
				return fmt.Errorf("block %d: chapter %d does not exist in the book: %w", i+1, num, model.ErrInvalidInput)
			}
			if prev, dup := seen[num]; dup {
				return fmt.Errorf("chapter %d appears in both block %d and block %d: %w", num, prev, i+1, model.ErrInvalidInput)
			}
			seen[num] = i + 1
		}
	}
	return nil
}

// Import validates and then replaces the book's blocks in one transaction.
// Block-anchored tasks of the old blocks are removed with them; a failed
// import leaves the previous schema untouched.
func (im *Importer) Import(ctx context.Context, bookID uint, s *Schema) error {
	if err := im.Validate(ctx, bookID, s); err != nil {
		return err
	}

	chapters, err := im.bookRepo.FindChapters(ctx, im.db, bookID)
	if err != nil {
		return err
	}
	chapterIDByNum := make(map[int]uint, len(chapters))
	for _, ch := range chapters {
		chapterIDByNum[ch.ChapNum] = ch.ChapterID
	}

	err = im.db.Transaction(func(tx *gorm.DB) error {
		oldBlockIDs := tx.WithContext(ctx).Model(&model.Block{}).Select("block_id").Where("book_id = ?", bookID)
		if err := tx.WithContext(ctx).Where("block_id IN (?)", oldBlockIDs).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := im.blockRepo.DeleteByBook(ctx, tx, bookID); err != nil {
			return err
		}

		for i, spec := range s.Blocks {
			block := &model.Block{
				BookID:     bookID,
				BlockNum:   spec.Number(i),
				GrammarKey: spec.GrammarKey,
				FocusVocab: spec.FocusVocab,
			}
			if err := im.blockRepo.Create(ctx, tx, block); err != nil {
				return err
			}
			nums := append([]int(nil), spec.Chapters...)
			sort.Ints(nums)
			ids := make([]uint, 0, len(nums))
			for _, num := range nums {
				ids = append(ids, chapterIDByNum[num])
			}
			if err := im.blockRepo.LinkChapters(ctx, tx, block.BlockID, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import schema for book %d: %w", bookID, err)
	}

	im.logger.InfoContext(ctx, "block schema imported",
		slog.Uint64("book_id", uint64(bookID)),
		slog.Int("blocks", len(s.Blocks)),
	)
	return nil
}

// EnsureBlocks imports the default schema when the book has none yet.
func (im *Importer) EnsureBlocks(ctx context.Context, bookID uint) error {
	linked, err := im.blockRepo.HasChapterLinks(ctx, im.db, bookID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}
	chapters, err := im.bookRepo.FindChapters(ctx, im.db, bookID)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return fmt.Errorf("book %d has no chapters: %w", bookID, model.ErrInvalidInput)
	}
	return im.Import(ctx, bookID, DefaultSchema(len(chapters)))
}

// Export reconstructs the schema document from the stored blocks.
func (im *Importer) Export(ctx context.Context, bookID uint) (*Schema, error) {
	blocks, err := im.blockRepo.FindByBook(ctx, im.db, bookID)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, model.ErrNotFound
	}

	s := &Schema{Blocks: make([]BlockSpec, 0, len(blocks))}
	for _, block := range blocks {
		chapters, err := im.blockRepo.FindChapters(ctx, im.db, block.BlockID)
		if err != nil {
			return nil, err
		}
		nums := make([]int, 0, len(chapters))
		for _, ch := range chapters {
			nums = append(nums, ch.ChapNum)
		}
		num := block.BlockNum
		s.Blocks = append(s.Blocks, BlockSpec{
			Block:      &num,
			Chapters:   nums,
			GrammarKey: block.GrammarKey,
			FocusVocab: block.FocusVocab,
		})
	}
	return s, nil
}

// Marshal renders a schema as YAML for the export endpoint, in the canonical
// top-level list form.
func Marshal(s *Schema) ([]byte, error) {
	return yaml.Marshal(s.Blocks)
}
