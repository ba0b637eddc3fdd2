// Package coursegen orchestrates the course build pipeline: block schema,
// vocabulary extraction, task generation, module aggregation and daily
// slicing. Preparation stages tolerate partial failure; the course write
// itself is one transaction.
package coursegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/schema"
	"github.com/nekto007/language-learning-tool/internal/slicer"
	"github.com/nekto007/language-learning-tool/internal/tasks"
	"github.com/nekto007/language-learning-tool/internal/vocab"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// module count bounds for block aggregation
	maxModules = 10

	// wordsPerDay converts book size into estimated course duration.
	wordsPerDay      = 800
	minDurationWeeks = 4

	// focusCap bounds the merged focus lists stored per module.
	focusCap = 5
)

type Generator struct {
	db         *gorm.DB
	bookRepo   repository.BookRepository
	blockRepo  repository.BlockRepository
	courseRepo repository.CourseRepository
	importer   *schema.Importer
	extractor  *vocab.Extractor
	taskSvc    *tasks.Service
	slicer     *slicer.Slicer
	logger     *slog.Logger
}

func NewGenerator(
	db *gorm.DB,
	bookRepo repository.BookRepository,
	blockRepo repository.BlockRepository,
	courseRepo repository.CourseRepository,
	importer *schema.Importer,
	extractor *vocab.Extractor,
	taskSvc *tasks.Service,
	sl *slicer.Slicer,
	logger *slog.Logger,
) *Generator {
	return &Generator{
		db:         db,
		bookRepo:   bookRepo,
		blockRepo:  blockRepo,
		courseRepo: courseRepo,
		importer:   importer,
		extractor:  extractor,
		taskSvc:    taskSvc,
		slicer:     sl,
		logger:     logger,
	}
}

// BuildOptions tune one course build.
type BuildOptions struct {
	// Schema overrides the stored or default block layout.
	Schema *schema.Schema
	// Level overrides the book's level for pacing.
	Level *model.Level
}

// moduleFocus is the merged focus metadata stored on each module row.
type moduleFocus struct {
	GrammarFocus    []string `json:"grammar_focus,omitempty"`
	VocabularyFocus []string `json:"vocabulary_focus,omitempty"`
}

// Build compiles a book into a course. One course per book: a second build
// fails fast with a conflict.
func (g *Generator) Build(ctx context.Context, bookID uint, opts BuildOptions) (*model.BookCourse, error) {
	book, err := g.bookRepo.FindByID(ctx, g.db, bookID)
	if err != nil {
		return nil, fmt.Errorf("load book %d: %w", bookID, err)
	}
	if _, err := g.courseRepo.FindByBook(ctx, g.db, bookID); err == nil {
		return nil, fmt.Errorf("book %d already has a course: %w", bookID, model.ErrConflict)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	level := book.Level
	if opts.Level != nil && opts.Level.Valid() {
		level = *opts.Level
	}
	if !level.Valid() {
		level = model.DefaultLevel
	}

	if err := g.prepareBlocks(ctx, bookID, opts.Schema); err != nil {
		return nil, err
	}

	// preparation stages are tolerant: a block without vocabulary or tasks
	// degrades its lessons, it does not sink the build
	if err := g.extractor.ExtractForBook(ctx, bookID, level); err != nil {
		g.logger.WarnContext(ctx, "vocabulary extraction incomplete",
			slog.Uint64("book_id", uint64(bookID)), slog.Any("error", err))
	}
	if err := g.taskSvc.GenerateForBook(ctx, bookID); err != nil {
		g.logger.WarnContext(ctx, "task generation incomplete",
			slog.Uint64("book_id", uint64(bookID)), slog.Any("error", err))
	}

	blocks, err := g.blockRepo.FindByBook(ctx, g.db, bookID)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("book %d has no blocks to build from: %w", bookID, model.ErrInvalidInput)
	}

	totalWords := g.totalWords(ctx, book)
	course := &model.BookCourse{
		BookID:        bookID,
		Title:         book.Title,
		Description:   courseDescription(book),
		Level:         level,
		IsActive:      true,
		DurationWeeks: durationWeeks(totalWords),
	}

	err = g.db.Transaction(func(tx *gorm.DB) error {
		if err := g.courseRepo.Create(ctx, tx, course); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("book %d already has a course: %w", bookID, model.ErrConflict)
			}
			return err
		}

		groups := distribute(blocks, moduleCount(len(blocks)))
		for i, group := range groups {
			module, err := g.createModule(ctx, tx, course, i+1, group)
			if err != nil {
				return err
			}
			if _, err := g.slicer.GenerateForModule(ctx, tx, module); err != nil {
				return err
			}
		}

		course.TotalModules = len(groups)
		return g.courseRepo.Update(ctx, tx, course)
	})
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "course built",
		slog.Uint64("book_id", uint64(bookID)),
		slog.Uint64("course_id", uint64(course.CourseID)),
		slog.Int("modules", course.TotalModules),
		slog.String("level", level.String()),
	)
	return course, nil
}

// prepareBlocks reuses a valid stored schema, rebuilds a broken one and falls
// back to the pairwise default.
func (g *Generator) prepareBlocks(ctx context.Context, bookID uint, override *schema.Schema) error {
	if override != nil {
		return g.importer.Import(ctx, bookID, override)
	}

	blocks, err := g.blockRepo.FindByBook(ctx, g.db, bookID)
	if err != nil {
		return err
	}
	if len(blocks) > 0 {
		linked, err := g.blockRepo.HasChapterLinks(ctx, g.db, bookID)
		if err != nil {
			return err
		}
		if linked {
			return nil
		}
		// blocks without chapter links are build debris; rebuild from scratch
		if err := g.db.Transaction(func(tx *gorm.DB) error {
			return g.blockRepo.DeleteByBook(ctx, tx, bookID)
		}); err != nil {
			return err
		}
	}
	return g.importer.EnsureBlocks(ctx, bookID)
}

// moduleCount clamps the block count into the module range.
func moduleCount(blocks int) int {
	if blocks > maxModules {
		return maxModules
	}
	return blocks
}

// distribute splits blocks into count groups by rounding, keeping order.
func distribute(blocks []*model.Block, count int) [][]*model.Block {
	groups := make([][]*model.Block, 0, count)
	n := len(blocks)
	for i := 0; i < count; i++ {
		start := i * n / count
		end := (i + 1) * n / count
		if start < end {
			groups = append(groups, blocks[start:end])
		}
	}
	return groups
}

func (g *Generator) createModule(ctx context.Context, tx *gorm.DB, course *model.BookCourse, number int, group []*model.Block) (*model.BookCourseModule, error) {
	primary := group[0]

	title, err := g.moduleTitle(ctx, tx, number, group)
	if err != nil {
		return nil, err
	}
	focusRaw, err := json.Marshal(mergeFocus(group))
	if err != nil {
		return nil, err
	}

	module := &model.BookCourseModule{
		CourseID:       course.CourseID,
		OrderIndex:     number,
		ModuleNumber:   number,
		PrimaryBlockID: &primary.BlockID,
		Title:          title,
		LessonsData:    datatypes.JSON(focusRaw),
		Course:         course,
		PrimaryBlock:   primary,
	}
	if err := g.courseRepo.CreateModule(ctx, tx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// moduleTitle names the module after the chapter range its blocks cover.
func (g *Generator) moduleTitle(ctx context.Context, db *gorm.DB, number int, group []*model.Block) (string, error) {
	first, last := 0, 0
	for _, block := range group {
		chapters, err := g.blockRepo.FindChapters(ctx, db, block.BlockID)
		if err != nil {
			return "", err
		}
		for _, ch := range chapters {
			if first == 0 || ch.ChapNum < first {
				first = ch.ChapNum
			}
			if ch.ChapNum > last {
				last = ch.ChapNum
			}
		}
	}
	switch {
	case first == 0:
		return fmt.Sprintf("Module %d", number), nil
	case first == last:
		return fmt.Sprintf("Module %d: Chapter %d", number, first), nil
	default:
		return fmt.Sprintf("Module %d: Chapters %d-%d", number, first, last), nil
	}
}

// mergeFocus unions the group's grammar and vocabulary focus, deduplicated
// and capped.
func mergeFocus(group []*model.Block) moduleFocus {
	var focus moduleFocus
	seenGrammar := map[string]bool{}
	seenVocab := map[string]bool{}
	for _, block := range group {
		if block.GrammarKey != "" && !seenGrammar[block.GrammarKey] && len(focus.GrammarFocus) < focusCap {
			focus.GrammarFocus = append(focus.GrammarFocus, block.GrammarKey)
			seenGrammar[block.GrammarKey] = true
		}
		if block.FocusVocab != "" && !seenVocab[block.FocusVocab] && len(focus.VocabularyFocus) < focusCap {
			focus.VocabularyFocus = append(focus.VocabularyFocus, block.FocusVocab)
			seenVocab[block.FocusVocab] = true
		}
	}
	return focus
}

func (g *Generator) totalWords(ctx context.Context, book *model.Book) int {
	if book.TotalWords > 0 {
		return book.TotalWords
	}
	chapters, err := g.bookRepo.FindChapters(ctx, g.db, book.BookID)
	if err != nil {
		return 0
	}
	total := 0
	for _, ch := range chapters {
		total += ch.Words
	}
	return total
}

func durationWeeks(totalWords int) int {
	days := (totalWords + wordsPerDay - 1) / wordsPerDay
	weeks := (days + 6) / 7
	if weeks < minDurationWeeks {
		weeks = minDurationWeeks
	}
	return weeks
}

func courseDescription(book *model.Book) string {
	if book.Author != "" {
		return fmt.Sprintf("A guided reading course through %q by %s.", book.Title, book.Author)
	}
	return fmt.Sprintf("A guided reading course through %q.", book.Title)
}
