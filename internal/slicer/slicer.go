// Package slicer turns a course module's text into an ordered run of daily
// lessons: one reading slice plus one practice lesson per day, closed by a
// module test.
package slicer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/tasks"
	"github.com/nekto007/language-learning-tool/internal/textutil"

	"gorm.io/gorm"
)

// unlockHour is the local wall-clock hour at which a scheduled lesson opens.
const unlockHour = 8

// slice is one contiguous cut of the module text.
type slice struct {
	Text      string
	WordCount int
	Start     int
	End       int
	ChapterID uint
}

// chapterSpan maps a chapter onto its range in the combined module text.
type chapterSpan struct {
	ChapterID uint
	Start     int
	End       int
}

type Slicer struct {
	blockRepo  repository.BlockRepository
	lessonRepo repository.LessonRepository
	taskRepo   repository.TaskRepository
	taskSvc    *tasks.Service
	logger     *slog.Logger
	location   *time.Location
	now        func() time.Time
}

func NewSlicer(
	blockRepo repository.BlockRepository,
	lessonRepo repository.LessonRepository,
	taskRepo repository.TaskRepository,
	taskSvc *tasks.Service,
	logger *slog.Logger,
	location *time.Location,
) *Slicer {
	return &Slicer{
		blockRepo:  blockRepo,
		lessonRepo: lessonRepo,
		taskRepo:   taskRepo,
		taskSvc:    taskSvc,
		logger:     logger,
		location:   location,
		now:        time.Now,
	}
}

// GenerateForModule creates the module's daily lessons inside the caller's
// transaction. A module whose text cannot be sliced is logged and skipped so
// the course build continues; only storage errors propagate.
func (s *Slicer) GenerateForModule(ctx context.Context, tx *gorm.DB, module *model.BookCourseModule) ([]*model.DailyLesson, error) {
	if module.PrimaryBlockID == nil {
		s.logger.WarnContext(ctx, "module has no primary block, skipping slicing",
			slog.Uint64("module_id", uint64(module.ModuleID)))
		return nil, nil
	}

	combined, spans, err := s.combineText(ctx, tx, *module.PrimaryBlockID)
	if err != nil {
		s.logger.WarnContext(ctx, "module text unavailable, skipping slicing",
			slog.Uint64("module_id", uint64(module.ModuleID)), slog.Any("error", err))
		return nil, nil
	}

	level := module.EffectiveLevel()
	slices := cut(combined, spans, BudgetFor(level))
	if len(slices) == 0 {
		s.logger.WarnContext(ctx, "module text produced no slices",
			slog.Uint64("module_id", uint64(module.ModuleID)))
		return nil, nil
	}

	blockVocab, err := s.blockRepo.FindVocab(ctx, tx, *module.PrimaryBlockID)
	if err != nil {
		return nil, err
	}
	bookVocab, err := s.blockRepo.FindVocabByBook(ctx, tx, blockBookID(ctx, tx, *module.PrimaryBlockID))
	if err != nil {
		return nil, err
	}

	var lessons []*model.DailyLesson
	for i, sl := range slices {
		day := i + 1
		pair := pairForDay(level, day)
		for order, lessonType := range []string{pair.First, pair.Second} {
			lesson, err := s.materialise(ctx, tx, module, sl, day, order+1, lessonType, blockVocab, bookVocab)
			if err != nil {
				return nil, err
			}
			lessons = append(lessons, lesson)
		}
	}

	test, err := s.appendModuleTest(ctx, tx, module, len(slices)+1)
	if err != nil {
		return nil, err
	}
	lessons = append(lessons, test)

	s.logger.InfoContext(ctx, "module sliced",
		slog.Uint64("module_id", uint64(module.ModuleID)),
		slog.Int("slices", len(slices)),
		slog.Int("lessons", len(lessons)),
		slog.String("level", level.String()),
	)
	return lessons, nil
}

// combineText joins the block's chapters in order and records each chapter's
// span in the combined text.
func (s *Slicer) combineText(ctx context.Context, db *gorm.DB, blockID uint) (string, []chapterSpan, error) {
	chapters, err := s.blockRepo.FindChapters(ctx, db, blockID)
	if err != nil {
		return "", nil, err
	}
	if len(chapters) == 0 {
		return "", nil, fmt.Errorf("block %d has no chapters: %w", blockID, model.ErrInvalidInput)
	}

	var sb strings.Builder
	spans := make([]chapterSpan, 0, len(chapters))
	for _, ch := range chapters {
		if sb.Len() > 0 {
			sb.WriteString(textutil.ParagraphSeparator)
		}
		start := sb.Len()
		sb.WriteString(ch.TextRaw)
		spans = append(spans, chapterSpan{ChapterID: ch.ChapterID, Start: start, End: sb.Len()})
	}
	return sb.String(), spans, nil
}

// cut greedily accumulates sentences into slices. A slice closes when it has
// reached the target or the next sentence would push it past the max. A tail
// below the floor merges into its predecessor if the sum stays within the max.
func cut(text string, spans []chapterSpan, budget WordBudget) []slice {
	sentences := textutil.SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var out []slice
	var cur []textutil.Sentence
	curWords := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		start := cur[0].Start
		end := cur[len(cur)-1].End
		out = append(out, slice{
			Text:      text[start:end],
			WordCount: curWords,
			Start:     start,
			End:       end,
			ChapterID: chapterAt(spans, start),
		})
		cur = cur[:0]
		curWords = 0
	}

	for _, sent := range sentences {
		if len(cur) > 0 && (curWords >= budget.Target || curWords+sent.WordCount > budget.Max) {
			flush()
		}
		cur = append(cur, sent)
		curWords += sent.WordCount
	}
	flush()

	// merge an undersized tail so no dangling mini-slice remains; the merge
	// must not push the predecessor past the level maximum, a short tail
	// stays on its own day in that case
	if n := len(out); n > 1 && out[n-1].WordCount < minSliceWords {
		prev, last := out[n-2], out[n-1]
		if prev.WordCount+last.WordCount <= budget.Max {
			out[n-2] = slice{
				Text:      text[prev.Start:last.End],
				WordCount: prev.WordCount + last.WordCount,
				Start:     prev.Start,
				End:       last.End,
				ChapterID: prev.ChapterID,
			}
			out = out[:n-1]
		}
	}
	return out
}

func chapterAt(spans []chapterSpan, pos int) uint {
	for _, sp := range spans {
		if pos >= sp.Start && pos < sp.End {
			return sp.ChapterID
		}
	}
	if len(spans) > 0 {
		return spans[len(spans)-1].ChapterID
	}
	return 0
}

func (s *Slicer) materialise(
	ctx context.Context,
	tx *gorm.DB,
	module *model.BookCourseModule,
	sl slice,
	day, order int,
	lessonType string,
	blockVocab, bookVocab []*model.BlockVocab,
) (*model.DailyLesson, error) {
	chapterID := sl.ChapterID
	lesson := &model.DailyLesson{
		ModuleID:      module.ModuleID,
		DayNumber:     day,
		LessonOrder:   order,
		SliceNumber:   day,
		ChapterID:     &chapterID,
		LessonType:    lessonType,
		Title:         lessonTitle(day, lessonType),
		SliceText:     sl.Text,
		WordCount:     sl.WordCount,
		StartPosition: sl.Start,
		EndPosition:   sl.End,
		AvailableAt:   s.availableAt(day, order),
	}

	switch lessonType {
	case model.LessonMCQ:
		task, err := s.taskSvc.CreateStandalone(ctx, tx, model.TaskReadingMCQ, tasks.Input{
			GrammarKey: grammarKey(module), Text: sl.Text, Vocab: blockVocab,
		})
		if err != nil {
			return nil, err
		}
		lesson.TaskID = &task.TaskID
	case model.LessonCloze:
		task, err := s.taskSvc.CreateStandalone(ctx, tx, model.TaskOpenCloze, tasks.Input{
			GrammarKey: grammarKey(module), Text: sl.Text, Vocab: blockVocab,
		})
		if err != nil {
			return nil, err
		}
		lesson.TaskID = &task.TaskID
	case model.LessonGrammar:
		if task, err := s.taskRepo.FindByBlockAndType(ctx, tx, *module.PrimaryBlockID, model.TaskGrammarSheet); err == nil {
			lesson.TaskID = &task.TaskID
		}
	}

	if err := s.lessonRepo.Create(ctx, tx, lesson); err != nil {
		return nil, err
	}

	if lesson.IsVocabularyType() {
		entries := extractSliceVocabulary(sl.Text, blockVocab, bookVocab)
		for _, e := range entries {
			e.DailyLessonID = lesson.DailyLessonID
		}
		if err := s.lessonRepo.ReplaceSliceVocab(ctx, tx, lesson.DailyLessonID, entries); err != nil {
			return nil, err
		}
	}
	return lesson, nil
}

func (s *Slicer) appendModuleTest(ctx context.Context, tx *gorm.DB, module *model.BookCourseModule, day int) (*model.DailyLesson, error) {
	lesson := &model.DailyLesson{
		ModuleID:    module.ModuleID,
		DayNumber:   day,
		LessonOrder: 1,
		SliceNumber: day,
		LessonType:  model.LessonModuleTest,
		Title:       fmt.Sprintf("Day %d: Module Test", day),
		AvailableAt: s.availableAt(day, 1),
	}
	if module.PrimaryBlockID != nil {
		if task, err := s.taskRepo.FindByBlockAndType(ctx, tx, *module.PrimaryBlockID, model.TaskFinalTest); err == nil {
			lesson.TaskID = &task.TaskID
		}
	}
	if err := s.lessonRepo.Create(ctx, tx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// availableAt schedules day d at 08:00 local on the d-th day from today. The
// very first lesson of the module is open immediately.
func (s *Slicer) availableAt(day, order int) *time.Time {
	if day == 1 && order == 1 {
		return nil
	}
	local := s.now().In(s.location)
	opens := time.Date(local.Year(), local.Month(), local.Day(), unlockHour, 0, 0, 0, s.location).
		AddDate(0, 0, day-1).
		UTC()
	return &opens
}

func lessonTitle(day int, lessonType string) string {
	names := map[string]string{
		model.LessonReading:     "Reading",
		model.LessonVocabulary:  "Vocabulary",
		model.LessonVocabReview: "Vocabulary Review",
		model.LessonGrammar:     "Grammar",
		model.LessonMCQ:         "Comprehension",
		model.LessonCloze:       "Cloze Practice",
		model.LessonSummary:     "Summary",
	}
	name, ok := names[lessonType]
	if !ok {
		name = lessonType
	}
	return fmt.Sprintf("Day %d: %s", day, name)
}

func grammarKey(module *model.BookCourseModule) string {
	if module.PrimaryBlock != nil {
		return module.PrimaryBlock.GrammarKey
	}
	return ""
}

// blockBookID resolves the owning book without failing the build; slice
// vocabulary top-up just shrinks when the lookup misses.
func blockBookID(ctx context.Context, db *gorm.DB, blockID uint) uint {
	var block model.Block
	if err := db.WithContext(ctx).First(&block, blockID).Error; err != nil {
		return 0
	}
	return block.BookID
}
