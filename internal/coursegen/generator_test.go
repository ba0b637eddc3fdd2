package coursegen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/schema"
	"github.com/nekto007/language-learning-tool/internal/slicer"
	"github.com/nekto007/language-learning-tool/internal/tasks"
	"github.com/nekto007/language-learning-tool/internal/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func newGenerator(db *gorm.DB) *Generator {
	log := slog.Default()
	bookRepo := repository.NewGormBookRepository()
	blockRepo := repository.NewGormBlockRepository()
	taskRepo := repository.NewGormTaskRepository()
	taskSvc := tasks.NewService(db, blockRepo, taskRepo, log)
	loc, _ := time.LoadLocation("Europe/Amsterdam")
	return NewGenerator(
		db,
		bookRepo,
		blockRepo,
		repository.NewGormCourseRepository(),
		schema.NewImporter(db, bookRepo, blockRepo, log),
		vocab.NewExtractor(db, blockRepo, repository.NewGormWordRepository()),
		taskSvc,
		slicer.NewSlicer(blockRepo, repository.NewGormLessonRepository(), taskRepo, taskSvc, log, loc),
		log,
	)
}

// chapterText builds roughly n words of sentence-shaped prose.
func chapterText(n int) string {
	var sb strings.Builder
	for w := 0; w < n; w += 10 {
		fmt.Fprintf(&sb, "The young sailor studied the wide ocean chart number %d. ", w)
		if (w/10)%4 == 3 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func seedBook(t *testing.T, db *gorm.DB, chapterCount, wordsPerChapter int) *model.Book {
	t.Helper()
	book := &model.Book{Title: "The Voyage", Author: "A. Sailor", Level: model.LevelB1,
		TotalWords: chapterCount * wordsPerChapter, ChapterCount: chapterCount}
	require.NoError(t, db.Create(book).Error)
	for i := 1; i <= chapterCount; i++ {
		require.NoError(t, db.Create(&model.Chapter{
			BookID:  book.BookID,
			ChapNum: i,
			Title:   fmt.Sprintf("Chapter %d", i),
			TextRaw: chapterText(wordsPerChapter),
			Words:   wordsPerChapter,
		}).Error)
	}
	return book
}

func TestBuild_B1CourseEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 6, 1000)
	g := newGenerator(db)

	course, err := g.Build(ctx, book.BookID, BuildOptions{})
	require.NoError(t, err)

	// auto schema pairs chapters: 6 chapters give 3 blocks and 3 modules
	blocks, err := repository.NewGormBlockRepository().FindByBook(ctx, db, book.BookID)
	require.NoError(t, err)
	assert.Len(t, blocks, 3)

	modules, err := repository.NewGormCourseRepository().FindModules(ctx, db, course.CourseID)
	require.NoError(t, err)
	require.Len(t, modules, 3)
	assert.Equal(t, 3, course.TotalModules)
	assert.Contains(t, modules[0].Title, "Chapters 1-2")

	lessonRepo := repository.NewGormLessonRepository()
	readingSlices := 0
	for _, module := range modules {
		lessons, err := lessonRepo.FindByModule(ctx, db, module.ModuleID)
		require.NoError(t, err)
		require.NotEmpty(t, lessons)
		assert.Equal(t, model.LessonModuleTest, lessons[len(lessons)-1].LessonType)
		for _, lesson := range lessons {
			if lesson.LessonType == model.LessonReading {
				readingSlices++
			}
		}
	}
	// 6000 words at the B1 400-word target
	assert.InDelta(t, 15, readingSlices, 3)
}

func TestBuild_SecondBuildConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 4, 500)
	g := newGenerator(db)

	_, err := g.Build(ctx, book.BookID, BuildOptions{})
	require.NoError(t, err)

	_, err = g.Build(ctx, book.BookID, BuildOptions{})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestBuild_UnknownBook(t *testing.T) {
	db := setupTestDB(t)
	g := newGenerator(db)

	_, err := g.Build(context.Background(), 404, BuildOptions{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBuild_ExplicitSchemaAndLevelOverride(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 4, 500)
	g := newGenerator(db)

	level := model.LevelA2
	course, err := g.Build(ctx, book.BookID, BuildOptions{
		Schema: &schema.Schema{Blocks: []schema.BlockSpec{
			{Chapters: []int{1, 2, 3, 4}, GrammarKey: "conditionals"},
		}},
		Level: &level,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LevelA2, course.Level)
	assert.Equal(t, 1, course.TotalModules)
}

func TestBuild_BlockTasksGenerated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 2, 800)
	g := newGenerator(db)

	_, err := g.Build(ctx, book.BookID, BuildOptions{})
	require.NoError(t, err)

	blocks, err := repository.NewGormBlockRepository().FindByBook(ctx, db, book.BookID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	blockTasks, err := repository.NewGormTaskRepository().FindByBlock(ctx, db, blocks[0].BlockID)
	require.NoError(t, err)
	assert.Len(t, blockTasks, len(model.BlockTaskTypes))
}

func TestDistribute_Boundaries(t *testing.T) {
	mkBlocks := func(n int) []*model.Block {
		out := make([]*model.Block, n)
		for i := range out {
			out[i] = &model.Block{BlockID: uint(i + 1), BlockNum: i + 1}
		}
		return out
	}

	// fewer than six blocks: one module per block
	groups := distribute(mkBlocks(3), moduleCount(3))
	require.Len(t, groups, 3)
	for _, group := range groups {
		assert.Len(t, group, 1)
	}

	// more than ten blocks: exactly ten modules covering every block in order
	groups = distribute(mkBlocks(23), moduleCount(23))
	require.Len(t, groups, 10)
	total := 0
	var lastID uint
	for _, group := range groups {
		require.NotEmpty(t, group)
		for _, block := range group {
			assert.Greater(t, block.BlockID, lastID)
			lastID = block.BlockID
			total++
		}
	}
	assert.Equal(t, 23, total)
}

func TestDurationWeeks(t *testing.T) {
	assert.Equal(t, 4, durationWeeks(0))
	assert.Equal(t, 4, durationWeeks(6000))   // ~8 days
	assert.Equal(t, 6, durationWeeks(30000))  // 38 days
	assert.Equal(t, 18, durationWeeks(100000)) // 125 days
}

func TestMergeFocus_DedupesAndCaps(t *testing.T) {
	group := make([]*model.Block, 0, 8)
	for i := 0; i < 8; i++ {
		group = append(group, &model.Block{
			GrammarKey: fmt.Sprintf("topic_%d", i%2),
			FocusVocab: fmt.Sprintf("vocab_%d", i),
		})
	}
	focus := mergeFocus(group)
	assert.Equal(t, []string{"topic_0", "topic_1"}, focus.GrammarFocus)
	assert.Len(t, focus.VocabularyFocus, focusCap)
}
