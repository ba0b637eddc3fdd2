package schema

import (
	"context"
	"log/slog"
	"testing"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

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

func newImporter(db *gorm.DB) *Importer {
	return NewImporter(db, repository.NewGormBookRepository(), repository.NewGormBlockRepository(), slog.Default())
}

func seedBook(t *testing.T, db *gorm.DB, chapterCount int) *model.Book {
	t.Helper()
	book := &model.Book{Title: "Moby", Level: model.LevelB1, ChapterCount: chapterCount}
	require.NoError(t, db.Create(book).Error)
	for i := 1; i <= chapterCount; i++ {
		require.NoError(t, db.Create(&model.Chapter{
			BookID: book.BookID, ChapNum: i, TextRaw: "chapter text", Words: 100,
		}).Error)
	}
	return book
}

func intRef(v int) *int { return &v }

func TestParse_TopLevelList(t *testing.T) {
	yamlDoc := []byte("- block: 1\n  chapters: [1, 2]\n  grammar_key: past_simple\n- block: 2\n  chapters: [3]\n")
	jsonDoc := []byte(`[{"block":1,"chapters":[1,2],"grammar_key":"past_simple"},{"block":2,"chapters":[3]}]`)

	for _, doc := range [][]byte{yamlDoc, jsonDoc} {
		s, err := Parse(doc)
		require.NoError(t, err)
		require.Len(t, s.Blocks, 2)
		assert.Equal(t, 1, s.Blocks[0].Number(0))
		assert.Equal(t, []int{1, 2}, s.Blocks[0].Chapters)
		assert.Equal(t, "past_simple", s.Blocks[0].GrammarKey)
		assert.Equal(t, 2, s.Blocks[1].Number(1))
	}
}

func TestParse_BlocksMapping(t *testing.T) {
	yamlDoc := []byte("blocks:\n  - chapters: [1, 2]\n    grammar_key: past_simple\n")
	jsonDoc := []byte(`{"blocks":[{"chapters":[1,2],"grammar_key":"past_simple"}]}`)

	for _, doc := range [][]byte{yamlDoc, jsonDoc} {
		s, err := Parse(doc)
		require.NoError(t, err)
		require.Len(t, s.Blocks, 1)
		assert.Equal(t, []int{1, 2}, s.Blocks[0].Chapters)
		assert.Equal(t, "past_simple", s.Blocks[0].GrammarKey)
		assert.Equal(t, 1, s.Blocks[0].Number(0), "omitted block number defaults to the position")
	}
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse([]byte("{blocks: ["))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestDefaultSchema_PairsWithOddTail(t *testing.T) {
	s := DefaultSchema(5)

	require.Len(t, s.Blocks, 3)
	assert.Equal(t, []int{1, 2}, s.Blocks[0].Chapters)
	assert.Equal(t, []int{3, 4}, s.Blocks[1].Chapters)
	assert.Equal(t, []int{5}, s.Blocks[2].Chapters)
	assert.Equal(t, "past_simple", s.Blocks[0].GrammarKey)
	assert.Equal(t, "present_perfect", s.Blocks[1].GrammarKey)
}

func TestImport_CreatesBlocksAndLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 4)
	im := newImporter(db)

	s := &Schema{Blocks: []BlockSpec{
		{Chapters: []int{1, 2}, GrammarKey: "past_simple"},
		{Chapters: []int{3, 4}, GrammarKey: "conditionals", FocusVocab: "sea travel"},
	}}
	require.NoError(t, im.Import(ctx, book.BookID, s))

	blockRepo := repository.NewGormBlockRepository()
	blocks, err := blockRepo.FindByBook(ctx, db, book.BookID)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "conditionals", blocks[1].GrammarKey)
	assert.Equal(t, "sea travel", blocks[1].FocusVocab)

	chapters, err := blockRepo.FindChapters(ctx, db, blocks[1].BlockID)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, 3, chapters[0].ChapNum)
}

func TestImport_UnknownChapterLeavesOldSchemaIntact(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 4)
	im := newImporter(db)

	require.NoError(t, im.Import(ctx, book.BookID, &Schema{Blocks: []BlockSpec{
		{Chapters: []int{1, 2}}, {Chapters: []int{3, 4}},
	}}))

	err := im.Import(ctx, book.BookID, &Schema{Blocks: []BlockSpec{
		{Chapters: []int{1, 99}},
	}})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	blocks, findErr := repository.NewGormBlockRepository().FindByBook(ctx, db, book.BookID)
	require.NoError(t, findErr)
	assert.Len(t, blocks, 2, "failed import must not disturb the stored schema")
}

func TestValidate_Rejections(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 3)
	im := newImporter(db)

	tests := []struct {
		name   string
		schema *Schema
	}{
		{"nil schema", nil},
		{"no blocks", &Schema{}},
		{"empty block", &Schema{Blocks: []BlockSpec{{}}}},
		{"non-positive chapter", &Schema{Blocks: []BlockSpec{{Chapters: []int{0}}}}},
		{"zero block number", &Schema{Blocks: []BlockSpec{{Block: intRef(0), Chapters: []int{1}}}}},
		{"negative block number", &Schema{Blocks: []BlockSpec{{Block: intRef(-1), Chapters: []int{1}}}}},
		{"duplicate block numbers", &Schema{Blocks: []BlockSpec{
			{Block: intRef(1), Chapters: []int{1}}, {Block: intRef(1), Chapters: []int{2}},
		}}},
		{"duplicate across blocks", &Schema{Blocks: []BlockSpec{
			{Chapters: []int{1, 2}}, {Chapters: []int{2, 3}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, im.Validate(ctx, book.BookID, tt.schema), model.ErrInvalidInput)
		})
	}
}

func TestImport_ReplacesBlockTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 2)
	im := newImporter(db)

	require.NoError(t, im.Import(ctx, book.BookID, &Schema{Blocks: []BlockSpec{{Chapters: []int{1, 2}}}}))

	blocks, err := repository.NewGormBlockRepository().FindByBook(ctx, db, book.BookID)
	require.NoError(t, err)
	oldID := blocks[0].BlockID
	require.NoError(t, db.Create(&model.Task{BlockID: &oldID, TaskType: model.TaskVocabulary, Payload: []byte(`{}`)}).Error)

	require.NoError(t, im.Import(ctx, book.BookID, &Schema{Blocks: []BlockSpec{
		{Chapters: []int{1}}, {Chapters: []int{2}},
	}}))

	var taskCount int64
	require.NoError(t, db.Model(&model.Task{}).Count(&taskCount).Error)
	assert.Zero(t, taskCount, "tasks of replaced blocks must be removed")
}

func TestEnsureBlocks_NoopWhenSchemaExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 4)
	im := newImporter(db)

	require.NoError(t, im.Import(ctx, book.BookID, &Schema{Blocks: []BlockSpec{{Chapters: []int{1, 2, 3, 4}}}}))
	require.NoError(t, im.EnsureBlocks(ctx, book.BookID))

	blocks, err := repository.NewGormBlockRepository().FindByBook(ctx, db, book.BookID)
	require.NoError(t, err)
	assert.Len(t, blocks, 1, "existing schema must survive")
}

func TestExportRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 4)
	im := newImporter(db)

	original := &Schema{Blocks: []BlockSpec{
		{Block: intRef(1), Chapters: []int{1, 2}, GrammarKey: "passive_voice"},
		{Block: intRef(2), Chapters: []int{3, 4}, GrammarKey: "reported_speech", FocusVocab: "weather"},
	}}
	require.NoError(t, im.Import(ctx, book.BookID, original))

	exported, err := im.Export(ctx, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, original, exported)

	raw, err := Marshal(exported)
	require.NoError(t, err)
	reparsed, parseErr := Parse(raw)
	require.NoError(t, parseErr)
	assert.Equal(t, original, reparsed)
}
