package vocab

import (
	"context"
	"strings"
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

func seedBookWithBlock(t *testing.T, db *gorm.DB, text string) *model.Block {
	t.Helper()
	book := &model.Book{Title: "Test Book", Level: model.LevelB1}
	require.NoError(t, db.Create(book).Error)

	chapter := &model.Chapter{BookID: book.BookID, ChapNum: 1, TextRaw: text}
	require.NoError(t, db.Create(chapter).Error)

	block := &model.Block{BookID: book.BookID, BlockNum: 1}
	require.NoError(t, db.Create(block).Error)
	require.NoError(t, db.Create(&model.BlockChapter{BlockID: block.BlockID, ChapterID: chapter.ChapterID}).Error)
	return block
}

func seedWord(t *testing.T, db *gorm.DB, english string, level model.Level) *model.Word {
	t.Helper()
	word := &model.Word{English: english, Russian: "перевод", Level: level}
	require.NoError(t, db.Create(word).Error)
	return word
}

func TestExtractForBook_RanksByLevelDistanceThenFrequency(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	text := strings.Repeat("whale harbour voyage ", 3) + "whale whale harbour"
	block := seedBookWithBlock(t, db, text)

	whale := seedWord(t, db, "whale", model.LevelA2)    // distance 1, freq 5
	harbour := seedWord(t, db, "harbour", model.LevelB1) // distance 0, freq 4
	voyage := seedWord(t, db, "voyage", model.LevelB1)   // distance 0, freq 3

	extractor := NewExtractor(db, repository.NewGormBlockRepository(), repository.NewGormWordRepository())
	require.NoError(t, extractor.ExtractForBook(ctx, block.BookID, model.LevelB1))

	var vocab []model.BlockVocab
	require.NoError(t, db.Where("block_id = ?", block.BlockID).Order("block_vocab_id").Find(&vocab).Error)
	require.Len(t, vocab, 3)

	// level distance wins over raw frequency
	assert.Equal(t, harbour.WordID, vocab[0].WordID)
	assert.Equal(t, voyage.WordID, vocab[1].WordID)
	assert.Equal(t, whale.WordID, vocab[2].WordID)
	assert.Equal(t, 4, vocab[0].Frequency)
}

func TestExtractForBook_DropsWordsAboveTargetLevel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	block := seedBookWithBlock(t, db, "whale whale serendipity serendipity serendipity")
	seedWord(t, db, "whale", model.LevelA2)
	seedWord(t, db, "serendipity", model.LevelC2)

	extractor := NewExtractor(db, repository.NewGormBlockRepository(), repository.NewGormWordRepository())
	require.NoError(t, extractor.ExtractForBook(ctx, block.BookID, model.LevelA2))

	var vocab []model.BlockVocab
	require.NoError(t, db.Where("block_id = ?", block.BlockID).Find(&vocab).Error)
	require.Len(t, vocab, 1)
	assert.NotZero(t, vocab[0].WordID)
}

func TestExtractForBook_CrossBlockUniqueness(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	book := &model.Book{Title: "Two Blocks", Level: model.LevelB1}
	require.NoError(t, db.Create(book).Error)

	for i := 1; i <= 2; i++ {
		ch := &model.Chapter{BookID: book.BookID, ChapNum: i, TextRaw: "lantern lantern beacon"}
		require.NoError(t, db.Create(ch).Error)
		block := &model.Block{BookID: book.BookID, BlockNum: i}
		require.NoError(t, db.Create(block).Error)
		require.NoError(t, db.Create(&model.BlockChapter{BlockID: block.BlockID, ChapterID: ch.ChapterID}).Error)
	}
	lantern := seedWord(t, db, "lantern", model.LevelB1)
	beacon := seedWord(t, db, "beacon", model.LevelB1)

	extractor := NewExtractor(db, repository.NewGormBlockRepository(), repository.NewGormWordRepository())
	require.NoError(t, extractor.ExtractForBook(ctx, book.BookID, model.LevelB1))

	var first, second []model.BlockVocab
	require.NoError(t, db.Joins("JOIN blocks ON blocks.block_id = block_vocab.block_id").
		Where("blocks.block_num = 1").Find(&first).Error)
	require.NoError(t, db.Joins("JOIN blocks ON blocks.block_id = block_vocab.block_id").
		Where("blocks.block_num = 2").Find(&second).Error)

	require.Len(t, first, 2)
	require.Empty(t, second, "words already taken by block 1 must not repeat in block 2")
	_ = lantern
	_ = beacon
}

func TestExtractForBook_ReplacesExistingVocab(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	block := seedBookWithBlock(t, db, "voyage voyage voyage")
	stale := seedWord(t, db, "stale", model.LevelA1)
	require.NoError(t, db.Create(&model.BlockVocab{BlockID: block.BlockID, WordID: stale.WordID, Frequency: 9}).Error)
	voyage := seedWord(t, db, "voyage", model.LevelB1)

	extractor := NewExtractor(db, repository.NewGormBlockRepository(), repository.NewGormWordRepository())
	require.NoError(t, extractor.ExtractForBook(ctx, block.BookID, model.LevelB1))

	var vocab []model.BlockVocab
	require.NoError(t, db.Where("block_id = ?", block.BlockID).Find(&vocab).Error)
	require.Len(t, vocab, 1)
	assert.Equal(t, voyage.WordID, vocab[0].WordID)
}
