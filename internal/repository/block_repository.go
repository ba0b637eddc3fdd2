package repository

import (
	"context"
	"errors"

	"github.com/nekto007/language-learning-tool/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockRepository interface {
	Create(ctx context.Context, tx *gorm.DB, block *model.Block) error
	FindByBook(ctx context.Context, db *gorm.DB, bookID uint) ([]*model.Block, error)
	FindByID(ctx context.Context, db *gorm.DB, blockID uint) (*model.Block, error)
	FindChapters(ctx context.Context, db *gorm.DB, blockID uint) ([]*model.Chapter, error)
	LinkChapters(ctx context.Context, tx *gorm.DB, blockID uint, chapterIDs []uint) error
	HasChapterLinks(ctx context.Context, db *gorm.DB, bookID uint) (bool, error)
	DeleteByBook(ctx context.Context, tx *gorm.DB, bookID uint) error

	ReplaceVocab(ctx context.Context, tx *gorm.DB, blockID uint, entries []*model.BlockVocab) error
	FindVocab(ctx context.Context, db *gorm.DB, blockID uint) ([]*model.BlockVocab, error)
	FindVocabByBook(ctx context.Context, db *gorm.DB, bookID uint) ([]*model.BlockVocab, error)
	FindSelectedWordIDs(ctx context.Context, db *gorm.DB, bookID uint) (map[uint]bool, error)
}

type gormBlockRepository struct{}

func NewGormBlockRepository() BlockRepository {
	return &gormBlockRepository{}
}

func (r *gormBlockRepository) Create(ctx context.Context, tx *gorm.DB, block *model.Block) error {
	return tx.WithContext(ctx).Create(block).Error
}

func (r *gormBlockRepository) FindByBook(ctx context.Context, db *gorm.DB, bookID uint) ([]*model.Block, error) {
	var blocks []*model.Block
	result := db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("block_num ASC").
		Find(&blocks)
	return blocks, result.Error
}

func (r *gormBlockRepository) FindByID(ctx context.Context, db *gorm.DB, blockID uint) (*model.Block, error) {
	var block model.Block
	result := db.WithContext(ctx).First(&block, blockID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &block, nil
}

func (r *gormBlockRepository) FindChapters(ctx context.Context, db *gorm.DB, blockID uint) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	result := db.WithContext(ctx).
		Joins("JOIN block_chapters ON block_chapters.chapter_id = chapters.chapter_id").
		Where("block_chapters.block_id = ?", blockID).
		Order("chapters.chap_num ASC").
		Find(&chapters)
	return chapters, result.Error
}

func (r *gormBlockRepository) LinkChapters(ctx context.Context, tx *gorm.DB, blockID uint, chapterIDs []uint) error {
	rows := make([]model.BlockChapter, 0, len(chapterIDs))
	for _, cid := range chapterIDs {
		rows = append(rows, model.BlockChapter{BlockID: blockID, ChapterID: cid})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&rows).Error
}

func (r *gormBlockRepository) HasChapterLinks(ctx context.Context, db *gorm.DB, bookID uint) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.BlockChapter{}).
		Joins("JOIN blocks ON blocks.block_id = block_chapters.block_id").
		Where("blocks.book_id = ?", bookID).
		Count(&count)
	return count > 0, result.Error
}

// DeleteByBook removes all blocks of a book together with their chapter links
// and vocabulary. Runs inside the caller's transaction.
func (r *gormBlockRepository) DeleteByBook(ctx context.Context, tx *gorm.DB, bookID uint) error {
	var blockIDs []uint
	if err := tx.WithContext(ctx).
		Model(&model.Block{}).
		Where("book_id = ?", bookID).
		Pluck("block_id", &blockIDs).Error; err != nil {
		return err
	}
	if len(blockIDs) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Where("block_id IN ?", blockIDs).Delete(&model.BlockChapter{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("block_id IN ?", blockIDs).Delete(&model.BlockVocab{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("book_id = ?", bookID).Delete(&model.Block{}).Error
}

// ReplaceVocab swaps the block's vocabulary atomically within the caller's
// transaction.
func (r *gormBlockRepository) ReplaceVocab(ctx context.Context, tx *gorm.DB, blockID uint, entries []*model.BlockVocab) error {
	if err := tx.WithContext(ctx).Where("block_id = ?", blockID).Delete(&model.BlockVocab{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}

func (r *gormBlockRepository) FindVocab(ctx context.Context, db *gorm.DB, blockID uint) ([]*model.BlockVocab, error) {
	var vocab []*model.BlockVocab
	result := db.WithContext(ctx).
		Preload("Word").
		Where("block_id = ?", blockID).
		Order("frequency DESC").
		Find(&vocab)
	return vocab, result.Error
}

// FindVocabByBook returns the union of all blocks' vocabulary for the book,
// most frequent first. This is the top-up pool for slice vocabulary.
func (r *gormBlockRepository) FindVocabByBook(ctx context.Context, db *gorm.DB, bookID uint) ([]*model.BlockVocab, error) {
	var vocab []*model.BlockVocab
	result := db.WithContext(ctx).
		Preload("Word").
		Joins("JOIN blocks ON blocks.block_id = block_vocab.block_id").
		Where("blocks.book_id = ?", bookID).
		Order("block_vocab.frequency DESC").
		Find(&vocab)
	return vocab, result.Error
}

// FindSelectedWordIDs returns word ids already used by any block of the book,
// enforcing cross-block uniqueness during extraction.
func (r *gormBlockRepository) FindSelectedWordIDs(ctx context.Context, db *gorm.DB, bookID uint) (map[uint]bool, error) {
	var ids []uint
	result := db.WithContext(ctx).
		Model(&model.BlockVocab{}).
		Joins("JOIN blocks ON blocks.block_id = block_vocab.block_id").
		Where("blocks.book_id = ?", bookID).
		Pluck("block_vocab.word_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	selected := make(map[uint]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	return selected, nil
}
