package repository

import (
	"context"
	"errors"

	"github.com/nekto007/language-learning-tool/internal/model"

	"gorm.io/gorm"
)

type BookRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, bookID uint) (*model.Book, error)
	FindChapters(ctx context.Context, db *gorm.DB, bookID uint) ([]*model.Chapter, error)
	FindChapterByID(ctx context.Context, db *gorm.DB, chapterID uint) (*model.Chapter, error)
	ListBooks(ctx context.Context, db *gorm.DB, limit int) ([]*model.Book, error)
	CountBooks(ctx context.Context, db *gorm.DB) (int64, error)
}

type gormBookRepository struct{}

func NewGormBookRepository() BookRepository {
	return &gormBookRepository{}
}

func (r *gormBookRepository) FindByID(ctx context.Context, db *gorm.DB, bookID uint) (*model.Book, error) {
	var book model.Book
	result := db.WithContext(ctx).First(&book, bookID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &book, nil
}

func (r *gormBookRepository) FindChapters(ctx context.Context, db *gorm.DB, bookID uint) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	result := db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("chap_num ASC").
		Find(&chapters)
	return chapters, result.Error
}

func (r *gormBookRepository) FindChapterByID(ctx context.Context, db *gorm.DB, chapterID uint) (*model.Chapter, error) {
	var chapter model.Chapter
	result := db.WithContext(ctx).First(&chapter, chapterID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &chapter, nil
}

func (r *gormBookRepository) ListBooks(ctx context.Context, db *gorm.DB, limit int) ([]*model.Book, error) {
	var books []*model.Book
	q := db.WithContext(ctx).Order("level ASC, title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	result := q.Find(&books)
	return books, result.Error
}

func (r *gormBookRepository) CountBooks(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Book{}).Count(&count)
	return count, result.Error
}
