package repository

import (
	"context"
	"errors"

	"github.com/nekto007/language-learning-tool/internal/model"

	"gorm.io/gorm"
)

type WordRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, wordID uint) (*model.Word, error)
	FindByLemmas(ctx context.Context, db *gorm.DB, lemmas []string) ([]*model.Word, error)
}

type gormWordRepository struct{}

func NewGormWordRepository() WordRepository {
	return &gormWordRepository{}
}

func (r *gormWordRepository) FindByID(ctx context.Context, db *gorm.DB, wordID uint) (*model.Word, error) {
	var word model.Word
	result := db.WithContext(ctx).First(&word, wordID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &word, nil
}

// FindByLemmas intersects a token list with the global catalogue.
func (r *gormWordRepository) FindByLemmas(ctx context.Context, db *gorm.DB, lemmas []string) ([]*model.Word, error) {
	if len(lemmas) == 0 {
		return nil, nil
	}
	var words []*model.Word
	result := db.WithContext(ctx).Where("english IN ?", lemmas).Find(&words)
	return words, result.Error
}
