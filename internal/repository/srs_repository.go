package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SRSRepository interface {
	// EnsureCards creates the UserWord and both direction cards for a word if
	// missing. Idempotent per (user, word, direction). Returns the number of
	// cards actually created.
	EnsureCards(ctx context.Context, tx *gorm.DB, userID uuid.UUID, wordID uint) (int, error)
	FindCardByID(ctx context.Context, db *gorm.DB, userID uuid.UUID, cardID uint) (*model.UserCardDirection, error)
	FindCardsForWords(ctx context.Context, db *gorm.DB, userID uuid.UUID, wordIDs []uint) ([]*model.UserCardDirection, error)
	UpdateCard(ctx context.Context, tx *gorm.DB, card *model.UserCardDirection) error
	CountUserWords(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
	CountDueCards(ctx context.Context, db *gorm.DB, userID uuid.UUID, direction string, now time.Time) (int64, error)
	CountReviewedBetween(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time, newOnly bool) (int64, error)
	HasReviewOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error)
}

type gormSRSRepository struct{}

func NewGormSRSRepository() SRSRepository {
	return &gormSRSRepository{}
}

func (r *gormSRSRepository) EnsureCards(ctx context.Context, tx *gorm.DB, userID uuid.UUID, wordID uint) (int, error) {
	userWord := &model.UserWord{UserID: userID, WordID: wordID}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(userWord).Error
	if err != nil {
		return 0, err
	}
	if userWord.UserWordID == 0 {
		// conflict path: load the existing shadow row
		if err := tx.WithContext(ctx).
			Where("user_id = ? AND word_id = ?", userID, wordID).
			First(userWord).Error; err != nil {
			return 0, err
		}
	}

	created := 0
	for _, direction := range model.CardDirections {
		card := &model.UserCardDirection{
			UserWordID: userWord.UserWordID,
			Direction:  direction,
			Ease:       2.5,
		}
		result := tx.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(card)
		if result.Error != nil {
			return created, result.Error
		}
		if result.RowsAffected > 0 {
			created++
		}
	}
	return created, nil
}

func (r *gormSRSRepository) FindCardByID(ctx context.Context, db *gorm.DB, userID uuid.UUID, cardID uint) (*model.UserCardDirection, error) {
	var card model.UserCardDirection
	result := db.WithContext(ctx).
		Preload("UserWord").
		Preload("UserWord.Word").
		Joins("JOIN user_words ON user_words.user_word_id = user_card_directions.user_word_id").
		Where("user_card_directions.card_id = ? AND user_words.user_id = ?", cardID, userID).
		First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

func (r *gormSRSRepository) FindCardsForWords(ctx context.Context, db *gorm.DB, userID uuid.UUID, wordIDs []uint) ([]*model.UserCardDirection, error) {
	if len(wordIDs) == 0 {
		return nil, nil
	}
	var cards []*model.UserCardDirection
	result := db.WithContext(ctx).
		Preload("UserWord").
		Preload("UserWord.Word").
		Joins("JOIN user_words ON user_words.user_word_id = user_card_directions.user_word_id").
		Where("user_words.user_id = ? AND user_words.word_id IN ?", userID, wordIDs).
		Find(&cards)
	return cards, result.Error
}

func (r *gormSRSRepository) UpdateCard(ctx context.Context, tx *gorm.DB, card *model.UserCardDirection) error {
	return tx.WithContext(ctx).Save(card).Error
}

func (r *gormSRSRepository) CountUserWords(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.UserWord{}).
		Where("user_id = ?", userID).
		Count(&count)
	return count, result.Error
}

// CountDueCards counts due cards for one direction: new cards plus cards whose
// next_review has passed.
func (r *gormSRSRepository) CountDueCards(ctx context.Context, db *gorm.DB, userID uuid.UUID, direction string, now time.Time) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.UserCardDirection{}).
		Joins("JOIN user_words ON user_words.user_word_id = user_card_directions.user_word_id").
		Where("user_words.user_id = ? AND user_card_directions.direction = ?", userID, direction).
		Where("user_card_directions.repetitions = 0 OR user_card_directions.next_review <= ?", now).
		Count(&count)
	return count, result.Error
}

// CountReviewedBetween counts cards answered in [from, to). With newOnly the
// count covers first-time answers only; otherwise repeat reviews only.
func (r *gormSRSRepository) CountReviewedBetween(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time, newOnly bool) (int64, error) {
	var count int64
	q := db.WithContext(ctx).
		Model(&model.UserCardDirection{}).
		Joins("JOIN user_words ON user_words.user_word_id = user_card_directions.user_word_id").
		Where("user_words.user_id = ?", userID)
	if newOnly {
		q = q.Where("user_card_directions.first_reviewed >= ? AND user_card_directions.first_reviewed < ?", from, to)
	} else {
		q = q.Where("user_card_directions.last_reviewed >= ? AND user_card_directions.last_reviewed < ?", from, to).
			Where("user_card_directions.first_reviewed < ?", from)
	}
	result := q.Count(&count)
	return count, result.Error
}

func (r *gormSRSRepository) HasReviewOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.UserCardDirection{}).
		Joins("JOIN user_words ON user_words.user_word_id = user_card_directions.user_word_id").
		Where("user_words.user_id = ? AND user_card_directions.last_reviewed >= ? AND user_card_directions.last_reviewed < ?", userID, from, to).
		Count(&count)
	return count > 0, result.Error
}
