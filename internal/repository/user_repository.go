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

type UserRepository interface {
	// FindOrCreate loads the user's settings row, creating it with defaults on
	// first contact.
	FindOrCreate(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	TouchLastActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error
	ListActive(ctx context.Context, db *gorm.DB, since time.Time) ([]*model.User, error)
}

type gormUserRepository struct {
	defaultTimezone string
}

func NewGormUserRepository(defaultTimezone string) UserRepository {
	return &gormUserRepository{defaultTimezone: defaultTimezone}
}

func (r *gormUserRepository) FindOrCreate(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	var user model.User
	result := db.WithContext(ctx).First(&user, "user_id = ?", userID)
	if result.Error == nil {
		return &user, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	user = model.User{
		UserID:         userID,
		Timezone:       r.defaultTimezone,
		NewWordsPerDay: 20,
		ReviewsPerDay:  100,
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) TouchLastActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("last_active_at", at).Error
}

func (r *gormUserRepository) ListActive(ctx context.Context, db *gorm.DB, since time.Time) ([]*model.User, error) {
	var users []*model.User
	result := db.WithContext(ctx).
		Where("last_active_at >= ?", since).
		Find(&users)
	return users, result.Error
}
