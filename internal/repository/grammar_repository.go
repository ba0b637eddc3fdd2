package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GrammarRepository interface {
	FindTopicBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.GrammarTopic, error)
	FindTopicsBySlugs(ctx context.Context, db *gorm.DB, slugs []string) ([]*model.GrammarTopic, error)
	FirstActiveTopic(ctx context.Context, db *gorm.DB) (*model.GrammarTopic, error)
	FindExercisesByTopic(ctx context.Context, db *gorm.DB, topicID uint) ([]*model.GrammarExercise, error)

	FindUserExercise(ctx context.Context, db *gorm.DB, userID uuid.UUID, exerciseID uint) (*model.UserGrammarExercise, error)
	SaveUserExercise(ctx context.Context, tx *gorm.DB, exercise *model.UserGrammarExercise) error
	CountDueExercises(ctx context.Context, db *gorm.DB, userID uuid.UUID, topicID *uint, now time.Time) (int64, error)
	HasAnswerOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error)

	FindTopicStatuses(ctx context.Context, db *gorm.DB, userID uuid.UUID, statuses []string) ([]*model.UserGrammarTopicStatus, error)
	UpsertTopicStatus(ctx context.Context, tx *gorm.DB, status *model.UserGrammarTopicStatus) error
}

type gormGrammarRepository struct{}

func NewGormGrammarRepository() GrammarRepository {
	return &gormGrammarRepository{}
}

func (r *gormGrammarRepository) FindTopicBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.GrammarTopic, error) {
	var topic model.GrammarTopic
	result := db.WithContext(ctx).Where("slug = ?", slug).First(&topic)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &topic, nil
}

func (r *gormGrammarRepository) FindTopicsBySlugs(ctx context.Context, db *gorm.DB, slugs []string) ([]*model.GrammarTopic, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var topics []*model.GrammarTopic
	result := db.WithContext(ctx).
		Where("slug IN ?", slugs).
		Order("topic_order ASC").
		Find(&topics)
	return topics, result.Error
}

func (r *gormGrammarRepository) FirstActiveTopic(ctx context.Context, db *gorm.DB) (*model.GrammarTopic, error) {
	var topic model.GrammarTopic
	result := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("topic_order ASC").
		First(&topic)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &topic, nil
}

func (r *gormGrammarRepository) FindExercisesByTopic(ctx context.Context, db *gorm.DB, topicID uint) ([]*model.GrammarExercise, error) {
	var exercises []*model.GrammarExercise
	result := db.WithContext(ctx).Where("topic_id = ?", topicID).Find(&exercises)
	return exercises, result.Error
}

func (r *gormGrammarRepository) FindUserExercise(ctx context.Context, db *gorm.DB, userID uuid.UUID, exerciseID uint) (*model.UserGrammarExercise, error) {
	var exercise model.UserGrammarExercise
	result := db.WithContext(ctx).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		First(&exercise)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &exercise, nil
}

func (r *gormGrammarRepository) SaveUserExercise(ctx context.Context, tx *gorm.DB, exercise *model.UserGrammarExercise) error {
	return tx.WithContext(ctx).Save(exercise).Error
}

// CountDueExercises counts grammar cards due now: not buried, and either new
// or past their next_review. Optionally scoped to one topic.
func (r *gormGrammarRepository) CountDueExercises(ctx context.Context, db *gorm.DB, userID uuid.UUID, topicID *uint, now time.Time) (int64, error) {
	var count int64
	q := db.WithContext(ctx).
		Model(&model.UserGrammarExercise{}).
		Where("user_id = ?", userID).
		Where("buried_until IS NULL OR buried_until <= ?", now).
		Where("state = ? OR next_review <= ?", model.CardStateNew, now)
	if topicID != nil {
		q = q.Joins("JOIN grammar_exercises ON grammar_exercises.exercise_id = user_grammar_exercises.exercise_id").
			Where("grammar_exercises.topic_id = ?", *topicID)
	}
	result := q.Count(&count)
	return count, result.Error
}

func (r *gormGrammarRepository) HasAnswerOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.UserGrammarExercise{}).
		Where("user_id = ? AND last_reviewed >= ? AND last_reviewed < ?", userID, from, to).
		Count(&count)
	return count > 0, result.Error
}

func (r *gormGrammarRepository) FindTopicStatuses(ctx context.Context, db *gorm.DB, userID uuid.UUID, statuses []string) ([]*model.UserGrammarTopicStatus, error) {
	var rows []*model.UserGrammarTopicStatus
	q := db.WithContext(ctx).
		Preload("Topic").
		Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	result := q.Find(&rows)
	return rows, result.Error
}

func (r *gormGrammarRepository) UpsertTopicStatus(ctx context.Context, tx *gorm.DB, status *model.UserGrammarTopicStatus) error {
	return tx.WithContext(ctx).Save(status).Error
}
