package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *model.DailyLesson) error
	FindByID(ctx context.Context, db *gorm.DB, lessonID uint) (*model.DailyLesson, error)
	FindByModule(ctx context.Context, db *gorm.DB, moduleID uint) ([]*model.DailyLesson, error)
	FindPrevious(ctx context.Context, db *gorm.DB, lesson *model.DailyLesson) (*model.DailyLesson, error)
	FindNextAfter(ctx context.Context, db *gorm.DB, lesson *model.DailyLesson) (*model.DailyLesson, error)
	FirstOfModule(ctx context.Context, db *gorm.DB, moduleID uint) (*model.DailyLesson, error)
	UpdateAvailableAt(ctx context.Context, tx *gorm.DB, lessonID uint, availableAt *time.Time) error
	MinPendingAvailableAt(ctx context.Context, db *gorm.DB, moduleID uint, userID uuid.UUID, now time.Time) (*time.Time, error)

	ReplaceSliceVocab(ctx context.Context, tx *gorm.DB, lessonID uint, entries []*model.SliceVocabulary) error
	FindSliceVocab(ctx context.Context, db *gorm.DB, lessonID uint) ([]*model.SliceVocabulary, error)
}

type gormLessonRepository struct{}

func NewGormLessonRepository() LessonRepository {
	return &gormLessonRepository{}
}

func (r *gormLessonRepository) Create(ctx context.Context, tx *gorm.DB, lesson *model.DailyLesson) error {
	return tx.WithContext(ctx).Create(lesson).Error
}

func (r *gormLessonRepository) FindByID(ctx context.Context, db *gorm.DB, lessonID uint) (*model.DailyLesson, error) {
	var lesson model.DailyLesson
	result := db.WithContext(ctx).
		Preload("Module").
		Preload("Module.Course").
		Preload("Task").
		First(&lesson, lessonID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &lesson, nil
}

func (r *gormLessonRepository) FindByModule(ctx context.Context, db *gorm.DB, moduleID uint) ([]*model.DailyLesson, error) {
	var lessons []*model.DailyLesson
	result := db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("day_number ASC, lesson_order ASC").
		Find(&lessons)
	return lessons, result.Error
}

// FindPrevious returns the lesson immediately before the given one in the
// module's (day_number, lesson_order) order, or ErrNotFound for the first.
func (r *gormLessonRepository) FindPrevious(ctx context.Context, db *gorm.DB, lesson *model.DailyLesson) (*model.DailyLesson, error) {
	var prev model.DailyLesson
	result := db.WithContext(ctx).
		Where("module_id = ?", lesson.ModuleID).
		Where("(day_number < ?) OR (day_number = ? AND lesson_order < ?)",
			lesson.DayNumber, lesson.DayNumber, lesson.LessonOrder).
		Order("day_number DESC, lesson_order DESC").
		First(&prev)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &prev, nil
}

// FindNextAfter returns the lesson immediately after the given one within the
// same module, or ErrNotFound at the module's end.
func (r *gormLessonRepository) FindNextAfter(ctx context.Context, db *gorm.DB, lesson *model.DailyLesson) (*model.DailyLesson, error) {
	var next model.DailyLesson
	result := db.WithContext(ctx).
		Where("module_id = ?", lesson.ModuleID).
		Where("(day_number > ?) OR (day_number = ? AND lesson_order > ?)",
			lesson.DayNumber, lesson.DayNumber, lesson.LessonOrder).
		Order("day_number ASC, lesson_order ASC").
		First(&next)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &next, nil
}

func (r *gormLessonRepository) FirstOfModule(ctx context.Context, db *gorm.DB, moduleID uint) (*model.DailyLesson, error) {
	var lesson model.DailyLesson
	result := db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("day_number ASC, lesson_order ASC").
		First(&lesson)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &lesson, nil
}

func (r *gormLessonRepository) UpdateAvailableAt(ctx context.Context, tx *gorm.DB, lessonID uint, availableAt *time.Time) error {
	return tx.WithContext(ctx).
		Model(&model.DailyLesson{}).
		Where("daily_lesson_id = ?", lessonID).
		Update("available_at", availableAt).Error
}

// MinPendingAvailableAt returns the smallest available_at among the module's
// lessons that are not yet open at now, ignoring lessons already available.
func (r *gormLessonRepository) MinPendingAvailableAt(ctx context.Context, db *gorm.DB, moduleID uint, userID uuid.UUID, now time.Time) (*time.Time, error) {
	var lessons []*model.DailyLesson
	result := db.WithContext(ctx).
		Where("module_id = ? AND available_at IS NOT NULL AND available_at > ?", moduleID, now).
		Order("available_at ASC").
		Limit(1).
		Find(&lessons)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(lessons) == 0 {
		return nil, nil
	}
	return lessons[0].AvailableAt, nil
}

func (r *gormLessonRepository) ReplaceSliceVocab(ctx context.Context, tx *gorm.DB, lessonID uint, entries []*model.SliceVocabulary) error {
	if err := tx.WithContext(ctx).Where("daily_lesson_id = ?", lessonID).Delete(&model.SliceVocabulary{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&entries).Error
}

func (r *gormLessonRepository) FindSliceVocab(ctx context.Context, db *gorm.DB, lessonID uint) ([]*model.SliceVocabulary, error) {
	var vocab []*model.SliceVocabulary
	result := db.WithContext(ctx).
		Preload("Word").
		Where("daily_lesson_id = ?", lessonID).
		Order("frequency DESC").
		Find(&vocab)
	return vocab, result.Error
}
