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

type ProgressRepository interface {
	CreateEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.BookCourseEnrollment) error
	FindEnrollment(ctx context.Context, db *gorm.DB, userID uuid.UUID, courseID uint) (*model.BookCourseEnrollment, error)
	FindActiveEnrollment(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.BookCourseEnrollment, error)
	UpdateEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.BookCourseEnrollment) error

	UpsertModuleProgress(ctx context.Context, tx *gorm.DB, progress *model.BookModuleProgress) error
	FindModuleProgress(ctx context.Context, db *gorm.DB, enrollmentID, moduleID uint) (*model.BookModuleProgress, error)
	CountCompletedModules(ctx context.Context, db *gorm.DB, enrollmentID uint) (int64, error)

	FindLessonProgress(ctx context.Context, db *gorm.DB, userID uuid.UUID, lessonID uint) (*model.UserLessonProgress, error)
	UpsertLessonProgress(ctx context.Context, tx *gorm.DB, progress *model.UserLessonProgress) error
	LastCompletedLesson(ctx context.Context, db *gorm.DB, userID uuid.UUID, enrollmentID uint) (*model.UserLessonProgress, error)
	CountLessonProgress(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
	CompletedLessonIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID, moduleID uint) (map[uint]bool, error)
	HasCompletionOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error)

	AppendEvent(ctx context.Context, tx *gorm.DB, event *model.LessonCompletionEvent) error
	HasEvent(ctx context.Context, db *gorm.DB, userID uuid.UUID, lessonID uint, eventType string) (bool, error)

	UpsertReadingProgress(ctx context.Context, tx *gorm.DB, progress *model.ReadingProgress) error
	LastReadBook(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.ReadingProgress, error)
	CountReadBooks(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
	HasReadingOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error)
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) CreateEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.BookCourseEnrollment) error {
	return tx.WithContext(ctx).Create(enrollment).Error
}

func (r *gormProgressRepository) FindEnrollment(ctx context.Context, db *gorm.DB, userID uuid.UUID, courseID uint) (*model.BookCourseEnrollment, error) {
	var enrollment model.BookCourseEnrollment
	result := db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &enrollment, nil
}

// FindActiveEnrollment returns the user's most recently active enrollment.
func (r *gormProgressRepository) FindActiveEnrollment(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.BookCourseEnrollment, error) {
	var enrollment model.BookCourseEnrollment
	result := db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND status = ?", userID, model.EnrollmentActive).
		Order("last_activity DESC").
		First(&enrollment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &enrollment, nil
}

func (r *gormProgressRepository) UpdateEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.BookCourseEnrollment) error {
	return tx.WithContext(ctx).Save(enrollment).Error
}

func (r *gormProgressRepository) UpsertModuleProgress(ctx context.Context, tx *gorm.DB, progress *model.BookModuleProgress) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "progress_pct", "lessons_completed", "lesson_scores"}),
		}).
		Create(progress).Error
}

func (r *gormProgressRepository) FindModuleProgress(ctx context.Context, db *gorm.DB, enrollmentID, moduleID uint) (*model.BookModuleProgress, error) {
	var progress model.BookModuleProgress
	result := db.WithContext(ctx).
		Where("enrollment_id = ? AND module_id = ?", enrollmentID, moduleID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &progress, nil
}

func (r *gormProgressRepository) CountCompletedModules(ctx context.Context, db *gorm.DB, enrollmentID uint) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.BookModuleProgress{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, model.ModuleCompleted).
		Count(&count)
	return count, result.Error
}

func (r *gormProgressRepository) FindLessonProgress(ctx context.Context, db *gorm.DB, userID uuid.UUID, lessonID uint) (*model.UserLessonProgress, error) {
	var progress model.UserLessonProgress
	result := db.WithContext(ctx).
		Where("user_id = ? AND daily_lesson_id = ?", userID, lessonID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &progress, nil
}

func (r *gormProgressRepository) UpsertLessonProgress(ctx context.Context, tx *gorm.DB, progress *model.UserLessonProgress) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "daily_lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "score", "time_spent", "started_at", "completed_at", "attempts",
			}),
		}).
		Create(progress).Error
}

// LastCompletedLesson returns the user's most advanced completed lesson in the
// enrollment, by module order then lesson order.
func (r *gormProgressRepository) LastCompletedLesson(ctx context.Context, db *gorm.DB, userID uuid.UUID, enrollmentID uint) (*model.UserLessonProgress, error) {
	var progress model.UserLessonProgress
	result := db.WithContext(ctx).
		Preload("DailyLesson").
		Preload("DailyLesson.Module").
		Joins("JOIN daily_lessons ON daily_lessons.daily_lesson_id = user_lesson_progress.daily_lesson_id").
		Joins("JOIN book_course_modules ON book_course_modules.module_id = daily_lessons.module_id").
		Where("user_lesson_progress.user_id = ? AND user_lesson_progress.enrollment_id = ? AND user_lesson_progress.status = ?",
			userID, enrollmentID, model.LessonCompleted).
		Order("book_course_modules.order_index DESC, daily_lessons.day_number DESC, daily_lessons.lesson_order DESC").
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &progress, nil
}

func (r *gormProgressRepository) CountLessonProgress(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.UserLessonProgress{}).
		Where("user_id = ?", userID).
		Count(&count)
	return count, result.Error
}

func (r *gormProgressRepository) CompletedLessonIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID, moduleID uint) (map[uint]bool, error) {
	var ids []uint
	result := db.WithContext(ctx).
		Model(&model.UserLessonProgress{}).
		Joins("JOIN daily_lessons ON daily_lessons.daily_lesson_id = user_lesson_progress.daily_lesson_id").
		Where("user_lesson_progress.user_id = ? AND daily_lessons.module_id = ? AND user_lesson_progress.status = ?",
			userID, moduleID, model.LessonCompleted).
		Pluck("user_lesson_progress.daily_lesson_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	completed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

func (r *gormProgressRepository) HasCompletionOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.UserLessonProgress{}).
		Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, from, to).
		Count(&count)
	return count > 0, result.Error
}

func (r *gormProgressRepository) AppendEvent(ctx context.Context, tx *gorm.DB, event *model.LessonCompletionEvent) error {
	return tx.WithContext(ctx).Create(event).Error
}

func (r *gormProgressRepository) HasEvent(ctx context.Context, db *gorm.DB, userID uuid.UUID, lessonID uint, eventType string) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.LessonCompletionEvent{}).
		Where("user_id = ? AND daily_lesson_id = ? AND event_type = ?", userID, lessonID, eventType).
		Count(&count)
	return count > 0, result.Error
}

func (r *gormProgressRepository) UpsertReadingProgress(ctx context.Context, tx *gorm.DB, progress *model.ReadingProgress) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"offset_pct", "updated_at"}),
		}).
		Create(progress).Error
}

func (r *gormProgressRepository) LastReadBook(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.ReadingProgress, error) {
	var progress model.ReadingProgress
	result := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &progress, nil
}

func (r *gormProgressRepository) CountReadBooks(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.ReadingProgress{}).
		Where("user_id = ?", userID).
		Distinct("book_id").
		Count(&count)
	return count, result.Error
}

func (r *gormProgressRepository) HasReadingOn(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.ReadingProgress{}).
		Where("user_id = ? AND updated_at >= ? AND updated_at < ?", userID, from, to).
		Count(&count)
	return count > 0, result.Error
}
