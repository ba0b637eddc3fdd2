package repository

import (
	"context"
	"errors"

	"github.com/nekto007/language-learning-tool/internal/model"

	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *model.BookCourse) error
	FindByID(ctx context.Context, db *gorm.DB, courseID uint) (*model.BookCourse, error)
	FindByBook(ctx context.Context, db *gorm.DB, bookID uint) (*model.BookCourse, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*model.BookCourse, error)
	Update(ctx context.Context, tx *gorm.DB, course *model.BookCourse) error
	UpdateFlags(ctx context.Context, tx *gorm.DB, courseIDs []uint, updates map[string]interface{}) (int64, error)
	HardDelete(ctx context.Context, tx *gorm.DB, courseID uint) error

	CreateModule(ctx context.Context, tx *gorm.DB, module *model.BookCourseModule) error
	FindModules(ctx context.Context, db *gorm.DB, courseID uint) ([]*model.BookCourseModule, error)
	FindModuleByID(ctx context.Context, db *gorm.DB, moduleID uint) (*model.BookCourseModule, error)
	FindModuleByOrder(ctx context.Context, db *gorm.DB, courseID uint, orderIndex int) (*model.BookCourseModule, error)
	CountModules(ctx context.Context, db *gorm.DB, courseID uint) (int64, error)
}

type gormCourseRepository struct{}

func NewGormCourseRepository() CourseRepository {
	return &gormCourseRepository{}
}

func (r *gormCourseRepository) Create(ctx context.Context, tx *gorm.DB, course *model.BookCourse) error {
	return tx.WithContext(ctx).Create(course).Error
}

func (r *gormCourseRepository) FindByID(ctx context.Context, db *gorm.DB, courseID uint) (*model.BookCourse, error) {
	var course model.BookCourse
	result := db.WithContext(ctx).First(&course, courseID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &course, nil
}

func (r *gormCourseRepository) FindByBook(ctx context.Context, db *gorm.DB, bookID uint) (*model.BookCourse, error) {
	var course model.BookCourse
	result := db.WithContext(ctx).Where("book_id = ?", bookID).First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &course, nil
}

func (r *gormCourseRepository) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*model.BookCourse, error) {
	var courses []*model.BookCourse
	q := db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	result := q.Find(&courses)
	return courses, result.Error
}

func (r *gormCourseRepository) Update(ctx context.Context, tx *gorm.DB, course *model.BookCourse) error {
	return tx.WithContext(ctx).Save(course).Error
}

// UpdateFlags applies the same column updates to a batch of courses, used by
// the bulk admin actions.
func (r *gormCourseRepository) UpdateFlags(ctx context.Context, tx *gorm.DB, courseIDs []uint, updates map[string]interface{}) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.BookCourse{}).
		Where("course_id IN ?", courseIDs).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// HardDelete removes a course and everything beneath it, in dependency order:
// UserLessonProgress -> SliceVocabulary -> DailyLesson -> BookModuleProgress
// -> Enrollment -> Module -> Course. Standalone tasks owned by the deleted
// lessons go last. Runs inside the caller's transaction; any failure reverts
// all steps.
func (r *gormCourseRepository) HardDelete(ctx context.Context, tx *gorm.DB, courseID uint) error {
	var moduleIDs []uint
	if err := tx.WithContext(ctx).
		Model(&model.BookCourseModule{}).
		Where("course_id = ?", courseID).
		Pluck("module_id", &moduleIDs).Error; err != nil {
		return err
	}

	var lessonIDs []uint
	var standaloneTaskIDs []uint
	if len(moduleIDs) > 0 {
		if err := tx.WithContext(ctx).
			Model(&model.DailyLesson{}).
			Where("module_id IN ?", moduleIDs).
			Pluck("daily_lesson_id", &lessonIDs).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Model(&model.DailyLesson{}).
			Joins("JOIN tasks ON tasks.task_id = daily_lessons.task_id AND tasks.block_id IS NULL").
			Where("daily_lessons.module_id IN ?", moduleIDs).
			Pluck("daily_lessons.task_id", &standaloneTaskIDs).Error; err != nil {
			return err
		}
	}

	if len(lessonIDs) > 0 {
		if err := tx.WithContext(ctx).Where("daily_lesson_id IN ?", lessonIDs).Delete(&model.UserLessonProgress{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("daily_lesson_id IN ?", lessonIDs).Delete(&model.LessonCompletionEvent{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("daily_lesson_id IN ?", lessonIDs).Delete(&model.SliceVocabulary{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("daily_lesson_id IN ?", lessonIDs).Delete(&model.DailyLesson{}).Error; err != nil {
			return err
		}
	}

	var enrollmentIDs []uint
	if err := tx.WithContext(ctx).
		Model(&model.BookCourseEnrollment{}).
		Where("course_id = ?", courseID).
		Pluck("enrollment_id", &enrollmentIDs).Error; err != nil {
		return err
	}
	if len(enrollmentIDs) > 0 {
		if err := tx.WithContext(ctx).Where("enrollment_id IN ?", enrollmentIDs).Delete(&model.BookModuleProgress{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("enrollment_id IN ?", enrollmentIDs).Delete(&model.BookCourseEnrollment{}).Error; err != nil {
			return err
		}
	}

	if len(moduleIDs) > 0 {
		if err := tx.WithContext(ctx).Where("module_id IN ?", moduleIDs).Delete(&model.BookCourseModule{}).Error; err != nil {
			return err
		}
	}
	if len(standaloneTaskIDs) > 0 {
		if err := tx.WithContext(ctx).Where("task_id IN ?", standaloneTaskIDs).Delete(&model.Task{}).Error; err != nil {
			return err
		}
	}
	return tx.WithContext(ctx).Delete(&model.BookCourse{}, courseID).Error
}

func (r *gormCourseRepository) CreateModule(ctx context.Context, tx *gorm.DB, module *model.BookCourseModule) error {
	return tx.WithContext(ctx).Create(module).Error
}

func (r *gormCourseRepository) FindModules(ctx context.Context, db *gorm.DB, courseID uint) ([]*model.BookCourseModule, error) {
	var modules []*model.BookCourseModule
	result := db.WithContext(ctx).
		Preload("Course").
		Where("course_id = ?", courseID).
		Order("order_index ASC").
		Find(&modules)
	return modules, result.Error
}

func (r *gormCourseRepository) FindModuleByID(ctx context.Context, db *gorm.DB, moduleID uint) (*model.BookCourseModule, error) {
	var module model.BookCourseModule
	result := db.WithContext(ctx).Preload("Course").First(&module, moduleID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &module, nil
}

func (r *gormCourseRepository) FindModuleByOrder(ctx context.Context, db *gorm.DB, courseID uint, orderIndex int) (*model.BookCourseModule, error) {
	var module model.BookCourseModule
	result := db.WithContext(ctx).
		Preload("Course").
		Where("course_id = ? AND order_index = ?", courseID, orderIndex).
		First(&module)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &module, nil
}

func (r *gormCourseRepository) CountModules(ctx context.Context, db *gorm.DB, courseID uint) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.BookCourseModule{}).
		Where("course_id = ?", courseID).
		Count(&count)
	return count, result.Error
}
