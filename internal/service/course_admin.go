package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nekto007/language-learning-tool/internal/coursegen"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"gorm.io/gorm"
)

// CourseAdminService covers the authoring surface: building courses from books
// and managing their lifecycle flags.
type CourseAdminService struct {
	db         *gorm.DB
	courseRepo repository.CourseRepository
	lessonRepo repository.LessonRepository
	generator  *coursegen.Generator
	logger     *slog.Logger
}

func NewCourseAdminService(db *gorm.DB, courseRepo repository.CourseRepository, lessonRepo repository.LessonRepository, generator *coursegen.Generator, logger *slog.Logger) *CourseAdminService {
	return &CourseAdminService{
		db:         db,
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		generator:  generator,
		logger:     logger,
	}
}

// Create compiles a book into a course and reports what got built.
func (s *CourseAdminService) Create(ctx context.Context, req model.CreateCourseRequest) (*model.CourseBuildResponse, error) {
	opts := coursegen.BuildOptions{}
	if req.Level != "" {
		level := model.Level(req.Level)
		if !level.Valid() {
			return nil, fmt.Errorf("unknown level %q: %w", req.Level, model.ErrInvalidInput)
		}
		opts.Level = &level
	}

	course, err := s.generator.Build(ctx, req.BookID, opts)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		course.Title = req.Title
		if err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.courseRepo.Update(ctx, tx, course)
		}); err != nil {
			return nil, err
		}
	}

	lessons, err := s.countLessons(ctx, course.CourseID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "course built",
		slog.Uint64("course_id", uint64(course.CourseID)),
		slog.Int("modules", course.TotalModules),
		slog.Int("lessons", lessons),
	)
	return &model.CourseBuildResponse{
		Success:  true,
		CourseID: course.CourseID,
		Modules:  course.TotalModules,
		Lessons:  lessons,
	}, nil
}

func (s *CourseAdminService) countLessons(ctx context.Context, courseID uint) (int, error) {
	modules, err := s.courseRepo.FindModules(ctx, s.db, courseID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, module := range modules {
		lessons, err := s.lessonRepo.FindByModule(ctx, s.db, module.ModuleID)
		if err != nil {
			return 0, err
		}
		total += len(lessons)
	}
	return total, nil
}

func (s *CourseAdminService) Get(ctx context.Context, courseID uint) (*model.BookCourse, error) {
	return s.courseRepo.FindByID(ctx, s.db, courseID)
}

func (s *CourseAdminService) List(ctx context.Context, activeOnly bool) ([]*model.BookCourse, error) {
	return s.courseRepo.List(ctx, s.db, activeOnly)
}

// Update patches the editable course fields.
func (s *CourseAdminService) Update(ctx context.Context, courseID uint, req model.UpdateCourseRequest) (*model.BookCourse, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		course.IsFeatured = *req.IsFeatured
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.Update(ctx, tx, course)
	}); err != nil {
		return nil, err
	}
	return course, nil
}

// Bulk applies one action to a list of courses in a single transaction.
// "delete" is a soft deactivate; "delete_permanently" removes the course and
// everything hanging off it.
func (s *CourseAdminService) Bulk(ctx context.Context, req model.BulkCourseActionRequest) (*model.BulkCourseActionResponse, error) {
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		switch req.Action {
		case model.BulkActivate:
			return s.applyFlags(ctx, tx, req.CourseIDs, map[string]interface{}{"is_active": true}, &affected)
		case model.BulkDeactivate, model.BulkDelete:
			return s.applyFlags(ctx, tx, req.CourseIDs, map[string]interface{}{"is_active": false}, &affected)
		case model.BulkFeature:
			return s.applyFlags(ctx, tx, req.CourseIDs, map[string]interface{}{"is_featured": true}, &affected)
		case model.BulkUnfeature:
			return s.applyFlags(ctx, tx, req.CourseIDs, map[string]interface{}{"is_featured": false}, &affected)
		case model.BulkDeletePermanently:
			for _, courseID := range req.CourseIDs {
				if err := s.courseRepo.HardDelete(ctx, tx, courseID); err != nil {
					return err
				}
				affected++
			}
			return nil
		default:
			return fmt.Errorf("unknown bulk action %q: %w", req.Action, model.ErrInvalidInput)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bulk course action",
		slog.String("action", req.Action),
		slog.Int64("affected", affected),
	)
	return &model.BulkCourseActionResponse{Success: true, Affected: int(affected)}, nil
}

func (s *CourseAdminService) applyFlags(ctx context.Context, tx *gorm.DB, courseIDs []uint, updates map[string]interface{}, affected *int64) error {
	n, err := s.courseRepo.UpdateFlags(ctx, tx, courseIDs, updates)
	if err != nil {
		return err
	}
	*affected = n
	return nil
}
