// Package service holds the application services behind the HTTP handlers:
// lesson runtime, spaced repetition, review accounting, daily planning and
// course administration.
package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/tasks"
	"github.com/nekto007/language-learning-tool/internal/textutil"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// modulePassScore is the minimum module-test score recorded as a pass.
const modulePassScore = 70

type LessonService struct {
	db           *gorm.DB
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
	courseRepo   repository.CourseRepository
	srsRepo      repository.SRSRepository
	userRepo     repository.UserRepository
	availability *AvailabilityService
	logger       *slog.Logger
	now          func() time.Time
}

func NewLessonService(
	db *gorm.DB,
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	courseRepo repository.CourseRepository,
	srsRepo repository.SRSRepository,
	userRepo repository.UserRepository,
	availability *AvailabilityService,
	logger *slog.Logger,
) *LessonService {
	return &LessonService{
		db:           db,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		courseRepo:   courseRepo,
		srsRepo:      srsRepo,
		userRepo:     userRepo,
		availability: availability,
		logger:       logger,
		now:          time.Now,
	}
}

// Content returns the lesson body in the shape the lesson type demands.
func (s *LessonService) Content(ctx context.Context, userID uuid.UUID, lessonID uint) (interface{}, error) {
	lesson, err := s.lessonRepo.FindByID(ctx, s.db, lessonID)
	if err != nil {
		return nil, err
	}
	open, err := s.availability.IsOpen(ctx, userID, lesson)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("lesson %d is not yet available: %w", lessonID, model.ErrForbidden)
	}

	switch {
	case lesson.IsVocabularyType():
		return s.vocabularyContent(ctx, lesson)
	case lesson.LessonType == model.LessonReading || lesson.LessonType == model.LessonSummary:
		return s.readingContent(ctx, lesson)
	default:
		return s.taskContent(lesson)
	}
}

func (s *LessonService) vocabularyContent(ctx context.Context, lesson *model.DailyLesson) (*model.LessonVocabularyResponse, error) {
	vocab, err := s.lessonRepo.FindSliceVocab(ctx, s.db, lesson.DailyLessonID)
	if err != nil {
		return nil, err
	}
	resp := &model.LessonVocabularyResponse{Words: make([]model.VocabWordDTO, 0, len(vocab))}
	for _, entry := range vocab {
		if entry.Word == nil {
			continue
		}
		resp.Words = append(resp.Words, model.VocabWordDTO{
			ID:          entry.WordID,
			Lemma:       entry.Word.English,
			Translation: entry.Word.Russian,
			Example:     entry.ContextSentence,
			AudioURL:    entry.Word.AudioURL,
		})
	}
	return resp, nil
}

// readingContent renders the slice as paragraph HTML and attaches a tooltip
// for every vocabulary lemma present in the text.
func (s *LessonService) readingContent(ctx context.Context, lesson *model.DailyLesson) (*model.LessonReadingResponse, error) {
	var sb strings.Builder
	for _, p := range textutil.SplitParagraphs(lesson.SliceText) {
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(p))
		sb.WriteString("</p>\n")
	}

	tooltips := make(map[string]model.TooltipEntry)
	if lesson.Module != nil && lesson.Module.PrimaryBlockID != nil {
		var vocab []*model.BlockVocab
		err := s.db.WithContext(ctx).
			Preload("Word").
			Where("block_id = ?", *lesson.Module.PrimaryBlockID).
			Find(&vocab).Error
		if err != nil {
			return nil, err
		}
		for _, entry := range vocab {
			word := entry.Word
			if word == nil || !textutil.ContainsWord(lesson.SliceText, word.English) {
				continue
			}
			tooltips[word.English] = model.TooltipEntry{
				ID:            word.WordID,
				Translation:   word.Russian,
				Example:       textutil.FirstSentenceWith(lesson.SliceText, word.English),
				AudioURL:      word.AudioURL,
				Transcription: word.Pronunciation,
				POS:           word.POS,
			}
		}
	}

	return &model.LessonReadingResponse{
		HTML:       sb.String(),
		TooltipMap: tooltips,
		WordCount:  lesson.WordCount,
		Title:      lesson.Title,
	}, nil
}

// taskContent serves the stored payload of task-backed lessons.
func (s *LessonService) taskContent(lesson *model.DailyLesson) (datatypes.JSON, error) {
	if lesson.Task == nil {
		return nil, fmt.Errorf("lesson %d has no task attached: %w", lesson.DailyLessonID, model.ErrNotFound)
	}
	return lesson.Task.Payload, nil
}

// Complete marks the lesson done. Idempotent per (user, lesson): repeats
// bump the attempt counter but keep the first completion time and emit no
// duplicate events.
func (s *LessonService) Complete(ctx context.Context, user *model.User, lessonID uint, req model.CompleteLessonRequest) error {
	lesson, err := s.lessonRepo.FindByID(ctx, s.db, lessonID)
	if err != nil {
		return err
	}
	if lesson.Module == nil {
		return fmt.Errorf("lesson %d has no module: %w", lessonID, model.ErrInternalServer)
	}
	open, err := s.availability.IsOpen(ctx, user.UserID, lesson)
	if err != nil {
		return err
	}
	if !open {
		return fmt.Errorf("lesson %d is not yet available: %w", lessonID, model.ErrForbidden)
	}
	enrollment, err := s.progressRepo.FindEnrollment(ctx, s.db, user.UserID, lesson.Module.CourseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("not enrolled in this course: %w", model.ErrForbidden)
		}
		return err
	}

	now := s.now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		progress, err := s.progressRepo.FindLessonProgress(ctx, tx, user.UserID, lessonID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		if progress == nil {
			progress = &model.UserLessonProgress{
				UserID:        user.UserID,
				DailyLessonID: lessonID,
				EnrollmentID:  enrollment.EnrollmentID,
				StartedAt:     &now,
			}
		}
		progress.Status = model.LessonCompleted
		progress.Attempts++
		progress.TimeSpent += req.TimeSpent
		if req.Score != nil {
			progress.Score = req.Score
		}
		if progress.CompletedAt == nil {
			progress.CompletedAt = &now
		}
		if err := s.progressRepo.UpsertLessonProgress(ctx, tx, progress); err != nil {
			return err
		}

		if err := s.appendEvents(ctx, tx, user.UserID, lesson, req.Score); err != nil {
			return err
		}
		if lesson.IsVocabularyType() {
			if err := s.seedSRS(ctx, tx, user.UserID, lessonID); err != nil {
				return err
			}
		}
		if err := s.recomputeProgress(ctx, tx, user.UserID, enrollment, lesson.Module); err != nil {
			return err
		}
		return s.userRepo.TouchLastActive(ctx, tx, user.UserID, now)
	})
}

func (s *LessonService) appendEvents(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lesson *model.DailyLesson, score *float64) error {
	has, err := s.progressRepo.HasEvent(ctx, tx, userID, lesson.DailyLessonID, model.EventLessonCompleted)
	if err != nil {
		return err
	}
	if !has {
		err := s.progressRepo.AppendEvent(ctx, tx, &model.LessonCompletionEvent{
			UserID:        userID,
			DailyLessonID: lesson.DailyLessonID,
			EventType:     model.EventLessonCompleted,
		})
		if err != nil {
			return err
		}
	}

	if lesson.LessonType == model.LessonModuleTest && score != nil && *score >= modulePassScore {
		has, err := s.progressRepo.HasEvent(ctx, tx, userID, lesson.DailyLessonID, model.EventModuleTestPassed)
		if err != nil {
			return err
		}
		if !has {
			return s.progressRepo.AppendEvent(ctx, tx, &model.LessonCompletionEvent{
				UserID:        userID,
				DailyLessonID: lesson.DailyLessonID,
				EventType:     model.EventModuleTestPassed,
			})
		}
	}
	return nil
}

// seedSRS creates both direction cards for every slice word. Idempotent.
func (s *LessonService) seedSRS(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lessonID uint) error {
	vocab, err := s.lessonRepo.FindSliceVocab(ctx, tx, lessonID)
	if err != nil {
		return err
	}
	for _, entry := range vocab {
		if _, err := s.srsRepo.EnsureCards(ctx, tx, userID, entry.WordID); err != nil {
			return err
		}
	}
	return nil
}

// recomputeProgress refreshes the module row and the enrollment percentage.
func (s *LessonService) recomputeProgress(ctx context.Context, tx *gorm.DB, userID uuid.UUID, enrollment *model.BookCourseEnrollment, module *model.BookCourseModule) error {
	lessons, err := s.lessonRepo.FindByModule(ctx, tx, module.ModuleID)
	if err != nil {
		return err
	}
	completed, err := s.progressRepo.CompletedLessonIDs(ctx, tx, userID, module.ModuleID)
	if err != nil {
		return err
	}

	modulePct := 0.0
	if len(lessons) > 0 {
		modulePct = 100 * float64(len(completed)) / float64(len(lessons))
	}
	status := model.ModuleInProgress
	if len(lessons) > 0 && len(completed) >= len(lessons) {
		status = model.ModuleCompleted
		modulePct = 100
	}
	err = s.progressRepo.UpsertModuleProgress(ctx, tx, &model.BookModuleProgress{
		EnrollmentID: enrollment.EnrollmentID,
		ModuleID:     module.ModuleID,
		Status:       status,
		ProgressPct:  modulePct,
	})
	if err != nil {
		return err
	}

	totalModules, err := s.courseRepo.CountModules(ctx, tx, enrollment.CourseID)
	if err != nil {
		return err
	}
	completedModules, err := s.progressRepo.CountCompletedModules(ctx, tx, enrollment.EnrollmentID)
	if err != nil {
		return err
	}
	if totalModules > 0 {
		enrollment.ProgressPct = 100 * float64(completedModules) / float64(totalModules)
	}
	if enrollment.ProgressPct > 100 {
		enrollment.ProgressPct = 100
	}
	if module.OrderIndex > enrollment.CurrentModule {
		enrollment.CurrentModule = module.OrderIndex
	}
	if completedModules >= totalModules && totalModules > 0 {
		enrollment.Status = model.EnrollmentCompleted
	}
	enrollment.LastActivity = s.now()
	return s.progressRepo.UpdateEnrollment(ctx, tx, enrollment)
}

// Enroll creates the user's enrollment in a course. One per (user, course).
func (s *LessonService) Enroll(ctx context.Context, userID uuid.UUID, courseID uint) (*model.BookCourseEnrollment, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, fmt.Errorf("course %d is not active: %w", courseID, model.ErrForbidden)
	}
	if _, err := s.progressRepo.FindEnrollment(ctx, s.db, userID, courseID); err == nil {
		return nil, fmt.Errorf("already enrolled in course %d: %w", courseID, model.ErrConflict)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	enrollment := &model.BookCourseEnrollment{
		UserID:       userID,
		CourseID:     courseID,
		Status:       model.EnrollmentActive,
		EnrolledAt:   now,
		LastActivity: now,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.progressRepo.CreateEnrollment(ctx, tx, enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("already enrolled in course %d: %w", courseID, model.ErrConflict)
			}
			return err
		}
		return s.userRepo.TouchLastActive(ctx, tx, userID, now)
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Score grades a quiz attempt for the client.
func (s *LessonService) Score(correct, total, timeSpent int) tasks.QuizScore {
	return tasks.CalculateQuizScore(correct, total, timeSpent)
}

// Schedule exports the course's full module and lesson plan.
func (s *LessonService) Schedule(ctx context.Context, courseID uint) (*model.CourseScheduleResponse, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}
	modules, err := s.courseRepo.FindModules(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}

	resp := &model.CourseScheduleResponse{
		CourseID:     course.CourseID,
		Title:        course.Title,
		Level:        string(course.Level),
		TotalModules: course.TotalModules,
		Modules:      make([]model.ModuleScheduleEntry, 0, len(modules)),
	}
	for _, module := range modules {
		lessons, err := s.lessonRepo.FindByModule(ctx, s.db, module.ModuleID)
		if err != nil {
			return nil, err
		}
		entry := model.ModuleScheduleEntry{
			ModuleID:     module.ModuleID,
			ModuleNumber: module.ModuleNumber,
			Title:        module.Title,
			Level:        string(module.EffectiveLevel()),
			Lessons:      make([]model.LessonScheduleEntry, 0, len(lessons)),
		}
		for _, lesson := range lessons {
			entry.Lessons = append(entry.Lessons, model.LessonScheduleEntry{
				LessonID:    lesson.DailyLessonID,
				DayNumber:   lesson.DayNumber,
				LessonOrder: lesson.LessonOrder,
				LessonType:  lesson.LessonType,
				Title:       lesson.Title,
				AvailableAt: lesson.AvailableAt,
			})
		}
		resp.TotalLessons += len(lessons)
		resp.Modules = append(resp.Modules, entry)
	}
	return resp, nil
}
