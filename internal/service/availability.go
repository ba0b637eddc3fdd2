package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// earlyUnlockAfter opens a scheduled lesson once the previous one has been
// completed for this long, regardless of the wall-clock schedule.
const earlyUnlockAfter = 24 * time.Hour

// AvailabilityService decides whether a lesson is open for a user and when
// the next one unlocks.
type AvailabilityService struct {
	db           *gorm.DB
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewAvailabilityService(db *gorm.DB, lessonRepo repository.LessonRepository, progressRepo repository.ProgressRepository, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{
		db:           db,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// IsOpen reports whether the lesson is available to the user. Completing the
// previous lesson unlocks the next one 24 hours later even when its schedule
// says otherwise; the earlier time is written back so later reads are cheap.
func (s *AvailabilityService) IsOpen(ctx context.Context, userID uuid.UUID, lesson *model.DailyLesson) (bool, error) {
	if lesson.AvailableAt == nil {
		return true, nil
	}
	now := s.now()
	if !now.Before(*lesson.AvailableAt) {
		return true, nil
	}

	prev, err := s.lessonRepo.FindPrevious(ctx, s.db, lesson)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	progress, err := s.progressRepo.FindLessonProgress(ctx, s.db, userID, prev.DailyLessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if progress.Status != model.LessonCompleted || progress.CompletedAt == nil {
		return false, nil
	}

	unlock := progress.CompletedAt.Add(earlyUnlockAfter)
	if now.Before(unlock) {
		return false, nil
	}
	if unlock.Before(*lesson.AvailableAt) {
		if err := s.lessonRepo.UpdateAvailableAt(ctx, s.db, lesson.DailyLessonID, &unlock); err != nil {
			s.logger.WarnContext(ctx, "early unlock writeback failed",
				slog.Uint64("lesson_id", uint64(lesson.DailyLessonID)), slog.Any("error", err))
		} else {
			lesson.AvailableAt = &unlock
		}
	}
	return true, nil
}

// NextUnlockTime returns the smallest pending available_at in the module, or
// nil when everything is already open.
func (s *AvailabilityService) NextUnlockTime(ctx context.Context, userID uuid.UUID, moduleID uint) (*time.Time, error) {
	return s.lessonRepo.MinPendingAvailableAt(ctx, s.db, moduleID, userID, s.now())
}
