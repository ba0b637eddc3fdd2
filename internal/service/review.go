package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"gorm.io/gorm"
)

// ReviewService computes due counts against the user's daily limits (C9).
type ReviewService struct {
	db          *gorm.DB
	srsRepo     repository.SRSRepository
	grammarRepo repository.GrammarRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewReviewService(db *gorm.DB, srsRepo repository.SRSRepository, grammarRepo repository.GrammarRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		db:          db,
		srsRepo:     srsRepo,
		grammarRepo: grammarRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// DueCounts returns how much work is waiting. The raw vocabulary due count is
// clamped by what the user may still do today: new cards count against the
// new-words limit, repeat reviews against the review limit, both measured in
// the user's local day. Counting only the eng-rus direction avoids doubling
// every word.
func (s *ReviewService) DueCounts(ctx context.Context, user *model.User) (*model.DueCountsResponse, error) {
	now := s.now()
	dayStart := user.LocalDayStart(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rawDue, err := s.srsRepo.CountDueCards(ctx, s.db, user.UserID, model.DirectionEngRus, now)
	if err != nil {
		return nil, err
	}
	newToday, err := s.srsRepo.CountReviewedBetween(ctx, s.db, user.UserID, dayStart, dayEnd, true)
	if err != nil {
		return nil, err
	}
	reviewsToday, err := s.srsRepo.CountReviewedBetween(ctx, s.db, user.UserID, dayStart, dayEnd, false)
	if err != nil {
		return nil, err
	}

	remainingNew := clampNonNegative(user.NewWordsPerDay - int(newToday))
	remainingReviews := clampNonNegative(user.ReviewsPerDay - int(reviewsToday))
	wordsDue := int(rawDue)
	if budget := remainingNew + remainingReviews; wordsDue > budget {
		wordsDue = budget
	}

	grammarDue, err := s.grammarRepo.CountDueExercises(ctx, s.db, user.UserID, nil, now)
	if err != nil {
		return nil, err
	}

	return &model.DueCountsResponse{
		WordsDue:     wordsDue,
		GrammarDue:   int(grammarDue),
		NewRemain:    remainingNew,
		ReviewRemain: remainingReviews,
	}, nil
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
