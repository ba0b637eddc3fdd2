package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/srs"

	"gorm.io/gorm"
)

// GrammarService runs the grammar practice loop: topic theory, exercises and
// the Anki-like review state machine.
type GrammarService struct {
	db          *gorm.DB
	grammarRepo repository.GrammarRepository
	userRepo    repository.UserRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewGrammarService(db *gorm.DB, grammarRepo repository.GrammarRepository, userRepo repository.UserRepository, logger *slog.Logger) *GrammarService {
	return &GrammarService{
		db:          db,
		grammarRepo: grammarRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Topic returns one topic with its exercises and the user's standing on it.
func (s *GrammarService) Topic(ctx context.Context, user *model.User, slug string) (*model.GrammarTopicResponse, error) {
	topic, err := s.grammarRepo.FindTopicBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, err
	}
	exercises, err := s.grammarRepo.FindExercisesByTopic(ctx, s.db, topic.TopicID)
	if err != nil {
		return nil, err
	}
	due, err := s.grammarRepo.CountDueExercises(ctx, s.db, user.UserID, &topic.TopicID, s.now())
	if err != nil {
		return nil, err
	}

	status := model.TopicStatusNew
	statuses, err := s.grammarRepo.FindTopicStatuses(ctx, s.db, user.UserID, nil)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st.TopicID == topic.TopicID {
			status = st.Status
			break
		}
	}

	resp := &model.GrammarTopicResponse{
		TopicID:      topic.TopicID,
		Slug:         topic.Slug,
		Title:        topic.Title,
		Level:        string(topic.Level),
		Content:      topic.Content,
		Status:       status,
		DueExercises: int(due),
		Exercises:    make([]model.GrammarExercise, 0, len(exercises)),
	}
	for _, exercise := range exercises {
		resp.Exercises = append(resp.Exercises, *exercise)
	}
	return resp, nil
}

// Answer grades one exercise. A wrong answer buries the card for a day on top
// of the schedule reset.
func (s *GrammarService) Answer(ctx context.Context, user *model.User, req model.AnswerExerciseRequest) (*model.AnswerExerciseResponse, error) {
	if req.Grade < 0 || req.Grade > 5 {
		return nil, fmt.Errorf("grade %d out of range: %w", req.Grade, model.ErrInvalidInput)
	}

	card, err := s.grammarRepo.FindUserExercise(ctx, s.db, user.UserID, req.ExerciseID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		card = &model.UserGrammarExercise{
			UserID:     user.UserID,
			ExerciseID: req.ExerciseID,
			Ease:       srs.DefaultEase,
			State:      model.CardStateNew,
		}
	}

	now := s.now()
	grade := srs.Grade(req.Grade)
	state, nextDue := srs.NextGrammar(srs.GrammarState{
		State:     srs.State{Ease: card.Ease, Interval: card.IntervalDays, Repetitions: card.Repetitions},
		CardState: card.State,
		StepIndex: card.StepIndex,
		Lapses:    card.Lapses,
	}, grade, now)

	card.Ease = state.Ease
	card.IntervalDays = state.Interval
	card.Repetitions = state.Repetitions
	card.State = state.CardState
	card.StepIndex = state.StepIndex
	card.Lapses = state.Lapses
	card.NextReview = &nextDue
	card.LastReviewed = &now
	if card.FirstReviewed == nil {
		card.FirstReviewed = &now
	}
	buried := false
	if !grade.Correct() {
		until := srs.BuryUntil(now)
		card.BuriedUntil = &until
		buried = true
	} else {
		card.BuriedUntil = nil
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.grammarRepo.SaveUserExercise(ctx, tx, card); err != nil {
			return err
		}
		if err := s.advanceTopic(ctx, tx, user, req.ExerciseID, grade.Correct()); err != nil {
			return err
		}
		return s.userRepo.TouchLastActive(ctx, tx, user.UserID, now)
	}); err != nil {
		return nil, err
	}

	return &model.AnswerExerciseResponse{
		Success: true,
		State:   card.State,
		NextDue: card.NextReview,
		Buried:  buried,
		Lapses:  card.Lapses,
	}, nil
}

// xpPerCorrectAnswer is the flat award per correctly answered exercise.
const xpPerCorrectAnswer = 5

// advanceTopic moves the exercise's topic along the status ladder and banks
// XP for a correct answer. The topic reaches mastered once every exercise of
// the topic holds a mature review-phase card.
func (s *GrammarService) advanceTopic(ctx context.Context, tx *gorm.DB, user *model.User, exerciseID uint, correct bool) error {
	var exercise model.GrammarExercise
	if err := tx.WithContext(ctx).First(&exercise, exerciseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("exercise %d: %w", exerciseID, model.ErrNotFound)
		}
		return err
	}

	status := &model.UserGrammarTopicStatus{
		UserID:  user.UserID,
		TopicID: exercise.TopicID,
		Status:  model.TopicStatusPracticing,
	}
	statuses, err := s.grammarRepo.FindTopicStatuses(ctx, tx, user.UserID, nil)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if st.TopicID == exercise.TopicID {
			status = st
			break
		}
	}

	if correct {
		status.XPEarned += xpPerCorrectAnswer
	}
	if status.Status != model.TopicStatusMastered {
		status.Status = model.TopicStatusPracticing
		if correct {
			mastered, err := s.topicMastered(ctx, tx, user, exercise.TopicID)
			if err != nil {
				return err
			}
			if mastered {
				status.Status = model.TopicStatusMastered
			}
		}
	}
	return s.grammarRepo.UpsertTopicStatus(ctx, tx, status)
}

// topicMastered reports whether every exercise of the topic has a mature card.
func (s *GrammarService) topicMastered(ctx context.Context, tx *gorm.DB, user *model.User, topicID uint) (bool, error) {
	exercises, err := s.grammarRepo.FindExercisesByTopic(ctx, tx, topicID)
	if err != nil {
		return false, err
	}
	for _, exercise := range exercises {
		card, err := s.grammarRepo.FindUserExercise(ctx, tx, user.UserID, exercise.ExerciseID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if !card.IsMature() {
			return false, nil
		}
	}
	return true, nil
}

// CompleteTheory records that the user has read the topic's theory sheet.
func (s *GrammarService) CompleteTheory(ctx context.Context, user *model.User, slug string) (*model.TheoryCompleteResponse, error) {
	topic, err := s.grammarRepo.FindTopicBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := &model.UserGrammarTopicStatus{
		UserID:            user.UserID,
		TopicID:           topic.TopicID,
		Status:            model.TopicStatusTheoryCompleted,
		TheoryCompletedAt: &now,
	}
	statuses, err := s.grammarRepo.FindTopicStatuses(ctx, s.db, user.UserID, nil)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st.TopicID == topic.TopicID {
			if st.Status == model.TopicStatusPracticing || st.Status == model.TopicStatusMastered {
				// already past theory, keep the stronger status
				return &model.TheoryCompleteResponse{Success: true, Status: st.Status}, nil
			}
			status = st
			status.Status = model.TopicStatusTheoryCompleted
			status.TheoryCompletedAt = &now
			break
		}
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.grammarRepo.UpsertTopicStatus(ctx, tx, status)
	}); err != nil {
		return nil, err
	}
	return &model.TheoryCompleteResponse{Success: true, Status: status.Status}, nil
}
