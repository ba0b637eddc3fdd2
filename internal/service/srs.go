package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// deckOverflowThreshold and deckCutSize implement the large-deck cut: more
	// than 50 due cards collapses the session to the 25 most urgent.
	deckOverflowThreshold = 50
	deckCutSize           = 25

	// sessionTTL bounds how long an issued session key stays valid.
	sessionTTL = 2 * time.Hour
)

// session tracks one issued deck for idempotent grading.
type session struct {
	userID   uuid.UUID
	cards    map[uint]bool
	graded   map[uint]bool
	issuedAt time.Time
}

// SRSService builds decks and applies grades (C8).
type SRSService struct {
	db         *gorm.DB
	lessonRepo repository.LessonRepository
	srsRepo    repository.SRSRepository
	wordRepo   repository.WordRepository
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSRSService(
	db *gorm.DB,
	lessonRepo repository.LessonRepository,
	srsRepo repository.SRSRepository,
	wordRepo repository.WordRepository,
	logger *slog.Logger,
) *SRSService {
	return &SRSService{
		db:         db,
		lessonRepo: lessonRepo,
		srsRepo:    srsRepo,
		wordRepo:   wordRepo,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

// BuildSession assembles the due deck for a lesson's vocabulary and issues a
// session key. Cards missing for the user are created on the spot.
func (s *SRSService) BuildSession(ctx context.Context, userID uuid.UUID, lessonID uint) (*model.SRSSessionResponse, error) {
	vocab, err := s.lessonRepo.FindSliceVocab(ctx, s.db, lessonID)
	if err != nil {
		return nil, err
	}
	wordIDs := make([]uint, 0, len(vocab))
	for _, entry := range vocab {
		wordIDs = append(wordIDs, entry.WordID)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, wordID := range wordIDs {
			if _, err := s.srsRepo.EnsureCards(ctx, tx, userID, wordID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	cards, err := s.srsRepo.FindCardsForWords(ctx, s.db, userID, wordIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	due := cards[:0]
	for _, card := range cards {
		if card.IsDue(now) {
			due = append(due, card)
		}
	}
	due = orderDeck(due)
	if len(due) > deckOverflowThreshold {
		due = due[:deckCutSize]
	}

	deck := make([]model.DeckCard, 0, len(due))
	cardIDs := make(map[uint]bool, len(due))
	for _, card := range due {
		item, ok := deckItem(card)
		if !ok {
			continue
		}
		deck = append(deck, item)
		cardIDs[card.CardID] = true
	}

	key := uuid.NewString()
	s.mu.Lock()
	s.sessions[key] = &session{userID: userID, cards: cardIDs, graded: make(map[uint]bool), issuedAt: now}
	s.pruneLocked(now)
	s.mu.Unlock()

	return &model.SRSSessionResponse{
		Deck:       deck,
		SessionKey: key,
		LessonID:   lessonID,
		TotalCards: len(deck),
	}, nil
}

// orderDeck sorts by (next_review asc nulls first, interval asc).
func orderDeck(cards []*model.UserCardDirection) []*model.UserCardDirection {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		switch {
		case a.NextReview == nil && b.NextReview != nil:
			return true
		case a.NextReview != nil && b.NextReview == nil:
			return false
		case a.NextReview != nil && b.NextReview != nil && !a.NextReview.Equal(*b.NextReview):
			return a.NextReview.Before(*b.NextReview)
		default:
			return a.IntervalDays < b.IntervalDays
		}
	})
	return cards
}

func deckItem(card *model.UserCardDirection) (model.DeckCard, bool) {
	if card.UserWord == nil || card.UserWord.Word == nil {
		return model.DeckCard{}, false
	}
	word := card.UserWord.Word
	front, back := word.English, word.Russian
	if card.Direction == model.DirectionRusEng {
		front, back = word.Russian, word.English
	}
	return model.DeckCard{
		CardID:     card.CardID,
		Front:      front,
		Back:       back,
		Phase:      srs.Phase(srs.State{Ease: card.Ease, Interval: card.IntervalDays, Repetitions: card.Repetitions}),
		New:        card.IsNew(),
		Direction:  card.Direction,
		EaseFactor: card.Ease,
		Interval:   card.IntervalDays,
		AudioURL:   word.AudioURL,
	}, true
}

// Grade applies one review. The session key scopes the submission to an
// issued deck and rejects replays of the same card.
func (s *SRSService) Grade(ctx context.Context, userID uuid.UUID, req model.GradeRequest) (*model.GradeResponse, error) {
	if req.Grade < 0 || req.Grade > 5 {
		return nil, fmt.Errorf("grade %d out of range: %w", req.Grade, model.ErrInvalidInput)
	}
	if err := s.claimCard(userID, req.SessionKey, req.CardID); err != nil {
		return nil, err
	}

	card, err := s.srsRepo.FindCardByID(ctx, s.db, userID, req.CardID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	state, nextDue := srs.Next(
		srs.State{Ease: card.Ease, Interval: card.IntervalDays, Repetitions: card.Repetitions},
		srs.Grade(req.Grade),
		now,
	)
	card.Ease = state.Ease
	card.IntervalDays = state.Interval
	card.Repetitions = state.Repetitions
	card.NextReview = &nextDue
	card.LastReviewed = &now
	if card.FirstReviewed == nil {
		card.FirstReviewed = &now
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.srsRepo.UpdateCard(ctx, tx, card)
	}); err != nil {
		return nil, err
	}

	return &model.GradeResponse{
		Success:     true,
		CardID:      card.CardID,
		NextDue:     card.NextReview,
		Interval:    card.IntervalDays,
		EaseFactor:  card.Ease,
		Repetitions: card.Repetitions,
	}, nil
}

// claimCard validates the session key and marks the card graded exactly once.
func (s *SRSService) claimCard(userID uuid.UUID, key string, cardID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok || sess.userID != userID || s.now().Sub(sess.issuedAt) > sessionTTL {
		return fmt.Errorf("unknown or expired session key: %w", model.ErrInvalidInput)
	}
	if !sess.cards[cardID] {
		return fmt.Errorf("card %d is not part of this session: %w", cardID, model.ErrInvalidInput)
	}
	if sess.graded[cardID] {
		return fmt.Errorf("card %d already graded in this session: %w", cardID, model.ErrConflict)
	}
	sess.graded[cardID] = true
	return nil
}

func (s *SRSService) pruneLocked(now time.Time) {
	for key, sess := range s.sessions {
		if now.Sub(sess.issuedAt) > sessionTTL {
			delete(s.sessions, key)
		}
	}
}

// AddCard manually adds a word to the user's SRS rotation.
func (s *SRSService) AddCard(ctx context.Context, userID uuid.UUID, req model.AddCardRequest) (*model.AddCardResponse, error) {
	if _, err := s.wordRepo.FindByID(ctx, s.db, req.WordID); err != nil {
		return nil, err
	}

	var created int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.srsRepo.EnsureCards(ctx, tx, userID, req.WordID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if created == 0 {
		return nil, fmt.Errorf("word %d is already being learned: %w", req.WordID, model.ErrConflict)
	}

	s.logger.InfoContext(ctx, "cards added",
		slog.String("user_id", userID.String()),
		slog.Uint64("word_id", uint64(req.WordID)),
		slog.String("source", req.Source),
		slog.Int("created", created),
	)
	return &model.AddCardResponse{Success: true, CardsCreated: created}, nil
}
