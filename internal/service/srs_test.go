package service

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSRSService(db *gorm.DB) *SRSService {
	return NewSRSService(
		db,
		repository.NewGormLessonRepository(),
		repository.NewGormSRSRepository(),
		repository.NewGormWordRepository(),
		slog.Default(),
	)
}

func TestBuildSession_CreatesCardsAndIssuesKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)
	words := []*model.Word{
		seedWord(t, db, "harbour", "гавань"),
		seedWord(t, db, "letter", "письмо"),
		seedWord(t, db, "captain", "капитан"),
	}
	seedSliceVocab(t, db, lessons[0].DailyLessonID, words)
	svc := newSRSService(db)

	session, err := svc.BuildSession(ctx, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionKey)
	assert.Equal(t, lessons[0].DailyLessonID, session.LessonID)
	// both directions of every word are new, hence due
	assert.Len(t, session.Deck, 6)
	assert.Equal(t, 6, session.TotalCards)

	for _, card := range session.Deck {
		assert.Equal(t, "new", card.Phase)
		assert.True(t, card.New)
		if card.Direction == model.DirectionEngRus {
			assert.NotContains(t, card.Front, "а", "eng-rus front side is English")
		}
	}
}

func TestBuildSession_OverflowCutsToMostUrgent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)

	words := make([]*model.Word, 0, 30)
	for i := 0; i < 30; i++ {
		words = append(words, seedWord(t, db, fmt.Sprintf("seaword%02d", i), fmt.Sprintf("слово%02d", i)))
	}
	seedSliceVocab(t, db, lessons[0].DailyLessonID, words)
	svc := newSRSService(db)

	// 30 words mean 60 due cards, over the 50-card threshold
	session, err := svc.BuildSession(ctx, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)
	assert.Len(t, session.Deck, 25)
}

func TestGrade_AppliesScheduleAndRejectsReplay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)
	seedSliceVocab(t, db, lessons[0].DailyLessonID, []*model.Word{seedWord(t, db, "harbour", "гавань")})
	svc := newSRSService(db)
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	session, err := svc.BuildSession(ctx, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)
	require.NotEmpty(t, session.Deck)
	cardID := session.Deck[0].CardID

	resp, err := svc.Grade(ctx, user.UserID, model.GradeRequest{
		CardID: cardID, Grade: 4, SessionKey: session.SessionKey,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Interval)
	assert.Equal(t, 1, resp.Repetitions)
	require.NotNil(t, resp.NextDue)
	assert.True(t, resp.NextDue.Equal(now.AddDate(0, 0, 1)))

	card, err := repository.NewGormSRSRepository().FindCardByID(ctx, db, user.UserID, cardID)
	require.NoError(t, err)
	require.NotNil(t, card.FirstReviewed)
	assert.True(t, card.FirstReviewed.Equal(now))

	// the same card cannot be graded twice in one session
	_, err = svc.Grade(ctx, user.UserID, model.GradeRequest{
		CardID: cardID, Grade: 4, SessionKey: session.SessionKey,
	})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestGrade_RejectsForeignAndUnknownSessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)
	seedSliceVocab(t, db, lessons[0].DailyLessonID, []*model.Word{seedWord(t, db, "harbour", "гавань")})
	svc := newSRSService(db)

	session, err := svc.BuildSession(ctx, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)

	_, err = svc.Grade(ctx, user.UserID, model.GradeRequest{
		CardID: session.Deck[0].CardID, Grade: 4, SessionKey: "not-a-session",
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.Grade(ctx, user.UserID, model.GradeRequest{
		CardID: 99999, Grade: 4, SessionKey: session.SessionKey,
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	stranger := seedUser(t, db)
	_, err = svc.Grade(ctx, stranger.UserID, model.GradeRequest{
		CardID: session.Deck[0].CardID, Grade: 4, SessionKey: session.SessionKey,
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAddCard_CreatesBothDirectionsOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	word := seedWord(t, db, "lighthouse", "маяк")
	svc := newSRSService(db)

	resp, err := svc.AddCard(ctx, user.UserID, model.AddCardRequest{WordID: word.WordID, Source: "reading"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CardsCreated)

	_, err = svc.AddCard(ctx, user.UserID, model.AddCardRequest{WordID: word.WordID})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = svc.AddCard(ctx, user.UserID, model.AddCardRequest{WordID: 4242})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
