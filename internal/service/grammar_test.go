package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newGrammarService(db *gorm.DB) *GrammarService {
	return NewGrammarService(
		db,
		repository.NewGormGrammarRepository(),
		repository.NewGormUserRepository("Europe/Amsterdam"),
		slog.Default(),
	)
}

func seedGrammarTopic(t *testing.T, db *gorm.DB, slug string, exercises int) (*model.GrammarTopic, []*model.GrammarExercise) {
	t.Helper()
	topic := &model.GrammarTopic{Slug: slug, Title: "Past Simple", Level: model.LevelA2, IsActive: true}
	require.NoError(t, db.Create(topic).Error)
	rows := make([]*model.GrammarExercise, 0, exercises)
	for i := 0; i < exercises; i++ {
		exercise := &model.GrammarExercise{
			TopicID:      topic.TopicID,
			ExerciseType: "mcq",
			Payload:      datatypes.JSON([]byte(`{"question":"He ___ home.","options":["went","goes"],"correct":0}`)),
		}
		require.NoError(t, db.Create(exercise).Error)
		rows = append(rows, exercise)
	}
	return topic, rows
}

func TestGrammarTopic_ReturnsExercisesAndStatus(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	_, _ = seedGrammarTopic(t, db, "past_simple", 3)
	svc := newGrammarService(db)

	resp, err := svc.Topic(context.Background(), user, "past_simple")
	require.NoError(t, err)
	assert.Equal(t, "past_simple", resp.Slug)
	assert.Equal(t, model.TopicStatusNew, resp.Status)
	assert.Len(t, resp.Exercises, 3)
	assert.Equal(t, 0, resp.DueExercises, "untouched exercises have no user cards yet")
}

func TestAnswer_CorrectGraduatesThroughLearning(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, exercises := seedGrammarTopic(t, db, "past_simple", 1)
	svc := newGrammarService(db)
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// first correct answer: new -> learning
	resp, err := svc.Answer(ctx, user, model.AnswerExerciseRequest{ExerciseID: exercises[0].ExerciseID, Grade: 4})
	require.NoError(t, err)
	assert.Equal(t, model.CardStateLearning, resp.State)
	assert.False(t, resp.Buried)

	// second correct answer graduates to review
	resp, err = svc.Answer(ctx, user, model.AnswerExerciseRequest{ExerciseID: exercises[0].ExerciseID, Grade: 4})
	require.NoError(t, err)
	assert.Equal(t, model.CardStateReview, resp.State)

	// the topic is now marked practicing
	topicResp, err := svc.Topic(ctx, user, "past_simple")
	require.NoError(t, err)
	assert.Equal(t, model.TopicStatusPracticing, topicResp.Status)
}

func TestAnswer_WrongAnswerBuriesForADay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, exercises := seedGrammarTopic(t, db, "past_simple", 1)
	svc := newGrammarService(db)
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	resp, err := svc.Answer(ctx, user, model.AnswerExerciseRequest{ExerciseID: exercises[0].ExerciseID, Grade: 1})
	require.NoError(t, err)
	assert.True(t, resp.Buried)
	assert.Equal(t, model.CardStateRelearning, resp.State)
	assert.Equal(t, 1, resp.Lapses)

	card, err := repository.NewGormGrammarRepository().FindUserExercise(ctx, db, user.UserID, exercises[0].ExerciseID)
	require.NoError(t, err)
	require.NotNil(t, card.BuriedUntil)
	assert.True(t, card.BuriedUntil.Equal(now.Add(24*time.Hour)))
	assert.False(t, card.IsDue(now), "a buried card is not due")
	assert.True(t, card.IsDue(now.Add(25*time.Hour)))

	// a wrong answer still marks the topic practicing but earns nothing
	topicResp, err := svc.Topic(ctx, user, "past_simple")
	require.NoError(t, err)
	assert.Equal(t, model.TopicStatusPracticing, topicResp.Status)
	var st model.UserGrammarTopicStatus
	require.NoError(t, db.Where("user_id = ?", user.UserID).First(&st).Error)
	assert.Zero(t, st.XPEarned)
}

func TestAnswer_MatureTopicBecomesMastered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	topic, exercises := seedGrammarTopic(t, db, "past_simple", 2)
	svc := newGrammarService(db)
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// one exercise already sits mature in review, the other is due today
	// with a three-week interval
	due := now.Add(-time.Hour)
	require.NoError(t, db.Create(&model.UserGrammarExercise{
		UserID: user.UserID, ExerciseID: exercises[0].ExerciseID,
		Ease: 2.5, IntervalDays: 30, Repetitions: 6,
		State: model.CardStateReview, NextReview: &due,
	}).Error)
	require.NoError(t, db.Create(&model.UserGrammarExercise{
		UserID: user.UserID, ExerciseID: exercises[1].ExerciseID,
		Ease: 2.5, IntervalDays: 21, Repetitions: 5,
		State: model.CardStateReview, NextReview: &due,
	}).Error)

	resp, err := svc.Answer(ctx, user, model.AnswerExerciseRequest{ExerciseID: exercises[1].ExerciseID, Grade: 4})
	require.NoError(t, err)
	assert.Equal(t, model.CardStateReview, resp.State)

	var st model.UserGrammarTopicStatus
	require.NoError(t, db.Where("user_id = ? AND topic_id = ?", user.UserID, topic.TopicID).First(&st).Error)
	assert.Equal(t, model.TopicStatusMastered, st.Status)
	assert.Equal(t, xpPerCorrectAnswer, st.XPEarned)
}

func TestAnswer_UnknownExerciseIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	svc := newGrammarService(db)

	_, err := svc.Answer(context.Background(), user, model.AnswerExerciseRequest{ExerciseID: 777, Grade: 4})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCompleteTheory_DoesNotDowngradePracticing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, exercises := seedGrammarTopic(t, db, "past_simple", 1)
	svc := newGrammarService(db)

	resp, err := svc.CompleteTheory(ctx, user, "past_simple")
	require.NoError(t, err)
	assert.Equal(t, model.TopicStatusTheoryCompleted, resp.Status)

	_, err = svc.Answer(ctx, user, model.AnswerExerciseRequest{ExerciseID: exercises[0].ExerciseID, Grade: 4})
	require.NoError(t, err)

	resp, err = svc.CompleteTheory(ctx, user, "past_simple")
	require.NoError(t, err)
	assert.Equal(t, model.TopicStatusPracticing, resp.Status, "practicing outranks theory completion")
}
