package service

import (
	"context"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_IsIdempotentPerLesson(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	course, _, lessons := seedCourse(t, db, []string{model.LessonReading, model.LessonGrammar}, nil)
	svc, _ := newLessonService(db)

	firstAt := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return firstAt }
	_, err := svc.Enroll(ctx, user.UserID, course.CourseID)
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, user, lessons[0].DailyLessonID, model.CompleteLessonRequest{TimeSpent: 120}))

	svc.now = func() time.Time { return firstAt.Add(2 * time.Hour) }
	require.NoError(t, svc.Complete(ctx, user, lessons[0].DailyLessonID, model.CompleteLessonRequest{TimeSpent: 60}))

	progressRepo := repository.NewGormProgressRepository()
	progress, err := progressRepo.FindLessonProgress(ctx, db, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonCompleted, progress.Status)
	assert.Equal(t, 2, progress.Attempts)
	assert.Equal(t, 180, progress.TimeSpent)
	require.NotNil(t, progress.CompletedAt)
	assert.True(t, progress.CompletedAt.Equal(firstAt), "first completion time must survive repeats")

	var events int64
	require.NoError(t, db.Model(&model.LessonCompletionEvent{}).
		Where("user_id = ? AND daily_lesson_id = ?", user.UserID, lessons[0].DailyLessonID).
		Count(&events).Error)
	assert.EqualValues(t, 1, events, "repeat completions emit no duplicate events")
}

func TestComplete_RequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonReading}, nil)
	svc, _ := newLessonService(db)

	err := svc.Complete(context.Background(), user, lessons[0].DailyLessonID, model.CompleteLessonRequest{})
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestComplete_UpdatesModuleAndEnrollmentProgress(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	course, module, lessons := seedCourse(t, db, []string{model.LessonReading, model.LessonModuleTest}, nil)
	svc, _ := newLessonService(db)

	_, err := svc.Enroll(ctx, user.UserID, course.CourseID)
	require.NoError(t, err)
	progressRepo := repository.NewGormProgressRepository()

	require.NoError(t, svc.Complete(ctx, user, lessons[0].DailyLessonID, model.CompleteLessonRequest{}))
	enrollment, err := progressRepo.FindEnrollment(ctx, db, user.UserID, course.CourseID)
	require.NoError(t, err)
	moduleProgress, err := progressRepo.FindModuleProgress(ctx, db, enrollment.EnrollmentID, module.ModuleID)
	require.NoError(t, err)
	assert.Equal(t, model.ModuleInProgress, moduleProgress.Status)
	assert.InDelta(t, 50, moduleProgress.ProgressPct, 0.01)
	assert.InDelta(t, 0, enrollment.ProgressPct, 0.01)

	score := 85.0
	require.NoError(t, svc.Complete(ctx, user, lessons[1].DailyLessonID, model.CompleteLessonRequest{Score: &score}))
	enrollment, err = progressRepo.FindEnrollment(ctx, db, user.UserID, course.CourseID)
	require.NoError(t, err)
	moduleProgress, err = progressRepo.FindModuleProgress(ctx, db, enrollment.EnrollmentID, module.ModuleID)
	require.NoError(t, err)
	assert.Equal(t, model.ModuleCompleted, moduleProgress.Status)
	assert.InDelta(t, 100, enrollment.ProgressPct, 0.01)
	assert.Equal(t, model.EnrollmentCompleted, enrollment.Status)

	passed, err := progressRepo.HasEvent(ctx, db, user.UserID, lessons[1].DailyLessonID, model.EventModuleTestPassed)
	require.NoError(t, err)
	assert.True(t, passed, "a 85%% module test records a pass event")
}

func TestComplete_VocabularyLessonSeedsCards(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	course, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)
	words := []*model.Word{
		seedWord(t, db, "harbour", "гавань"),
		seedWord(t, db, "letter", "письмо"),
	}
	seedSliceVocab(t, db, lessons[0].DailyLessonID, words)
	svc, _ := newLessonService(db)

	_, err := svc.Enroll(ctx, user.UserID, course.CourseID)
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, user, lessons[0].DailyLessonID, model.CompleteLessonRequest{}))

	count, err := repository.NewGormSRSRepository().CountUserWords(ctx, db, user.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	var cards int64
	require.NoError(t, db.Model(&model.UserCardDirection{}).
		Joins("JOIN user_words ON user_words.user_word_id = user_card_directions.user_word_id").
		Where("user_words.user_id = ?", user.UserID).
		Count(&cards).Error)
	assert.EqualValues(t, 4, cards, "both directions per word")
}

func TestEnroll_DuplicateIsConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	course, _, _ := seedCourse(t, db, []string{model.LessonReading}, nil)
	svc, _ := newLessonService(db)

	_, err := svc.Enroll(ctx, user.UserID, course.CourseID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, user.UserID, course.CourseID)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestContent_VocabularyLesson(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)
	words := []*model.Word{seedWord(t, db, "harbour", "гавань")}
	seedSliceVocab(t, db, lessons[0].DailyLessonID, words)
	svc, _ := newLessonService(db)

	content, err := svc.Content(ctx, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)
	resp, ok := content.(*model.LessonVocabularyResponse)
	require.True(t, ok)
	require.Len(t, resp.Words, 1)
	assert.Equal(t, "harbour", resp.Words[0].Lemma)
	assert.Equal(t, "гавань", resp.Words[0].Translation)
}

func TestContent_ReadingLessonRendersParagraphs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonReading}, nil)
	svc, _ := newLessonService(db)

	content, err := svc.Content(ctx, user.UserID, lessons[0].DailyLessonID)
	require.NoError(t, err)
	resp, ok := content.(*model.LessonReadingResponse)
	require.True(t, ok)
	assert.Contains(t, resp.HTML, "<p>The sailor read the letter.</p>")
	assert.Contains(t, resp.HTML, "<p>The captain waited at the harbour.</p>")
}
