package service

import (
	"context"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOpen_NilScheduleIsAlwaysOpen(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary}, nil)
	_, availability := newLessonService(db)

	open, err := availability.IsOpen(context.Background(), user.UserID, lessons[0])
	require.NoError(t, err)
	assert.True(t, open)
}

func TestIsOpen_ScheduledFutureStaysClosed(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	schedule := func(day int) *time.Time {
		at := base.AddDate(0, 0, day-1)
		return &at
	}
	_, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary, model.LessonReading}, schedule)
	_, availability := newLessonService(db)
	availability.now = func() time.Time { return base }

	open, err := availability.IsOpen(context.Background(), user.UserID, lessons[1])
	require.NoError(t, err)
	assert.False(t, open, "previous lesson not completed and schedule not reached")
}

func TestIsOpen_EarlyUnlockAfterPreviousCompletion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db)
	completedAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	// the second lesson is scheduled three days out
	schedule := func(day int) *time.Time {
		at := completedAt.AddDate(0, 0, 3)
		return &at
	}
	course, _, lessons := seedCourse(t, db, []string{model.LessonVocabulary, model.LessonReading}, schedule)
	svc, availability := newLessonService(db)

	svc.now = func() time.Time { return completedAt }
	_, err := svc.Enroll(ctx, user.UserID, course.CourseID)
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, user, lessons[0].DailyLessonID, model.CompleteLessonRequest{}))

	// 23 hours later the gate is still shut
	availability.now = func() time.Time { return completedAt.Add(23 * time.Hour) }
	open, err := availability.IsOpen(ctx, user.UserID, lessons[1])
	require.NoError(t, err)
	assert.False(t, open)

	// at 24 hours it opens and the schedule is pulled forward
	availability.now = func() time.Time { return completedAt.Add(24 * time.Hour) }
	open, err = availability.IsOpen(ctx, user.UserID, lessons[1])
	require.NoError(t, err)
	assert.True(t, open)
	require.NotNil(t, lessons[1].AvailableAt)
	assert.True(t, lessons[1].AvailableAt.Equal(completedAt.Add(24*time.Hour)),
		"available_at should be written back to the unlock time")
}

func TestNextUnlockTime(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	schedule := func(day int) *time.Time {
		at := now.AddDate(0, 0, day-1)
		return &at
	}
	_, module, _ := seedCourse(t, db, []string{model.LessonVocabulary, model.LessonReading, model.LessonGrammar}, schedule)
	_, availability := newLessonService(db)
	availability.now = func() time.Time { return now }

	next, err := availability.NextUnlockTime(context.Background(), user.UserID, module.ModuleID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(now.AddDate(0, 0, 1)))
}
