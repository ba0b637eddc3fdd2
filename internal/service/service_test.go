package service

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		UserID:         uuid.New(),
		Timezone:       "Europe/Amsterdam",
		NewWordsPerDay: 20,
		ReviewsPerDay:  100,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedWord(t *testing.T, db *gorm.DB, english, russian string) *model.Word {
	t.Helper()
	word := &model.Word{English: english, Russian: russian}
	require.NoError(t, db.Create(word).Error)
	return word
}

// seedCourse creates one active course with a single module holding the given
// lessons. Lessons are created in order on consecutive days, one per day, and
// every lesson but the first carries the scheduled unlock time.
func seedCourse(t *testing.T, db *gorm.DB, lessonTypes []string, schedule func(day int) *time.Time) (*model.BookCourse, *model.BookCourseModule, []*model.DailyLesson) {
	t.Helper()
	book := &model.Book{Title: "Test Book", Level: model.LevelB1}
	require.NoError(t, db.Create(book).Error)
	course := &model.BookCourse{
		BookID:       book.BookID,
		Title:        "Test Course",
		Level:        model.LevelB1,
		IsActive:     true,
		TotalModules: 1,
	}
	require.NoError(t, db.Create(course).Error)
	module := &model.BookCourseModule{
		CourseID:     course.CourseID,
		OrderIndex:   1,
		ModuleNumber: 1,
		Title:        "Module 1",
	}
	require.NoError(t, db.Create(module).Error)

	lessons := make([]*model.DailyLesson, 0, len(lessonTypes))
	for i, lessonType := range lessonTypes {
		lesson := &model.DailyLesson{
			ModuleID:    module.ModuleID,
			DayNumber:   i + 1,
			LessonOrder: 1,
			SliceNumber: i + 1,
			LessonType:  lessonType,
			Title:       fmt.Sprintf("Day %d", i+1),
			SliceText:   "The sailor read the letter.\n\nThe captain waited at the harbour.",
			WordCount:   11,
		}
		if i > 0 && schedule != nil {
			lesson.AvailableAt = schedule(i + 1)
		}
		require.NoError(t, db.Create(lesson).Error)
		lessons = append(lessons, lesson)
	}
	return course, module, lessons
}

func seedSliceVocab(t *testing.T, db *gorm.DB, lessonID uint, words []*model.Word) {
	t.Helper()
	for _, word := range words {
		require.NoError(t, db.Create(&model.SliceVocabulary{
			DailyLessonID:   lessonID,
			WordID:          word.WordID,
			Frequency:       1,
			ContextSentence: "The sailor read the letter.",
		}).Error)
	}
}

func newLessonService(db *gorm.DB) (*LessonService, *AvailabilityService) {
	log := slog.Default()
	lessonRepo := repository.NewGormLessonRepository()
	progressRepo := repository.NewGormProgressRepository()
	availability := NewAvailabilityService(db, lessonRepo, progressRepo, log)
	svc := NewLessonService(
		db,
		lessonRepo,
		progressRepo,
		repository.NewGormCourseRepository(),
		repository.NewGormSRSRepository(),
		repository.NewGormUserRepository("Europe/Amsterdam"),
		availability,
		log,
	)
	return svc, availability
}

func newPlanService(db *gorm.DB) *PlanService {
	log := slog.Default()
	srsRepo := repository.NewGormSRSRepository()
	grammarRepo := repository.NewGormGrammarRepository()
	return NewPlanService(
		db,
		repository.NewGormCourseRepository(),
		repository.NewGormLessonRepository(),
		repository.NewGormProgressRepository(),
		grammarRepo,
		srsRepo,
		repository.NewGormBookRepository(),
		repository.NewGormBlockRepository(),
		NewReviewService(db, srsRepo, grammarRepo, log),
		log,
	)
}
