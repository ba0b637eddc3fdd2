package repository

import (
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDB opens the postgres connection with slog-backed query logging and
// sensible pool settings.
func NewDB(databaseURL string, appLogger *slog.Logger) (*gorm.DB, error) {
	gormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	appLogger.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates all tables. Called at startup and by tests
// against the in-memory sqlite driver.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Book{},
		&model.Chapter{},
		&model.Block{},
		&model.BlockChapter{},
		&model.Word{},
		&model.BlockVocab{},
		&model.Task{},
		&model.BookCourse{},
		&model.BookCourseModule{},
		&model.DailyLesson{},
		&model.SliceVocabulary{},
		&model.BookCourseEnrollment{},
		&model.BookModuleProgress{},
		&model.UserLessonProgress{},
		&model.LessonCompletionEvent{},
		&model.ReadingProgress{},
		&model.UserWord{},
		&model.UserCardDirection{},
		&model.GrammarTopic{},
		&model.GrammarExercise{},
		&model.UserGrammarExercise{},
		&model.UserGrammarTopicStatus{},
	)
}
