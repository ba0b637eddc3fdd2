package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Enrollment status values.
const (
	EnrollmentActive    = "active"
	EnrollmentPaused    = "paused"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// BookCourseEnrollment ties a user to a course. Exactly one per (user, course).
type BookCourseEnrollment struct {
	EnrollmentID  uint      `gorm:"primaryKey" json:"enrollment_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID      uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"course_id"`
	Status        string    `gorm:"not null;default:'active'" json:"status"`
	ProgressPct   float64   `gorm:"not null;default:0" json:"progress_pct"`
	CurrentModule int       `gorm:"not null;default:1" json:"current_module"`
	EnrolledAt    time.Time `json:"enrolled_at"`
	LastActivity  time.Time `json:"last_activity"`

	Course *BookCourse `gorm:"foreignKey:CourseID;references:CourseID" json:"-"`
}

func (BookCourseEnrollment) TableName() string { return "book_course_enrollments" }

// Module progress status values.
const (
	ModuleNotStarted = "not_started"
	ModuleInProgress = "in_progress"
	ModuleCompleted  = "completed"
)

// BookModuleProgress aggregates a user's standing in one module.
type BookModuleProgress struct {
	ModuleProgressID uint           `gorm:"primaryKey" json:"module_progress_id"`
	EnrollmentID     uint           `gorm:"not null;uniqueIndex:idx_enrollment_module" json:"enrollment_id"`
	ModuleID         uint           `gorm:"not null;uniqueIndex:idx_enrollment_module" json:"module_id"`
	Status           string         `gorm:"not null;default:'not_started'" json:"status"`
	ProgressPct      float64        `gorm:"not null;default:0" json:"progress_pct"`
	LessonsCompleted datatypes.JSON `json:"lessons_completed,omitempty"`
	LessonScores     datatypes.JSON `json:"lesson_scores,omitempty"`
}

func (BookModuleProgress) TableName() string { return "book_module_progress" }

// Lesson progress status values.
const (
	LessonNotStarted = "not_started"
	LessonInProgress = "in_progress"
	LessonCompleted  = "completed"
)

// UserLessonProgress is the per-lesson record. Unique per (user, lesson);
// completion is idempotent on that pair.
type UserLessonProgress struct {
	LessonProgressID uint       `gorm:"primaryKey" json:"lesson_progress_id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	DailyLessonID    uint       `gorm:"not null;uniqueIndex:idx_user_lesson" json:"daily_lesson_id"`
	EnrollmentID     uint       `gorm:"not null" json:"enrollment_id"`
	Status           string     `gorm:"not null;default:'not_started'" json:"status"`
	Score            *float64   `json:"score,omitempty"`
	TimeSpent        int        `gorm:"not null;default:0" json:"time_spent"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Attempts         int        `gorm:"not null;default:0" json:"attempts"`

	DailyLesson *DailyLesson `gorm:"foreignKey:DailyLessonID;references:DailyLessonID" json:"-"`
}

func (UserLessonProgress) TableName() string { return "user_lesson_progress" }

// Completion event types.
const (
	EventLessonCompleted  = "lesson_completed"
	EventSRSSessionDone   = "srs_session_completed"
	EventModuleTestPassed = "module_test_passed"
)

// LessonCompletionEvent is an append-only analytics log.
type LessonCompletionEvent struct {
	EventID       uint           `gorm:"primaryKey" json:"event_id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	DailyLessonID uint           `gorm:"not null;index" json:"daily_lesson_id"`
	EventType     string         `gorm:"not null" json:"event_type"`
	EventData     datatypes.JSON `json:"event_data,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (LessonCompletionEvent) TableName() string { return "lesson_completion_events" }

// ReadingProgress tracks the user's raw reading offset inside a chapter,
// outside any course. Feeds the daily plan's book suggestions and the streak.
type ReadingProgress struct {
	ReadingProgressID uint      `gorm:"primaryKey" json:"reading_progress_id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_chapter" json:"user_id"`
	BookID            uint      `gorm:"not null;index" json:"book_id"`
	ChapterID         uint      `gorm:"not null;uniqueIndex:idx_user_chapter" json:"chapter_id"`
	OffsetPct         float64   `gorm:"not null;default:0" json:"offset_pct"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ReadingProgress) TableName() string { return "reading_progress" }
