package model

import (
	"time"

	"gorm.io/datatypes"
)

// BookCourse is a compiled curriculum for one book. One course per book.
type BookCourse struct {
	CourseID      uint      `gorm:"primaryKey" json:"course_id"`
	BookID        uint      `gorm:"not null;uniqueIndex" json:"book_id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	Level         Level     `gorm:"type:varchar(2);not null;default:'B1'" json:"level"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	IsFeatured    bool      `gorm:"not null;default:false" json:"is_featured"`
	TotalModules  int       `gorm:"not null;default:0" json:"total_modules"`
	DurationWeeks int       `gorm:"not null;default:4" json:"duration_weeks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Modules []BookCourseModule `gorm:"foreignKey:CourseID" json:"-"`
}

func (BookCourse) TableName() string { return "book_courses" }

// BookCourseModule is one ordered segment of a course, built from a group of
// blocks. PrimaryBlock is the first block of the group and anchors tasks.
type BookCourseModule struct {
	ModuleID        uint           `gorm:"primaryKey" json:"module_id"`
	CourseID        uint           `gorm:"not null;uniqueIndex:idx_course_order" json:"course_id"`
	OrderIndex      int            `gorm:"not null;uniqueIndex:idx_course_order" json:"order_index"`
	ModuleNumber    int            `gorm:"not null" json:"module_number"`
	PrimaryBlockID  *uint          `json:"primary_block_id,omitempty"`
	Title           string         `gorm:"not null" json:"title"`
	LessonsData     datatypes.JSON `json:"lessons_data,omitempty"`
	DifficultyLevel *Level         `gorm:"type:varchar(2)" json:"difficulty_level,omitempty"`
	IsLocked        bool           `gorm:"not null;default:false" json:"is_locked"`

	Course       *BookCourse `gorm:"foreignKey:CourseID;references:CourseID" json:"-"`
	PrimaryBlock *Block      `gorm:"foreignKey:PrimaryBlockID;references:BlockID" json:"-"`
}

func (BookCourseModule) TableName() string { return "book_course_modules" }

// EffectiveLevel resolves the pacing level: module override, then course level,
// then the B1 default.
func (m *BookCourseModule) EffectiveLevel() Level {
	if m.DifficultyLevel != nil && m.DifficultyLevel.Valid() {
		return *m.DifficultyLevel
	}
	if m.Course != nil && m.Course.Level.Valid() {
		return m.Course.Level
	}
	return DefaultLevel
}

// Lesson types produced by the slice generator.
const (
	LessonReading       = "reading"
	LessonVocabulary    = "vocabulary"
	LessonVocabReview   = "vocabulary_review"
	LessonGrammar       = "grammar"
	LessonMCQ           = "comprehension_mcq"
	LessonCloze         = "cloze_practice"
	LessonSummary       = "summary"
	LessonModuleTest    = "module_test"
)

// DailyLesson is one scheduled unit. Reading lessons carry a slice of the
// module text; practice lessons may reference a standalone Task.
type DailyLesson struct {
	DailyLessonID uint       `gorm:"primaryKey" json:"daily_lesson_id"`
	ModuleID      uint       `gorm:"not null;uniqueIndex:idx_module_day_order" json:"module_id"`
	DayNumber     int        `gorm:"not null;uniqueIndex:idx_module_day_order" json:"day_number"`
	LessonOrder   int        `gorm:"not null;uniqueIndex:idx_module_day_order" json:"lesson_order"`
	SliceNumber   int        `gorm:"not null" json:"slice_number"`
	ChapterID     *uint      `json:"chapter_id,omitempty"`
	LessonType    string     `gorm:"not null" json:"lesson_type"`
	Title         string     `json:"title"`
	SliceText     string     `gorm:"type:text" json:"-"`
	WordCount     int        `gorm:"not null;default:0" json:"word_count"`
	StartPosition int        `gorm:"not null;default:0" json:"start_position"`
	EndPosition   int        `gorm:"not null;default:0" json:"end_position"`
	TaskID        *uint      `json:"task_id,omitempty"`
	AvailableAt   *time.Time `json:"available_at,omitempty"`

	Module *BookCourseModule `gorm:"foreignKey:ModuleID;references:ModuleID" json:"-"`
	Task   *Task             `gorm:"foreignKey:TaskID;references:TaskID" json:"-"`
}

func (DailyLesson) TableName() string { return "daily_lessons" }

// IsVocabularyType reports whether the lesson feeds SRS seeding.
func (l *DailyLesson) IsVocabularyType() bool {
	return l.LessonType == LessonVocabulary || l.LessonType == LessonVocabReview
}

// SliceVocabulary is a word selected for one daily lesson's slice.
type SliceVocabulary struct {
	SliceVocabID    uint   `gorm:"primaryKey" json:"slice_vocab_id"`
	DailyLessonID   uint   `gorm:"not null;uniqueIndex:idx_lesson_word" json:"daily_lesson_id"`
	WordID          uint   `gorm:"not null;uniqueIndex:idx_lesson_word" json:"word_id"`
	Frequency       int    `gorm:"not null;default:1" json:"frequency"`
	ContextSentence string `gorm:"type:text" json:"context_sentence"`

	Word *Word `gorm:"foreignKey:WordID;references:WordID" json:"-"`
}

func (SliceVocabulary) TableName() string { return "slice_vocabulary" }
