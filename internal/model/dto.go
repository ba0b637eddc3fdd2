package model

import (
	"time"

	"gorm.io/datatypes"
)

// --- Lesson runtime DTOs ---

type VocabWordDTO struct {
	ID          uint   `json:"id"`
	Lemma       string `json:"lemma"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
}

type LessonVocabularyResponse struct {
	Words []VocabWordDTO `json:"words"`
}

type TooltipEntry struct {
	ID            uint   `json:"id"`
	Translation   string `json:"translation"`
	Example       string `json:"example,omitempty"`
	AudioURL      string `json:"audio_url,omitempty"`
	Transcription string `json:"transcription,omitempty"`
	POS           string `json:"pos,omitempty"`
}

type LessonReadingResponse struct {
	HTML       string                  `json:"html"`
	TooltipMap map[string]TooltipEntry `json:"tooltip_map"`
	WordCount  int                     `json:"word_count"`
	Title      string                  `json:"title"`
}

type CompleteLessonRequest struct {
	Score     *float64 `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	TimeSpent int      `json:"time_spent" validate:"gte=0"`
}

type CompleteLessonResponse struct {
	Success bool `json:"success"`
}

// --- SRS DTOs ---

type DeckCard struct {
	CardID     uint    `json:"card_id"`
	Front      string  `json:"front"`
	Back       string  `json:"back"`
	Phase      string  `json:"phase"`
	New        bool    `json:"new"`
	Direction  string  `json:"direction"`
	EaseFactor float64 `json:"ease_factor"`
	Interval   int     `json:"interval"`
	AudioURL   string  `json:"audio_url,omitempty"`
}

type SRSSessionResponse struct {
	Deck       []DeckCard `json:"deck"`
	SessionKey string     `json:"session_key"`
	LessonID   uint       `json:"lesson_id"`
	TotalCards int        `json:"total_cards"`
}

type GradeRequest struct {
	CardID     uint   `json:"card_id" validate:"required"`
	Grade      int    `json:"grade" validate:"gte=0,lte=5"`
	SessionKey string `json:"session_key" validate:"required"`
}

type GradeResponse struct {
	Success     bool       `json:"success"`
	CardID      uint       `json:"card_id"`
	NextDue     *time.Time `json:"next_due,omitempty"`
	Interval    int        `json:"interval"`
	EaseFactor  float64    `json:"ease_factor"`
	Repetitions int        `json:"repetitions"`
}

type AddCardRequest struct {
	WordID   uint   `json:"word_id" validate:"required"`
	Source   string `json:"source"`
	CourseID *uint  `json:"course_id,omitempty"`
}

type AddCardResponse struct {
	Success      bool `json:"success"`
	CardsCreated int  `json:"cards_created"`
}

type DueCountsResponse struct {
	WordsDue     int `json:"words_due"`
	GrammarDue   int `json:"grammar_due"`
	NewRemain    int `json:"new_remaining"`
	ReviewRemain int `json:"review_remaining"`
}

// --- Reading progress ---

type UpdateReadingProgressRequest struct {
	BookID    uint    `json:"book_id" validate:"required"`
	ChapterID uint    `json:"chapter_id" validate:"required"`
	OffsetPct float64 `json:"offset_pct" validate:"gte=0,lte=100"`
}

type UpdateReadingProgressResponse struct {
	Success   bool    `json:"success"`
	OffsetPct float64 `json:"offset_pct"`
}

// --- Daily plan (C10) ---

type PlanLesson struct {
	LessonID     uint   `json:"lesson_id"`
	Title        string `json:"title"`
	ModuleNumber int    `json:"module_number"`
	LessonOrder  int    `json:"lesson_order"`
	LessonType   string `json:"lesson_type"`
	Level        string `json:"level"`
}

type PlanGrammarTopic struct {
	TopicID      uint   `json:"topic_id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	DueExercises int    `json:"due_exercises"`
}

type PlanBook struct {
	BookID uint   `json:"book_id"`
	Title  string `json:"title"`
	Level  string `json:"level"`
}

type PlanOnboarding struct {
	FirstLesson    *PlanLesson `json:"first_lesson,omitempty"`
	AvailableBooks []PlanBook  `json:"available_books"`
	TotalBooks     int64       `json:"total_books"`
	NoWords        bool        `json:"no_words"`
}

type PlanBonus struct {
	ExtraLesson  *PlanLesson `json:"extra_lesson,omitempty"`
	ExtraReading bool        `json:"extra_reading"`
}

type DailyPlanResponse struct {
	NextLesson     *PlanLesson       `json:"next_lesson,omitempty"`
	GrammarTopic   *PlanGrammarTopic `json:"grammar_topic,omitempty"`
	WordsDue       int               `json:"words_due"`
	BookToRead     *PlanBook         `json:"book_to_read,omitempty"`
	SuggestedBooks []PlanBook        `json:"suggested_books,omitempty"`
	Onboarding     *PlanOnboarding   `json:"onboarding,omitempty"`
	Bonus          PlanBonus         `json:"bonus"`
}

type StreakResponse struct {
	Streak int `json:"streak"`
}

// --- Grammar practice ---

type GrammarTopicResponse struct {
	TopicID      uint              `json:"topic_id"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Level        string            `json:"level"`
	Content      datatypes.JSON    `json:"content,omitempty"`
	Status       string            `json:"status"`
	DueExercises int               `json:"due_exercises"`
	Exercises    []GrammarExercise `json:"exercises"`
}

type AnswerExerciseRequest struct {
	ExerciseID uint `json:"exercise_id" validate:"required"`
	Grade      int  `json:"grade" validate:"gte=0,lte=5"`
}

type AnswerExerciseResponse struct {
	Success bool       `json:"success"`
	State   string     `json:"state"`
	NextDue *time.Time `json:"next_due,omitempty"`
	Buried  bool       `json:"buried"`
	Lapses  int        `json:"lapses"`
}

type TheoryCompleteResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// --- Admin / authoring DTOs ---

type CreateCourseRequest struct {
	BookID uint   `json:"book_id" validate:"required"`
	Title  string `json:"title,omitempty"`
	Level  string `json:"level,omitempty"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsFeatured  *bool   `json:"is_featured,omitempty"`
}

// Bulk actions over a list of course ids.
const (
	BulkActivate          = "activate"
	BulkDeactivate        = "deactivate"
	BulkFeature           = "feature"
	BulkUnfeature         = "unfeature"
	BulkDelete            = "delete"
	BulkDeletePermanently = "delete_permanently"
)

type BulkCourseActionRequest struct {
	Action    string `json:"action" validate:"required,oneof=activate deactivate feature unfeature delete delete_permanently"`
	CourseIDs []uint `json:"course_ids" validate:"required,min=1,dive,required"`
}

type BulkCourseActionResponse struct {
	Success  bool `json:"success"`
	Affected int  `json:"affected"`
}

type EnrollResponse struct {
	Success      bool `json:"success"`
	EnrollmentID uint `json:"enrollment_id"`
}

type CourseBuildResponse struct {
	Success  bool   `json:"success"`
	CourseID uint   `json:"course_id,omitempty"`
	Modules  int    `json:"modules,omitempty"`
	Lessons  int    `json:"lessons,omitempty"`
	Message  string `json:"message,omitempty"`
}

type LessonScheduleEntry struct {
	LessonID    uint       `json:"lesson_id"`
	DayNumber   int        `json:"day_number"`
	LessonOrder int        `json:"lesson_order"`
	LessonType  string     `json:"lesson_type"`
	Title       string     `json:"title"`
	AvailableAt *time.Time `json:"available_at,omitempty"`
}

type ModuleScheduleEntry struct {
	ModuleID     uint                  `json:"module_id"`
	ModuleNumber int                   `json:"module_number"`
	Title        string                `json:"title"`
	Level        string                `json:"level"`
	Lessons      []LessonScheduleEntry `json:"lessons"`
}

type CourseScheduleResponse struct {
	CourseID     uint                  `json:"course_id"`
	Title        string                `json:"title"`
	Level        string                `json:"level"`
	TotalModules int                   `json:"total_modules"`
	TotalLessons int                   `json:"total_lessons"`
	Modules      []ModuleScheduleEntry `json:"modules"`
}
