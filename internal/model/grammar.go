package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GrammarTopic is a catalogue entry keyed by slug; blocks reference topics via
// Block.GrammarKey.
type GrammarTopic struct {
	TopicID  uint           `gorm:"primaryKey" json:"topic_id"`
	Slug     string         `gorm:"not null;uniqueIndex" json:"slug"`
	Title    string         `gorm:"not null" json:"title"`
	Level    Level          `gorm:"type:varchar(2);not null;default:'A1'" json:"level"`
	Content  datatypes.JSON `json:"content,omitempty"`
	Order    int            `gorm:"column:topic_order;not null;default:0" json:"order"`
	IsActive bool           `gorm:"not null;default:true" json:"is_active"`
}

func (GrammarTopic) TableName() string { return "grammar_topics" }

// GrammarExercise is one typed exercise of a topic.
type GrammarExercise struct {
	ExerciseID   uint           `gorm:"primaryKey" json:"exercise_id"`
	TopicID      uint           `gorm:"not null;index" json:"topic_id"`
	ExerciseType string         `gorm:"not null" json:"exercise_type"`
	Payload      datatypes.JSON `gorm:"not null" json:"payload"`

	Topic *GrammarTopic `gorm:"foreignKey:TopicID;references:TopicID" json:"-"`
}

func (GrammarExercise) TableName() string { return "grammar_exercises" }

// Anki-like card states for grammar exercises.
const (
	CardStateNew        = "new"
	CardStateLearning   = "learning"
	CardStateReview     = "review"
	CardStateRelearning = "relearning"
)

// UserGrammarExercise is the grammar SRS card: SM-2 state plus the Anki-like
// learning-state fields the vocabulary cards do not carry.
type UserGrammarExercise struct {
	UserExerciseID uint       `gorm:"primaryKey" json:"user_exercise_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_exercise" json:"user_id"`
	ExerciseID     uint       `gorm:"not null;uniqueIndex:idx_user_exercise" json:"exercise_id"`
	Ease           float64    `gorm:"not null;default:2.5" json:"ease"`
	IntervalDays   int        `gorm:"not null;default:0" json:"interval_days"`
	Repetitions    int        `gorm:"not null;default:0" json:"repetitions"`
	NextReview     *time.Time `gorm:"index" json:"next_review,omitempty"`
	LastReviewed   *time.Time `json:"last_reviewed,omitempty"`
	FirstReviewed  *time.Time `json:"first_reviewed,omitempty"`
	State          string     `gorm:"not null;default:'new'" json:"state"`
	StepIndex      int        `gorm:"not null;default:0" json:"step_index"`
	Lapses         int        `gorm:"not null;default:0" json:"lapses"`
	BuriedUntil    *time.Time `json:"buried_until,omitempty"`

	Exercise *GrammarExercise `gorm:"foreignKey:ExerciseID;references:ExerciseID" json:"-"`
}

func (UserGrammarExercise) TableName() string { return "user_grammar_exercises" }

// IsDue implements the grammar due predicate: not buried, and new or past due.
func (e *UserGrammarExercise) IsDue(now time.Time) bool {
	if e.BuriedUntil != nil && e.BuriedUntil.After(now) {
		return false
	}
	if e.State == CardStateNew {
		return true
	}
	return e.NextReview != nil && !e.NextReview.After(now)
}

// IsMature: a review-state card with a three-week interval.
func (e *UserGrammarExercise) IsMature() bool {
	return e.State == CardStateReview && e.IntervalDays >= 21
}

// IsMastered: half a year of stability.
func (e *UserGrammarExercise) IsMastered() bool {
	return e.State == CardStateReview && e.IntervalDays >= 180
}

// Topic status values for a user.
const (
	TopicStatusNew             = "new"
	TopicStatusTheoryCompleted = "theory_completed"
	TopicStatusPracticing      = "practicing"
	TopicStatusMastered        = "mastered"
)

// UserGrammarTopicStatus tracks a user's standing on one topic.
type UserGrammarTopicStatus struct {
	TopicStatusID      uint       `gorm:"primaryKey" json:"topic_status_id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_topic" json:"user_id"`
	TopicID            uint       `gorm:"not null;uniqueIndex:idx_user_topic" json:"topic_id"`
	Status             string     `gorm:"not null;default:'new'" json:"status"`
	TheoryCompletedAt  *time.Time `json:"theory_completed_at,omitempty"`
	XPEarned           int        `gorm:"not null;default:0" json:"xp_earned"`

	Topic *GrammarTopic `gorm:"foreignKey:TopicID;references:TopicID" json:"-"`
}

func (UserGrammarTopicStatus) TableName() string { return "user_grammar_topic_status" }
