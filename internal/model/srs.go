package model

import (
	"time"

	"github.com/google/uuid"
)

// Card directions. Every learned word gets both, created atomically.
const (
	DirectionEngRus = "eng-rus"
	DirectionRusEng = "rus-eng"
)

var CardDirections = []string{DirectionEngRus, DirectionRusEng}

// UserWord is the per-user shadow of a global word.
type UserWord struct {
	UserWordID uint      `gorm:"primaryKey" json:"user_word_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_word" json:"user_id"`
	WordID     uint      `gorm:"not null;uniqueIndex:idx_user_word" json:"word_id"`
	CreatedAt  time.Time `json:"created_at"`

	Word *Word `gorm:"foreignKey:WordID;references:WordID" json:"-"`
}

func (UserWord) TableName() string { return "user_words" }

// UserCardDirection is one SRS vocabulary card (SM-2 state).
type UserCardDirection struct {
	CardID        uint       `gorm:"primaryKey" json:"card_id"`
	UserWordID    uint       `gorm:"not null;uniqueIndex:idx_userword_direction" json:"user_word_id"`
	Direction     string     `gorm:"not null;uniqueIndex:idx_userword_direction" json:"direction"`
	Ease          float64    `gorm:"not null;default:2.5" json:"ease"`
	IntervalDays  int        `gorm:"not null;default:0" json:"interval_days"`
	Repetitions   int        `gorm:"not null;default:0" json:"repetitions"`
	NextReview    *time.Time `gorm:"index" json:"next_review,omitempty"`
	LastReviewed  *time.Time `json:"last_reviewed,omitempty"`
	FirstReviewed *time.Time `json:"first_reviewed,omitempty"`

	UserWord *UserWord `gorm:"foreignKey:UserWordID;references:UserWordID" json:"-"`
}

func (UserCardDirection) TableName() string { return "user_card_directions" }

// IsNew reports whether the card has never been answered.
func (c *UserCardDirection) IsNew() bool { return c.Repetitions == 0 }

// IsDue implements the vocabulary due predicate: new, or next_review passed.
func (c *UserCardDirection) IsDue(now time.Time) bool {
	if c.IsNew() {
		return true
	}
	return c.NextReview != nil && !c.NextReview.After(now)
}

// IsMature mirrors the grammar maturity threshold for vocabulary cards.
func (c *UserCardDirection) IsMature() bool { return c.IntervalDays >= 21 }

// IsMastered reports a long-stable card.
func (c *UserCardDirection) IsMastered() bool { return c.IntervalDays >= 180 }
