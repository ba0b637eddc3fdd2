package model

import (
	"time"

	"github.com/google/uuid"
)

type contextKey string

// UserIDKey locates the authenticated user id in a request context.
const UserIDKey contextKey = "user_id"

// User holds per-user settings the core needs: timezone for day boundaries and
// the SRS daily limits. Authentication itself lives outside this service.
type User struct {
	UserID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Timezone       string     `gorm:"not null;default:'Europe/Amsterdam'" json:"timezone"`
	IsAdmin        bool       `gorm:"not null;default:false" json:"is_admin"`
	NewWordsPerDay int        `gorm:"not null;default:20" json:"new_words_per_day"`
	ReviewsPerDay  int        `gorm:"not null;default:100" json:"reviews_per_day"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActiveAt   *time.Time `json:"last_active_at,omitempty"`
}

func (User) TableName() string { return "users" }

// Location resolves the user's timezone, falling back to UTC on a bad name.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalDayStart returns the start of the user's local day containing t, in UTC.
func (u *User) LocalDayStart(t time.Time) time.Time {
	loc := u.Location()
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc).UTC()
}
