package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID        string        `json:"_id"`
	UID       string        `json:"uid,omitempty"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Gender    string        `json:"gender,omitempty"`
	DOB       *string       `json:"dob,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Settings  *UserSettings `json:"settings,omitempty"`
}

type UserSettings struct {
	Goals map[string]json.RawMessage `json:"goals,omitempty"`
}

// Streak is one of the user's running streaks (prayer, quran_reading,
// dhikr or combined).
type Streak struct {
	StreakType       string     `json:"streak_type"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

type UserDetail struct {
	User           *User         `json:"user"`
	Streaks        []Streak      `json:"streaks"`
	RecentActivity []ActivityLog `json:"recent_activity"`
}
