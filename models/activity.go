package models

import (
	"encoding/json"
	"time"
)

type ActivityType string

const (
	ActivityPrayer            ActivityType = "prayer"
	ActivityQuranReading      ActivityType = "quran_reading"
	ActivityQuranMemorization ActivityType = "quran_memorization"
	ActivityDhikr             ActivityType = "dhikr"
	ActivityFasting           ActivityType = "fasting"
	ActivityDuaMemorization   ActivityType = "dua_memorization"
	ActivityGoal              ActivityType = "goal"
	ActivityStreak            ActivityType = "streak"
)

// ActivityTypes lists every type accepted by the activity-log filter.
var ActivityTypes = []ActivityType{
	ActivityPrayer,
	ActivityQuranReading,
	ActivityQuranMemorization,
	ActivityDhikr,
	ActivityFasting,
	ActivityDuaMemorization,
	ActivityGoal,
	ActivityStreak,
}

func (a ActivityType) Valid() bool {
	for _, t := range ActivityTypes {
		if t == a {
			return true
		}
	}
	return false
}

type ActivityLog struct {
	ID           string          `json:"_id"`
	User         *UserRef        `json:"user_id"`
	ActivityType ActivityType    `json:"activity_type"`
	Date         time.Time       `json:"date"`
	Details      json.RawMessage `json:"details,omitempty"`
}
