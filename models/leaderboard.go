package models

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
)

// Metric names a leaderboard endpoint under /admin/models/.
type Metric string

const (
	MetricDhikrTracking     Metric = "dhikr-tracking"
	MetricDuaMemorization   Metric = "dua-memorization"
	MetricFasting           Metric = "fasting"
	MetricPrayerTracking    Metric = "prayer-tracking"
	MetricQuranReading      Metric = "quran-reading"
	MetricQuranMemorization Metric = "quran-memorization"
	MetricQuranProgress     Metric = "quran-progress"
	MetricStreaks           Metric = "streaks"
)

type metricInfo struct {
	scoreField string
	label      string
}

var metrics = map[Metric]metricInfo{
	MetricDhikrTracking:     {"total_dhikr", "Total Dhikr"},
	MetricDuaMemorization:   {"count", "Duas Memorized"},
	MetricFasting:           {"completed_days", "Days Fasted"},
	MetricPrayerTracking:    {"total_prayers", "Prayers"},
	MetricQuranReading:      {"total_pages", "Pages Read"},
	MetricQuranMemorization: {"count", "Ayahs Memorized"},
	MetricQuranProgress:     {"khatms_completed", "Khatms"},
	MetricStreaks:           {"current_streak", "Current Streak"},
}

// Metrics in menu order.
var Metrics = []Metric{
	MetricDhikrTracking,
	MetricDuaMemorization,
	MetricFasting,
	MetricPrayerTracking,
	MetricQuranReading,
	MetricQuranMemorization,
	MetricQuranProgress,
	MetricStreaks,
}

func (m Metric) Valid() bool {
	_, ok := metrics[m]
	return ok
}

// ScoreField is the row field holding the score for m.
func (m Metric) ScoreField() string {
	return metrics[m].scoreField
}

func (m Metric) Label() string {
	if info, ok := metrics[m]; ok {
		return info.label
	}
	return "Score"
}

// HasRecords reports whether the metric exposes a read-only records table.
func (m Metric) HasRecords() bool {
	switch m {
	case MetricPrayerTracking, MetricQuranReading, MetricQuranMemorization:
		return true
	}
	return false
}

// StreakType filters the streaks leaderboard.
type StreakType string

const (
	StreakCombined     StreakType = "combined"
	StreakPrayer       StreakType = "prayer"
	StreakQuranReading StreakType = "quran_reading"
	StreakDhikr        StreakType = "dhikr"
)

var StreakTypes = []StreakType{StreakCombined, StreakPrayer, StreakQuranReading, StreakDhikr}

func (s StreakType) Valid() bool {
	for _, t := range StreakTypes {
		if t == s {
			return true
		}
	}
	return false
}

// LeaderboardRow is one ranked entry. Array order is rank order.
type LeaderboardRow struct {
	User  *UserRef
	Score float64
	// Longest is only reported by the streaks leaderboard.
	Longest *float64
}

type rawRow map[string]json.RawMessage

// DecodeLeaderboard decodes {"leaderboard": [...]} for metric m, reading
// each row's score from the metric's score field. A missing score is 0.
func DecodeLeaderboard(raw []byte, m Metric) ([]LeaderboardRow, error) {
	if !m.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "metric %q", m)
	}
	rows, err := DecodeItems[rawRow](raw, FieldLeaderboard)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardRow, 0, len(rows))
	for i, r := range rows {
		var row LeaderboardRow
		if u, ok := r["user"]; ok {
			if err := json.Unmarshal(u, &row.User); err != nil {
				return nil, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "row %d user: %v", i, err)
			}
		}
		if err := decodeNumber(r, m.ScoreField(), &row.Score); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if m == MetricStreaks {
			if _, ok := r["longest_streak"]; ok {
				var longest float64
				if err := decodeNumber(r, "longest_streak", &longest); err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
				row.Longest = &longest
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func decodeNumber(r rawRow, field string, dst *float64) error {
	v, ok := r[field]
	if !ok || string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return apperrors.Wrapf(apperrors.ErrUnexpectedShape, "%s: %v", field, err)
	}
	return nil
}
