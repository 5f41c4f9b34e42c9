package models

// Stats backs the dashboard.
type Stats struct {
	TotalUsers         int                      `json:"total_users"`
	TotalGroups        int                      `json:"total_groups"`
	TotalActivityLogs  int                      `json:"total_activity_logs"`
	TodayActivityCount int                      `json:"today_activity_count"`
	MaleUsers          int                      `json:"male_users"`
	FemaleUsers        int                      `json:"female_users"`
	NewUsersThisMonth  int                      `json:"new_users_this_month"`
	NewUsersLast7Days  int                      `json:"new_users_last_7_days"`
	ActivityBreakdown  map[string]int           `json:"activity_breakdown,omitempty"`
	StreakAverages     map[string]StreakAverage `json:"streak_averages,omitempty"`
}

type StreakAverage struct {
	AvgCurrent float64 `json:"avg_current"`
	AvgLongest float64 `json:"avg_longest"`
}

// Percent returns part as a whole-number percentage of TotalUsers, or 0
// when there are no users.
func (s Stats) Percent(part int) int {
	if s.TotalUsers == 0 {
		return 0
	}
	return int(float64(part)*100/float64(s.TotalUsers) + 0.5)
}
