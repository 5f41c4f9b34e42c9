package resource

import "github.com/jrsteele09/hisabi-admin/models"

// PodiumSize is how many top positions get distinct treatment.
const PodiumSize = 3

// RankedRow is a leaderboard row with its display rank.
type RankedRow struct {
	models.LeaderboardRow
	Rank int
}

// Podium reports whether the row is in the top three.
func (r RankedRow) Podium() bool {
	return r.Rank <= PodiumSize
}

// Rank assigns ranks from array order. The server owns the ordering; ties
// are not merged.
func Rank(rows []models.LeaderboardRow) []RankedRow {
	out := make([]RankedRow, len(rows))
	for i, row := range rows {
		out[i] = RankedRow{LeaderboardRow: row, Rank: i + 1}
	}
	return out
}
