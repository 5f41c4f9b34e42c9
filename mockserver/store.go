package mockserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/hisabi-admin/models"
)

var ErrNotFound = errors.New("not found")

const recentActivityLimit = 20

// BoardEntry is a leaderboard score for a user. The user is resolved when
// the board is read, so entries of deleted users come back with a null user.
type BoardEntry struct {
	UserID  string
	Score   float64
	Longest float64
}

// Store is the in-memory backend state.
type Store struct {
	lock sync.RWMutex

	users      map[string]*models.User
	streaks    map[string][]models.Streak
	groups     map[string]*models.Group
	activities map[string][]models.DefaultActivity
	logs       []models.ActivityLog

	boards       map[models.Metric][]BoardEntry
	streakBoards map[models.StreakType][]BoardEntry

	prayerRecords       []models.PrayerRecord
	readingRecords      []models.QuranReadingRecord
	memorizationRecords []models.QuranMemorizationRecord

	Duas              *ContentTable[models.Dua]
	DhikrTypes        *ContentTable[models.DhikrType]
	FastingTypes      *ContentTable[models.FastingType]
	QuranReading      *ContentTable[models.QuranPortion]
	QuranMemorization *ContentTable[models.QuranPortion]
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]*models.User),
		streaks:      make(map[string][]models.Streak),
		groups:       make(map[string]*models.Group),
		activities:   make(map[string][]models.DefaultActivity),
		boards:       make(map[models.Metric][]BoardEntry),
		streakBoards: make(map[models.StreakType][]BoardEntry),

		Duas:              NewContentTable(func(d *models.Dua) *string { return &d.ID }),
		DhikrTypes:        NewContentTable(func(d *models.DhikrType) *string { return &d.ID }),
		FastingTypes:      NewContentTable(func(f *models.FastingType) *string { return &f.ID }),
		QuranReading:      NewContentTable(func(q *models.QuranPortion) *string { return &q.ID }),
		QuranMemorization: NewContentTable(func(q *models.QuranPortion) *string { return &q.ID }),
	}
}

// AddUser stores u, assigning an id and creation time when missing.
func (s *Store) AddUser(u models.User) models.User {
	s.lock.Lock()
	defer s.lock.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = NowTimeFunc()
	}
	s.users[u.ID] = &u
	return u
}

func (s *Store) SetStreaks(userID string, streaks []models.Streak) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.streaks[userID] = streaks
}

// ListUsers returns users whose name or email contains search, newest first.
func (s *Store) ListUsers(search string) []models.User {
	s.lock.RLock()
	defer s.lock.RUnlock()

	search = strings.ToLower(search)
	list := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		list = append(list, *u)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Store) UserDetail(id string) (models.UserDetail, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.UserDetail{}, ErrNotFound
	}
	user := *u

	recent := make([]models.ActivityLog, 0, recentActivityLimit)
	for _, l := range s.sortedLogsLocked() {
		if l.User != nil && l.User.ID == id {
			recent = append(recent, s.resolveLogLocked(l))
			if len(recent) == recentActivityLimit {
				break
			}
		}
	}
	streaks := append([]models.Streak{}, s.streaks[id]...)
	return models.UserDetail{User: &user, Streaks: streaks, RecentActivity: recent}, nil
}

// DeleteUser removes the user with their streaks, activity and group
// memberships. Leaderboards and tracking records keep their entries and
// report the user as null from then on.
func (s *Store) DeleteUser(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.streaks, id)

	logs := s.logs[:0]
	for _, l := range s.logs {
		if l.User == nil || l.User.ID != id {
			logs = append(logs, l)
		}
	}
	s.logs = logs

	for _, g := range s.groups {
		members := g.Members[:0]
		for _, m := range g.Members {
			if m.ID != id {
				members = append(members, m)
			}
		}
		g.Members = members
		if g.Admin != nil && g.Admin.ID == id {
			g.Admin = nil
		}
	}
	return nil
}

// AddGroup stores g. Admin and member references only need an id.
func (s *Store) AddGroup(g models.Group, activities []models.DefaultActivity) models.Group {
	s.lock.Lock()
	defer s.lock.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = NowTimeFunc()
	}
	for i := range activities {
		if activities[i].ID == "" {
			activities[i].ID = uuid.New().String()
		}
	}
	s.groups[g.ID] = &g
	s.activities[g.ID] = activities
	return g
}

func (s *Store) ListGroups(search string) []models.Group {
	s.lock.RLock()
	defer s.lock.RUnlock()

	search = strings.ToLower(search)
	list := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		if search != "" && !strings.Contains(strings.ToLower(g.Name), search) && !strings.Contains(strings.ToLower(g.GroupID), search) {
			continue
		}
		list = append(list, s.resolveGroupLocked(g))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Store) GroupDetail(id string) (models.GroupDetail, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return models.GroupDetail{}, ErrNotFound
	}
	group := s.resolveGroupLocked(g)
	activities := append([]models.DefaultActivity{}, s.activities[id]...)
	return models.GroupDetail{Group: &group, DefaultActivities: activities}, nil
}

func (s *Store) DeleteGroup(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.groups[id]; !ok {
		return ErrNotFound
	}
	delete(s.groups, id)
	delete(s.activities, id)
	return nil
}

func (s *Store) AddLog(l models.ActivityLog) models.ActivityLog {
	s.lock.Lock()
	defer s.lock.Unlock()

	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	s.logs = append(s.logs, l)
	return l
}

// LogQuery filters the activity log. Zero values match everything; the
// date bounds are inclusive days.
type LogQuery struct {
	ActivityType models.ActivityType
	From         time.Time
	To           time.Time
	UserID       string
}

func (q LogQuery) match(l models.ActivityLog) bool {
	if q.ActivityType != "" && l.ActivityType != q.ActivityType {
		return false
	}
	if q.UserID != "" && (l.User == nil || l.User.ID != q.UserID) {
		return false
	}
	if !q.From.IsZero() && l.Date.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !l.Date.Before(q.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// ListLogs returns matching logs, newest first.
func (s *Store) ListLogs(q LogQuery) []models.ActivityLog {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]models.ActivityLog, 0)
	for _, l := range s.sortedLogsLocked() {
		if q.match(l) {
			list = append(list, s.resolveLogLocked(l))
		}
	}
	return list
}

func (s *Store) AddBoardEntry(metric models.Metric, e BoardEntry) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.boards[metric] = append(s.boards[metric], e)
}

func (s *Store) AddStreakEntry(t models.StreakType, e BoardEntry) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.streakBoards[t] = append(s.streakBoards[t], e)
}

// Leaderboard returns the board for metric ordered by score, highest first.
// The streak type only applies to the streaks metric and defaults to combined.
func (s *Store) Leaderboard(metric models.Metric, streak models.StreakType) []map[string]any {
	s.lock.RLock()
	defer s.lock.RUnlock()

	entries := s.boards[metric]
	if metric == models.MetricStreaks {
		if streak == "" {
			streak = models.StreakCombined
		}
		entries = s.streakBoards[streak]
	}
	entries = append([]BoardEntry{}, entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })

	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		row := map[string]any{
			"user":              s.userRefLocked(e.UserID),
			metric.ScoreField(): e.Score,
		}
		if metric == models.MetricStreaks {
			row["longest_streak"] = e.Longest
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Store) AddPrayerRecord(r models.PrayerRecord) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.prayerRecords = append(s.prayerRecords, r)
}

func (s *Store) AddQuranReadingRecord(r models.QuranReadingRecord) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.readingRecords = append(s.readingRecords, r)
}

func (s *Store) AddQuranMemorizationRecord(r models.QuranMemorizationRecord) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.memorizationRecords = append(s.memorizationRecords, r)
}

// Records returns the tracking records for metric, or false when the
// metric has none.
func (s *Store) Records(metric models.Metric) ([]any, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []any
	switch metric {
	case models.MetricPrayerTracking:
		for _, r := range s.prayerRecords {
			r.User = s.userRefLocked(refID(r.User))
			out = append(out, r)
		}
	case models.MetricQuranReading:
		for _, r := range s.readingRecords {
			r.User = s.userRefLocked(refID(r.User))
			out = append(out, r)
		}
	case models.MetricQuranMemorization:
		for _, r := range s.memorizationRecords {
			r.User = s.userRefLocked(refID(r.User))
			out = append(out, r)
		}
	default:
		return nil, false
	}
	if out == nil {
		out = []any{}
	}
	return out, true
}

// Stats aggregates the dashboard figures relative to NowTimeFunc.
func (s *Store) Stats() models.Stats {
	s.lock.RLock()
	defer s.lock.RUnlock()

	now := NowTimeFunc()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	stats := models.Stats{
		TotalUsers:        len(s.users),
		TotalGroups:       len(s.groups),
		TotalActivityLogs: len(s.logs),
		ActivityBreakdown: make(map[string]int),
		StreakAverages:    make(map[string]models.StreakAverage),
	}
	for _, u := range s.users {
		switch strings.ToLower(u.Gender) {
		case "male":
			stats.MaleUsers++
		case "female":
			stats.FemaleUsers++
		}
		if u.CreatedAt.Year() == now.Year() && u.CreatedAt.Month() == now.Month() {
			stats.NewUsersThisMonth++
		}
		if u.CreatedAt.After(weekAgo) {
			stats.NewUsersLast7Days++
		}
	}
	for _, l := range s.logs {
		stats.ActivityBreakdown[string(l.ActivityType)]++
		if !l.Date.Before(today) {
			stats.TodayActivityCount++
		}
	}

	type sums struct {
		current, longest float64
		n                int
	}
	totals := map[string]*sums{}
	for _, streaks := range s.streaks {
		for _, st := range streaks {
			t := totals[st.StreakType]
			if t == nil {
				t = &sums{}
				totals[st.StreakType] = t
			}
			t.current += float64(st.CurrentStreak)
			t.longest += float64(st.LongestStreak)
			t.n++
		}
	}
	for typ, t := range totals {
		stats.StreakAverages[typ] = models.StreakAverage{
			AvgCurrent: round1(t.current / float64(t.n)),
			AvgLongest: round1(t.longest / float64(t.n)),
		}
	}
	return stats
}

func (s *Store) sortedLogsLocked() []models.ActivityLog {
	logs := append([]models.ActivityLog{}, s.logs...)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date.After(logs[j].Date) })
	return logs
}

func (s *Store) resolveLogLocked(l models.ActivityLog) models.ActivityLog {
	l.User = s.userRefLocked(refID(l.User))
	return l
}

func (s *Store) resolveGroupLocked(g *models.Group) models.Group {
	out := *g
	out.Admin = nil
	if g.Admin != nil {
		out.Admin = s.userRefLocked(g.Admin.ID)
	}
	out.Members = make([]models.UserRef, 0, len(g.Members))
	for _, m := range g.Members {
		if ref := s.userRefLocked(m.ID); ref != nil {
			out.Members = append(out.Members, *ref)
		}
	}
	return out
}

// userRefLocked returns the populated reference for id, or nil if the
// user does not exist.
func (s *Store) userRefLocked(id string) *models.UserRef {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func refID(r *models.UserRef) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
