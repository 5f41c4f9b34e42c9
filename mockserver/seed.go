package mockserver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/hisabi-admin/internal/utils"
	"github.com/jrsteele09/hisabi-admin/models"
)

// deletedUserID is referenced by seeded leaderboards and records but has
// no account, as happens after a user is deleted.
const deletedUserID = "deleted-000"

type seedUser struct {
	name, email, gender string
	daysAgo             int
}

var seedUsers = []seedUser{
	{"Amina Rahman", "amina@hisabi.app", "female", 1},
	{"Bilal Hussain", "bilal@hisabi.app", "male", 3},
	{"Fatima Noor", "fatima@hisabi.app", "female", 6},
	{"Yusuf Ahmed", "yusuf@hisabi.app", "male", 12},
	{"Khadija Ali", "khadija@hisabi.app", "female", 20},
	{"Omar Farooq", "omar@hisabi.app", "male", 35},
	{"Maryam Siddiqui", "maryam@hisabi.app", "female", 48},
	{"Ibrahim Khan", "ibrahim@hisabi.app", "male", 60},
	{"Zainab Iqbal", "zainab@hisabi.app", "female", 75},
	{"Hamza Malik", "hamza@hisabi.app", "male", 90},
	{"Aisha Karim", "aisha@hisabi.app", "female", 120},
	{"Salman Qureshi", "salman@hisabi.app", "male", 150},
}

// NewSeededStore returns a store populated with demo data.
func NewSeededStore() *Store {
	s := NewStore()
	Seed(s)
	return s
}

// Seed fills s with users, groups, activity, content and leaderboards.
func Seed(s *Store) {
	now := NowTimeFunc()

	ids := make([]string, 0, len(seedUsers))
	for i, su := range seedUsers {
		u := s.AddUser(models.User{
			UID:       fmt.Sprintf("uid-%03d", i+1),
			Name:      su.name,
			Email:     su.email,
			Gender:    su.gender,
			CreatedAt: now.AddDate(0, 0, -su.daysAgo),
			Settings: &models.UserSettings{Goals: map[string]json.RawMessage{
				"daily_pages": json.RawMessage(fmt.Sprint(2 + i%3)),
				"dhikr_count": json.RawMessage(fmt.Sprint(100 * (1 + i%4))),
			}},
		})
		ids = append(ids, u.ID)

		s.SetStreaks(u.ID, []models.Streak{
			{StreakType: string(models.StreakCombined), CurrentStreak: i % 7, LongestStreak: 10 + i, LastActivityDate: utils.Ptr(now.AddDate(0, 0, -(i % 3)))},
			{StreakType: string(models.StreakPrayer), CurrentStreak: 2 * (i % 5), LongestStreak: 14 + i},
		})
	}

	for i := 0; i < 60; i++ {
		owner := ids[i%len(ids)]
		s.AddLog(models.ActivityLog{
			User:         &models.UserRef{ID: owner},
			ActivityType: models.ActivityTypes[i%len(models.ActivityTypes)],
			Date:         now.Add(-time.Duration(i) * 6 * time.Hour),
			Details:      json.RawMessage(fmt.Sprintf(`{"count":%d}`, 1+i%9)),
		})
	}

	for g := 0; g < 5; g++ {
		members := make([]models.UserRef, 0, 4)
		for m := 0; m < 4; m++ {
			members = append(members, models.UserRef{ID: ids[(g*2+m)%len(ids)]})
		}
		s.AddGroup(models.Group{
			GroupID:     fmt.Sprintf("GRP-%03d", g+1),
			Name:        []string{"Fajr Circle", "Quran Weekly", "Ramadan Prep", "Dhikr Friends", "Family Halaqa"}[g],
			Description: "Community accountability group",
			Admin:       &models.UserRef{ID: members[0].ID},
			Members:     members,
			CreatedAt:   now.AddDate(0, 0, -10*(g+1)),
		}, []models.DefaultActivity{
			{Title: "Pray on time", Frequency: "daily", Points: 5},
			{Title: "Read two pages", Description: "Any portion of the Quran", Frequency: "daily", Points: 3},
		})
	}

	seedContent(s)

	for i, id := range append(append([]string{}, ids...), deletedUserID) {
		score := float64((len(ids) - i) * 7)
		for _, m := range models.Metrics {
			if m == models.MetricStreaks {
				continue
			}
			s.AddBoardEntry(m, BoardEntry{UserID: id, Score: score})
		}
		for _, t := range models.StreakTypes {
			s.AddStreakEntry(t, BoardEntry{UserID: id, Score: float64(i % 9), Longest: float64(9 + i)})
		}
	}

	for i, id := range append(ids[:4:4], deletedUserID) {
		date := now.AddDate(0, 0, -i)
		s.AddPrayerRecord(models.PrayerRecord{
			User:          &models.UserRef{ID: id},
			Date:          &date,
			FardhPrayers:  map[string]bool{"fajr": true, "dhuhr": i%2 == 0, "asr": true, "maghrib": true, "isha": i%3 != 0},
			SunnahPrayers: map[string]bool{"witr": i%2 == 1},
		})
		s.AddQuranReadingRecord(models.QuranReadingRecord{
			User:         &models.UserRef{ID: id},
			Date:         &date,
			PagesRead:    []int{10 + i, 11 + i},
			LastReadPage: utils.Ptr(11 + i),
		})
		s.AddQuranMemorizationRecord(models.QuranMemorizationRecord{
			User:               &models.UserRef{ID: id},
			MemorizedAyahs:     []json.RawMessage{json.RawMessage("1"), json.RawMessage("2")},
			NextAyahToMemorize: utils.Ptr(3 + i),
		})
	}
}

func seedContent(s *Store) {
	s.Duas.Create(models.Dua{Title: "Morning remembrance", ArabicText: "أَصْبَحْنَا وَأَصْبَحَ الْمُلْكُ لِلَّهِ", English: "We have entered the morning and the dominion belongs to Allah"})
	s.Duas.Create(models.Dua{Title: "Before sleeping", ArabicText: "بِاسْمِكَ اللَّهُمَّ أَمُوتُ وَأَحْيَا", English: "In Your name, O Allah, I die and I live"})

	for _, n := range []string{"SubhanAllah", "Alhamdulillah", "Allahu Akbar", "Astaghfirullah", "La ilaha illallah"} {
		s.DhikrTypes.Create(models.DhikrType{Name: n})
	}

	s.FastingTypes.Create(models.FastingType{Name: "monday_thursday", DisplayName: "Monday & Thursday", Description: "Sunnah weekly fasts"})
	s.FastingTypes.Create(models.FastingType{Name: "ayyam_al_bid", DisplayName: "White Days", Description: "13th, 14th and 15th of each lunar month"})

	surahs := []struct {
		number int
		name   string
		ayahs  int
	}{
		{1, "Al-Fatiha", 7}, {2, "Al-Baqarah", 20}, {3, "Al-Imran", 20}, {4, "An-Nisa", 20},
		{18, "Al-Kahf", 10}, {36, "Yasin", 12}, {55, "Ar-Rahman", 13}, {67, "Al-Mulk", 30},
	}
	for i, surah := range surahs {
		portion := models.QuranPortion{
			Title:       surah.name,
			SurahNumber: utils.Ptr(surah.number),
			SurahName:   surah.name,
			AyahFrom:    utils.Ptr(1),
			AyahTo:      utils.Ptr(surah.ayahs),
			Order:       i,
		}
		s.QuranReading.Create(portion)
		s.QuranMemorization.Create(portion)
	}
}
