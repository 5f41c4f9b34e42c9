package models

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
)

// FardhPrayers in daily order.
var FardhPrayers = []string{"fajr", "dhuhr", "asr", "maghrib", "isha"}

type PrayerRecord struct {
	ID            string          `json:"id"`
	User          *UserRef        `json:"user_id"`
	Date          *time.Time      `json:"date,omitempty"`
	FardhPrayers  map[string]bool `json:"fardh_prayers,omitempty"`
	SunnahPrayers map[string]bool `json:"sunnah_prayers,omitempty"`
}

// FardhSummary lists the completed fardh prayers, e.g. "Fajr, Asr".
func (p PrayerRecord) FardhSummary() string {
	var done []string
	for _, name := range FardhPrayers {
		if p.FardhPrayers[name] {
			done = append(done, strings.ToUpper(name[:1])+name[1:])
		}
	}
	if len(done) == 0 {
		return "—"
	}
	return strings.Join(done, ", ")
}

// SunnahCount is the number of sunnah prayers marked done.
func (p PrayerRecord) SunnahCount() int {
	n := 0
	for _, done := range p.SunnahPrayers {
		if done {
			n++
		}
	}
	return n
}

type QuranReadingRecord struct {
	ID           string     `json:"id"`
	User         *UserRef   `json:"user_id"`
	Date         *time.Time `json:"date,omitempty"`
	PagesRead    []int      `json:"pages_read"`
	LastReadPage *int       `json:"last_read_page,omitempty"`
}

type QuranMemorizationRecord struct {
	ID                 string            `json:"id"`
	User               *UserRef          `json:"user_id"`
	MemorizedAyahs     []json.RawMessage `json:"memorized_ayahs"`
	NextAyahToMemorize *int              `json:"next_ayah_to_memorize,omitempty"`
}

// Records is a read-only tracking records response.
type Records[T any] struct {
	Items []T
	Total int
}

type recordsMeta struct {
	Total int `json:"total"`
}

// DecodeRecords decodes {"records": [...], "total": n}.
func DecodeRecords[T any](raw []byte) (Records[T], error) {
	items, err := DecodeItems[T](raw, FieldRecords)
	if err != nil {
		return Records[T]{}, err
	}
	var meta recordsMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Records[T]{}, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "records total: %v", err)
	}
	return Records[T]{Items: items, Total: meta.Total}, nil
}
