package models

import (
	"strings"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
)

// Validator is implemented by every editable content item. Only presence
// of required fields is checked; everything else is up to the server.
type Validator interface {
	Validate() error
}

type Dua struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	ArabicText string `json:"arabic_text"`
	Malayalam  string `json:"malayalam,omitempty"`
	English    string `json:"english,omitempty"`
	Urdu       string `json:"urdu,omitempty"`
}

func (d Dua) Validate() error {
	return requireFields("title", d.Title, "arabic_text", d.ArabicText)
}

type DhikrType struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	ArabicText string `json:"arabic_text,omitempty"`
	Malayalam  string `json:"malayalam,omitempty"`
	English    string `json:"english,omitempty"`
	Urdu       string `json:"urdu,omitempty"`
}

func (d DhikrType) Validate() error {
	return requireFields("name", d.Name)
}

type FastingType struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

func (f FastingType) Validate() error {
	return requireFields("name", f.Name, "display_name", f.DisplayName)
}

// QuranPortion is a reading or memorization content portion.
type QuranPortion struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SurahNumber *int   `json:"surah_number"`
	SurahName   string `json:"surah_name,omitempty"`
	AyahFrom    *int   `json:"ayah_from"`
	AyahTo      *int   `json:"ayah_to"`
	ArabicText  string `json:"arabic_text,omitempty"`
	Order       int    `json:"order"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (q QuranPortion) Validate() error {
	return requireFields("title", q.Title)
}

// Active defaults to true when the server did not say otherwise.
func (q QuranPortion) Active() bool {
	return q.IsActive == nil || *q.IsActive
}

// requireFields takes name/value pairs and fails on the first blank value.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return apperrors.Wrapf(apperrors.ErrRequiredField, "%s", pairs[i])
		}
	}
	return nil
}
