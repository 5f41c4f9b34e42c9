package models

import (
	"bytes"
	"encoding/json"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
)

// List field names used by the backend envelopes.
const (
	FieldUsers        = "users"
	FieldGroups       = "groups"
	FieldLogs         = "logs"
	FieldDuas         = "duas"
	FieldDhikrTypes   = "dhikr_types"
	FieldFastingTypes = "fasting_types"
	FieldContents     = "contents"
	FieldRecords      = "records"
	FieldLeaderboard  = "leaderboard"
)

// Page is one page of a list response. Page, TotalPages and Total are
// whatever the server reported; they are never derived from Items.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// Empty reports whether the page carries no items.
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}

// HasNext reports whether the server announced a page after this one.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

type pageMeta struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// DecodePage decodes a list envelope whose items live under field, e.g.
// {"users": [...], "page": 1, "total_pages": 3, "total": 42}.
// A missing or non-array field is ErrUnexpectedShape. A null field is an
// empty page.
func DecodePage[T any](raw []byte, field string) (Page[T], error) {
	var page Page[T]

	items, err := listField(raw, field)
	if err != nil {
		return page, err
	}
	if err := json.Unmarshal(items, &page.Items); err != nil {
		return page, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "%q items: %v", field, err)
	}

	var meta pageMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return page, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "%q page metadata: %v", field, err)
	}
	page.Page = meta.Page
	page.TotalPages = meta.TotalPages
	page.Total = meta.Total
	return page, nil
}

// DecodeItems decodes an unpaginated list envelope.
func DecodeItems[T any](raw []byte, field string) ([]T, error) {
	items, err := listField(raw, field)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(items, &out); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "%q items: %v", field, err)
	}
	return out, nil
}

func listField(raw []byte, field string) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "envelope: %v", err)
	}
	items, ok := envelope[field]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "missing %q", field)
	}
	items = bytes.TrimSpace(items)
	switch {
	case bytes.Equal(items, []byte("null")):
		return json.RawMessage("[]"), nil
	case len(items) == 0 || items[0] != '[':
		return nil, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "%q is not an array", field)
	}
	return items, nil
}
