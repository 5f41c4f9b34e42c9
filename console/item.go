package console

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"gopkg.in/yaml.v3"
)

// ReadItem decodes one content item from YAML or JSON. Field names are the
// wire names, e.g. arabic_text or surah_number.
func ReadItem[T any](r io.Reader) (T, error) {
	var item T

	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return item, apperrors.Wrapf(apperrors.ErrRequiredField, "[ReadItem] empty input")
		}
		return item, fmt.Errorf("[ReadItem] decode: %w", err)
	}
	// Round trip through JSON so the models' json tags apply.
	data, err := json.Marshal(doc)
	if err != nil {
		return item, fmt.Errorf("[ReadItem] encode: %w", err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("[ReadItem] %w", err)
	}
	return item, nil
}
