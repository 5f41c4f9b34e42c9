package admin

import (
	"context"

	"github.com/jrsteele09/hisabi-admin/models"
)

// ContentKind names one of the editable content collections.
type ContentKind string

const (
	KindDuas              ContentKind = "duas"
	KindDhikrTypes        ContentKind = "dhikr-types"
	KindFastingTypes      ContentKind = "fasting-types"
	KindQuranReading      ContentKind = "quran-reading-content"
	KindQuranMemorization ContentKind = "quran-memorization-content"
)

var ContentKinds = []ContentKind{KindDuas, KindDhikrTypes, KindFastingTypes, KindQuranReading, KindQuranMemorization}

func (k ContentKind) Valid() bool {
	for _, c := range ContentKinds {
		if c == k {
			return true
		}
	}
	return false
}

// Content is the CRUD surface of one content collection.
type Content[T models.Validator] struct {
	api   *API
	kind  ContentKind
	field string
	limit int
}

func newContent[T models.Validator](a *API, kind ContentKind, field string) Content[T] {
	return Content[T]{api: a, kind: kind, field: field, limit: a.paging.GetPageSize(string(kind))}
}

func (a *API) Duas() Content[models.Dua] {
	return newContent[models.Dua](a, KindDuas, models.FieldDuas)
}

func (a *API) DhikrTypes() Content[models.DhikrType] {
	return newContent[models.DhikrType](a, KindDhikrTypes, models.FieldDhikrTypes)
}

func (a *API) FastingTypes() Content[models.FastingType] {
	return newContent[models.FastingType](a, KindFastingTypes, models.FieldFastingTypes)
}

func (a *API) QuranReadingContent() Content[models.QuranPortion] {
	return newContent[models.QuranPortion](a, KindQuranReading, models.FieldContents)
}

func (a *API) QuranMemorizationContent() Content[models.QuranPortion] {
	return newContent[models.QuranPortion](a, KindQuranMemorization, models.FieldContents)
}

func (c Content[T]) Kind() ContentKind {
	return c.kind
}

// Paginated reports whether the collection is served in pages.
func (c Content[T]) Paginated() bool {
	return c.limit > 0
}

func (c Content[T]) collection() string {
	return "/admin/" + string(c.kind)
}

// List returns one page of the collection. Unpaginated collections ignore
// page and return everything with zero page metadata.
func (c Content[T]) List(ctx context.Context, page int) (models.Page[T], error) {
	if !c.Paginated() {
		items, err := getItems[T](ctx, c.api.gw, c.collection(), nil, c.field)
		return models.Page[T]{Items: items}, err
	}
	return getPage[T](ctx, c.api.gw, c.collection(), pageQuery(page, c.limit), c.field)
}

func (c Content[T]) Create(ctx context.Context, item T) error {
	return c.api.gw.Post(ctx, c.collection(), item, nil)
}

func (c Content[T]) Update(ctx context.Context, id string, item T) error {
	return c.api.gw.Put(ctx, itemPath(c.collection(), id), item, nil)
}

func (c Content[T]) Delete(ctx context.Context, id string) error {
	return c.api.gw.Delete(ctx, itemPath(c.collection(), id), nil)
}
