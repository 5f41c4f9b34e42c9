package resource

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/hisabi-admin/admin"
	"github.com/jrsteele09/hisabi-admin/models"
)

// ContentController is the list and editor of one content collection.
type ContentController[T models.Validator] struct {
	*ListController[T]
	content  admin.Content[T]
	mutation *Mutation
	noun     string
}

func newContentController[T models.Validator](s *Service, c admin.Content[T], noun string) *ContentController[T] {
	pageSize := 0
	if c.Paginated() {
		pageSize = s.api.PageSize(string(c.Kind()))
	}
	list := NewListController(s.cache, ContentKey(c.Kind()), pageSize,
		func(ctx context.Context, page int, _ url.Values) (models.Page[T], error) {
			return c.List(ctx, page)
		})
	return &ContentController[T]{ListController: list, content: c, mutation: s.mutation, noun: noun}
}

func (s *Service) Duas() *ContentController[models.Dua] {
	return newContentController(s, s.api.Duas(), "dua")
}

func (s *Service) DhikrTypes() *ContentController[models.DhikrType] {
	return newContentController(s, s.api.DhikrTypes(), "dhikr type")
}

func (s *Service) FastingTypes() *ContentController[models.FastingType] {
	return newContentController(s, s.api.FastingTypes(), "fasting type")
}

func (s *Service) QuranReadingContent() *ContentController[models.QuranPortion] {
	return newContentController(s, s.api.QuranReadingContent(), "portion")
}

func (s *Service) QuranMemorizationContent() *ContentController[models.QuranPortion] {
	return newContentController(s, s.api.QuranMemorizationContent(), "portion")
}

func (c *ContentController[T]) Kind() admin.ContentKind {
	return c.content.Kind()
}

func (c *ContentController[T]) Create(ctx context.Context, item T) error {
	return c.mutation.Submit(ctx, item,
		func(ctx context.Context) error { return c.content.Create(ctx, item) },
		Messages{Success: capitalize(c.noun) + " created successfully", Failure: "Failed to create " + c.noun},
		c.Resource())
}

func (c *ContentController[T]) Update(ctx context.Context, id string, item T) error {
	return c.mutation.Submit(ctx, item,
		func(ctx context.Context) error { return c.content.Update(ctx, id, item) },
		Messages{Success: capitalize(c.noun) + " updated successfully", Failure: "Failed to update " + c.noun},
		c.Resource())
}

// Delete confirms with the user and removes the item labelled label.
func (c *ContentController[T]) Delete(ctx context.Context, id, label string) error {
	if label == "" {
		label = "this " + c.noun
	}
	return c.mutation.Delete(ctx, "Are you sure you want to delete "+label+"? This action cannot be undone.",
		func(ctx context.Context) error { return c.content.Delete(ctx, id) },
		Messages{Success: capitalize(c.noun) + " deleted successfully", Failure: "Failed to delete " + c.noun},
		c.Resource())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
