package resource

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/query"
)

// ListFetch reads one page of a list for the given 1-based page and filters.
type ListFetch[T any] func(ctx context.Context, page int, filters url.Values) (models.Page[T], error)

// ListController holds the page and filter state of a list view and keys
// its cache entry on (resource, page, limit, filters).
type ListController[T any] struct {
	cache    *query.Cache
	resource string
	pageSize int
	fetch    ListFetch[T]
	binding  *binding[models.Page[T]]

	mu      sync.Mutex
	page    int
	filters url.Values
}

// NewListController creates a list on page 1. A pageSize of 0 marks an
// unpaginated list.
func NewListController[T any](cache *query.Cache, resource string, pageSize int, fetch func(ctx context.Context, page int, filters url.Values) (models.Page[T], error)) *ListController[T] {
	return &ListController[T]{
		cache:    cache,
		resource: resource,
		pageSize: pageSize,
		fetch:    fetch,
		binding:  &binding[models.Page[T]]{cache: cache},
		page:     1,
		filters:  url.Values{},
	}
}

func (l *ListController[T]) Resource() string {
	return l.resource
}

func (l *ListController[T]) Paginated() bool {
	return l.pageSize > 0
}

func (l *ListController[T]) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Filter returns the current value of filter name.
func (l *ListController[T]) Filter(name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters.Get(name)
}

// SetPage navigates to page explicitly. Pages below 1 clamp to 1.
func (l *ListController[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
	l.binding.rebind(l.Key())
}

// SetFilter changes one filter and returns to page 1. An empty value clears it.
func (l *ListController[T]) SetFilter(name, value string) {
	l.mu.Lock()
	if value == "" {
		l.filters.Del(name)
	} else {
		l.filters.Set(name, value)
	}
	l.page = 1
	l.mu.Unlock()
	l.binding.rebind(l.Key())
}

func (l *ListController[T]) Key() query.Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keyLocked()
}

func (l *ListController[T]) keyLocked() query.Key {
	params := url.Values{}
	for k, vs := range l.filters {
		params[k] = append([]string(nil), vs...)
	}
	if l.pageSize > 0 {
		params.Set("page", strconv.Itoa(l.page))
		params.Set("limit", strconv.Itoa(l.pageSize))
	}
	return query.NewKey(l.resource, params)
}

// Load reads the current page through the cache.
func (l *ListController[T]) Load(ctx context.Context) (View[models.Page[T]], error) {
	l.mu.Lock()
	key := l.keyLocked()
	page := l.page
	filters := url.Values{}
	for k, vs := range l.filters {
		filters[k] = append([]string(nil), vs...)
	}
	l.mu.Unlock()

	result, err := query.Get(ctx, l.cache, key, func(ctx context.Context) (models.Page[T], error) {
		return l.fetch(ctx, page, filters)
	})
	return settle(l.cache.Peek(key), result, err), err
}

// Mount delivers state changes of the current key to listener, following
// page and filter changes, until Unmount.
func (l *ListController[T]) Mount(ctx context.Context, listener func(View[models.Page[T]])) {
	l.binding.mount(ctx, l.Key(), listener, func(ctx context.Context) { _, _ = l.Load(ctx) })
}

func (l *ListController[T]) Unmount() {
	l.binding.unmount()
}

func (l *ListController[T]) Mounted() bool {
	return l.binding.mounted()
}
