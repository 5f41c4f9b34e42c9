package resource

import (
	"context"

	"github.com/jrsteele09/hisabi-admin/query"
)

// ItemController binds a single-value read (a detail record, the dashboard
// stats, a leaderboard) to one cache key.
type ItemController[T any] struct {
	cache   *query.Cache
	key     query.Key
	fetch   func(context.Context) (T, error)
	binding *binding[T]
}

func NewItemController[T any](cache *query.Cache, key query.Key, fetch func(context.Context) (T, error)) *ItemController[T] {
	return &ItemController[T]{
		cache:   cache,
		key:     key,
		fetch:   fetch,
		binding: &binding[T]{cache: cache},
	}
}

func (c *ItemController[T]) Key() query.Key {
	return c.key
}

// Load reads through the cache. A fresh entry is returned without a request.
func (c *ItemController[T]) Load(ctx context.Context) (View[T], error) {
	v, err := query.Get(ctx, c.cache, c.key, c.fetch)
	return settle(c.cache.Peek(c.key), v, err), err
}

// Reload bypasses freshness and always issues a request.
func (c *ItemController[T]) Reload(ctx context.Context) (View[T], error) {
	raw, err := c.cache.Refetch(ctx, c.key, func(ctx context.Context) (any, error) { return c.fetch(ctx) })
	v, _ := raw.(T)
	return settle(c.cache.Peek(c.key), v, err), err
}

// Mount delivers every state change of the key to listener until Unmount.
func (c *ItemController[T]) Mount(ctx context.Context, listener func(View[T])) {
	c.binding.mount(ctx, c.key, listener, func(ctx context.Context) { _, _ = c.Load(ctx) })
}

func (c *ItemController[T]) Unmount() {
	c.binding.unmount()
}

func (c *ItemController[T]) Mounted() bool {
	return c.binding.mounted()
}
