package query

import (
	"context"
	"fmt"
)

// Get is Fetch with a typed result.
func Get[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("[query Get] %s: cached %T is not %T", key, v, zero)
	}
	return t, nil
}

// Data returns the typed payload held by a snapshot, if any.
func Data[T any](s Snapshot) (T, bool) {
	t, ok := s.Data.(T)
	return t, ok
}
