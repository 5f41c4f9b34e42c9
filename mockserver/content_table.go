package mockserver

import (
	"sync"

	"github.com/google/uuid"
)

// ContentTable is an ordered in-memory collection of content items.
type ContentTable[T any] struct {
	lock  sync.RWMutex
	items []T
	id    func(*T) *string
}

func NewContentTable[T any](id func(*T) *string) *ContentTable[T] {
	return &ContentTable[T]{id: id}
}

func (t *ContentTable[T]) List() []T {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return append(make([]T, 0, len(t.items)), t.items...)
}

// Create appends item with a fresh id and returns the stored copy.
func (t *ContentTable[T]) Create(item T) T {
	t.lock.Lock()
	defer t.lock.Unlock()

	*t.id(&item) = uuid.New().String()
	t.items = append(t.items, item)
	return item
}

func (t *ContentTable[T]) Update(id string, item T) (T, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for i := range t.items {
		if *t.id(&t.items[i]) == id {
			*t.id(&item) = id
			t.items[i] = item
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (t *ContentTable[T]) Delete(id string) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	for i := range t.items {
		if *t.id(&t.items[i]) == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
