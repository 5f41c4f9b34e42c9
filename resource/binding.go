package resource

import (
	"context"
	"sync"

	"github.com/jrsteele09/hisabi-admin/query"
	"github.com/rs/zerolog/log"
)

// binding ties a mounted view to the cache entry of its current key.
// Invalidated entries are refetched while the view is mounted, and no
// update reaches the listener once Unmount has returned. Listeners must
// not call Unmount or Load synchronously.
type binding[T any] struct {
	cache *query.Cache

	// delivering is held while the listener runs so unmount can wait it out.
	delivering sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	listener func(View[T])
	sub      *query.Subscription
	refetch  func(context.Context)
}

func (b *binding[T]) mount(ctx context.Context, key query.Key, listener func(View[T]), refetch func(context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ctx = ctx
	b.listener = listener
	b.refetch = refetch
	b.subscribeLocked(key)
}

// rebind moves a mounted view to a new key after its parameters changed.
func (b *binding[T]) rebind(key query.Key) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listener == nil {
		return
	}
	b.subscribeLocked(key)
}

func (b *binding[T]) unmount() {
	b.delivering.Lock()
	defer b.delivering.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	b.listener = nil
	b.refetch = nil
}

func (b *binding[T]) mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener != nil
}

func (b *binding[T]) subscribeLocked(key query.Key) {
	if b.sub != nil {
		if b.sub.Key() == key {
			return
		}
		b.sub.Close()
	}
	b.sub = b.cache.Subscribe(key, b.deliver)
}

func (b *binding[T]) deliver(snap query.Snapshot) {
	b.delivering.Lock()
	defer b.delivering.Unlock()

	b.mu.Lock()
	listener, refetch, ctx := b.listener, b.refetch, b.ctx
	current := b.sub != nil && b.sub.Key() == snap.Key
	b.mu.Unlock()

	if listener == nil || !current {
		return
	}
	listener(viewOf[T](snap))

	if snap.Stale && snap.Status != query.StatusLoading && refetch != nil && ctx.Err() == nil {
		log.Debug().Str("key", snap.Key.String()).Msg("refetching invalidated view")
		go refetch(ctx)
	}
}
