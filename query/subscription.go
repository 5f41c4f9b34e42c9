package query

import "sync/atomic"

// Listener receives entry snapshots after every state change of a key.
type Listener func(Snapshot)

// Subscription binds a Listener to one key. After Close returns, the
// listener is never invoked again.
type Subscription struct {
	key      Key
	listener Listener
	closed   atomic.Bool
	cache    *Cache
}

func (s *Subscription) Key() Key {
	return s.key
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cache.unsubscribe(s)
}

func (s *Subscription) deliver(snap Snapshot) {
	if s.closed.Load() {
		return
	}
	s.listener(snap)
}
