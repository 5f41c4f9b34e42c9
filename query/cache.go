package query

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// Snapshot is a read-only copy of a cache entry.
type Snapshot struct {
	Key       Key
	Data      any
	Err       error
	Status    Status
	UpdatedAt time.Time
	Stale     bool
}

// HasData reports whether a successful payload has ever been stored.
func (s Snapshot) HasData() bool {
	return !s.UpdatedAt.IsZero()
}

// FetchFunc performs the actual read for a key.
type FetchFunc func(ctx context.Context) (any, error)

type Options struct {
	// Retries is the number of automatic retries after a failed read.
	Retries int
	// StaleTime is how long a successful result is served without refetching.
	StaleTime time.Duration
	// RetryDelay is the pause before each retry.
	RetryDelay time.Duration
	// ShouldRetry filters which errors are retried. Nil retries every error.
	ShouldRetry func(error) bool
	// Now returns the current time. It can be overridden in tests.
	Now func() time.Time
}

type entry struct {
	data      any
	err       error
	status    Status
	updatedAt time.Time

	// issued is the generation of the newest request started for the key,
	// inflight the generation that new callers may still join (0 if none).
	issued   uint64
	inflight uint64
	// invalidatedAt marks results from generations <= it as stale.
	invalidatedAt uint64
	invalidated   bool
}

// Cache stores query results per Key. Identical concurrent reads share one
// request, a result is committed only if no newer request has been issued
// for its key, and Invalidate is the only way to mark entries stale.
type Cache struct {
	opts Options

	mu      sync.Mutex
	entries map[Key]*entry
	subs    map[Key]map[*Subscription]struct{}

	group   singleflight.Group
	flights map[string]*flight
}

// flight is the context a shared request runs under. It is canceled only
// once every caller waiting on the request has gone away.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func New(opts Options) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Cache{
		opts:    opts,
		entries: make(map[Key]*entry),
		subs:    make(map[Key]map[*Subscription]struct{}),
		flights: make(map[string]*flight),
	}
}

// Fetch returns the cached value for key when it is fresh, joins an
// in-flight request for the same key, or starts a new one with fn.
//
// A caller always receives the outcome of the request it waited on, even
// if that outcome lost the race and was not committed to the cache. A
// caller leaving early does not cancel the request for callers that joined it.
func (c *Cache) Fetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if c.freshLocked(e) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	gen := e.inflight
	if gen == 0 {
		e.issued++
		gen = e.issued
		e.inflight = gen
		e.status = StatusLoading
	}
	flightKey := key.String() + "#" + strconv.FormatUint(gen, 10)
	f := c.joinLocked(ctx, flightKey)
	snap := c.snapshotLocked(key, e)
	c.mu.Unlock()
	c.publish(snap)
	defer c.leave(flightKey, f)

	ch := c.group.DoChan(flightKey, func() (any, error) {
		v, err := c.run(f.ctx, key, fn)
		if err != nil && f.ctx.Err() != nil {
			// Every waiting caller went away; leave the entry as it was.
			c.abandon(key, gen)
			return v, err
		}
		c.commit(key, gen, v, err)
		return v, err
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// joinLocked registers the caller as a waiter on flightKey. The shared
// context keeps the first caller's values but not its cancellation.
func (c *Cache) joinLocked(ctx context.Context, flightKey string) *flight {
	f, ok := c.flights[flightKey]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[flightKey] = f
	}
	f.waiters++
	return f
}

func (c *Cache) leave(flightKey string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[flightKey] == f {
		delete(c.flights, flightKey)
	}
}

// Refetch ignores freshness and always issues a new request for key.
func (c *Cache) Refetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.inflight = 0
	e.invalidated = true
	e.invalidatedAt = e.issued
	c.mu.Unlock()
	return c.Fetch(ctx, key, fn)
}

// Invalidate marks every entry whose resource matches prefix as stale and
// notifies their subscribers so mounted views refetch. It returns the
// number of entries affected.
func (c *Cache) Invalidate(prefix string) int {
	var snaps []Snapshot

	c.mu.Lock()
	for key, e := range c.entries {
		if !key.HasPrefix(prefix) {
			continue
		}
		e.invalidated = true
		e.invalidatedAt = e.issued
		// Requests already in flight may carry pre-mutation data; later
		// callers must not join them.
		e.inflight = 0
		snaps = append(snaps, c.snapshotLocked(key, e))
	}
	c.mu.Unlock()

	for _, s := range snaps {
		c.publish(s)
	}
	log.Debug().Str("prefix", prefix).Int("entries", len(snaps)).Msg("cache invalidated")
	return len(snaps)
}

// Peek returns the current state of key without fetching.
func (c *Cache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key}
	}
	return c.snapshotLocked(key, e)
}

// Subscribe registers listener for state changes of key.
func (c *Cache) Subscribe(key Key, listener Listener) *Subscription {
	s := &Subscription{key: key, listener: listener, cache: c}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs[key] == nil {
		c.subs[key] = make(map[*Subscription]struct{})
	}
	c.subs[key][s] = struct{}{}
	return s
}

func (c *Cache) unsubscribe(s *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.subs[s.key], s)
	if len(c.subs[s.key]) == 0 {
		delete(c.subs, s.key)
	}
}

func (c *Cache) run(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	var (
		v   any
		err error
	)
	for attempt := 0; ; attempt++ {
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= c.opts.Retries || ctx.Err() != nil {
			break
		}
		if c.opts.ShouldRetry != nil && !c.opts.ShouldRetry(err) {
			break
		}
		log.Debug().Err(err).Str("key", key.String()).Int("attempt", attempt+1).Msg("retrying query")
		if c.opts.RetryDelay > 0 {
			select {
			case <-time.After(c.opts.RetryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("[Cache Fetch] %s: %w", key, ctx.Err())
			}
		}
	}
	return nil, err
}

// commit stores the outcome of generation gen unless a newer request for
// the same key has been issued in the meantime.
func (c *Cache) commit(key Key, gen uint64, v any, err error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if e.inflight == gen {
		e.inflight = 0
	}
	if gen != e.issued {
		c.mu.Unlock()
		log.Debug().Str("key", key.String()).Uint64("generation", gen).Uint64("latest", e.issued).Msg("discarding superseded result")
		return
	}

	if err != nil {
		// Keep the previous payload so a view can still show it next to the error.
		e.err = err
		e.status = StatusError
	} else {
		e.data = v
		e.err = nil
		e.status = StatusSuccess
		e.updatedAt = c.opts.Now()
	}
	// A request issued after the invalidation settles it either way. A
	// failed one stays an error until the caller asks again.
	e.invalidated = gen <= e.invalidatedAt
	snap := c.snapshotLocked(key, e)
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Cache) abandon(key Key, gen uint64) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if e.inflight == gen {
		e.inflight = 0
	}
	if gen != e.issued || e.status != StatusLoading {
		c.mu.Unlock()
		return
	}
	e.status = StatusIdle
	if !e.updatedAt.IsZero() {
		e.status = StatusSuccess
	}
	snap := c.snapshotLocked(key, e)
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.status != StatusSuccess || e.invalidated {
		return false
	}
	return c.opts.Now().Sub(e.updatedAt) < c.opts.StaleTime
}

func (c *Cache) publish(snap Snapshot) {
	c.mu.Lock()
	subs := make([]*Subscription, 0, len(c.subs[snap.Key]))
	for s := range c.subs[snap.Key] {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s.deliver(snap)
	}
}

func (c *Cache) snapshotLocked(key Key, e *entry) Snapshot {
	stale := e.invalidated
	if e.status == StatusSuccess && c.opts.Now().Sub(e.updatedAt) >= c.opts.StaleTime {
		stale = true
	}
	return Snapshot{
		Key:       key,
		Data:      e.data,
		Err:       e.err,
		Status:    e.status,
		UpdatedAt: e.updatedAt,
		Stale:     stale,
	}
}
