// Package query is the server-state cache behind every screen.
//
// Guarantees:
//   - concurrent fetches of one key share a single backend call;
//   - Invalidate marks every key of a resource kind stale and refetches it;
//   - a stale value is served while its refetch runs;
//   - the most recently issued fetch of a key wins; a superseded response
//     that arrives late is discarded;
//   - a caller that stops waiting does not cancel the fetch.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value of a key from the backend.
type Fetcher func(ctx context.Context) (any, error)

// Result is a cached value. Stale is set when the value is served while a
// refetch is pending.
type Result struct {
	Value     any
	Stale     bool
	FetchedAt time.Time
}

// Observer receives cache events, typically for metrics.
type Observer interface {
	Lookup(kind, result string)
	Coalesced(kind string)
	Discarded(kind string)
}

// Scheduler runs background refetches. Schedule returns false when the job
// was not accepted.
type Scheduler interface {
	Schedule(key string, job func(ctx context.Context)) bool
}

type entry struct {
	key        Key
	value      any
	hasValue   bool
	fetchedAt  time.Time
	invalid    bool
	// refreshing is the id of the pending background refetch, 0 when none.
	refreshing uint64
	// issued is the sequence number of the newest fetch whose response may
	// be applied; applied is the one currently held.
	issued  uint64
	applied uint64
	fetch   Fetcher
}

// Cache is a per-session query cache. The zero value is not usable; call
// New.
type Cache struct {
	group      singleflight.Group
	staleAfter time.Duration
	now        func() time.Time
	scheduler  Scheduler
	observer   Observer
	log        zerolog.Logger
	// background counts refetches scheduled but not yet settled.
	background sync.WaitGroup

	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleAfter makes values stale after d even without invalidation.
// d <= 0 keeps values fresh until invalidated.
func WithStaleAfter(d time.Duration) Option { return func(c *Cache) { c.staleAfter = d } }

func WithScheduler(s Scheduler) Option { return func(c *Cache) { c.scheduler = s } }

func WithObserver(o Observer) Option { return func(c *Cache) { c.observer = o } }

func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

func WithLogger(log zerolog.Logger) Option { return func(c *Cache) { c.log = log } }

func New(opts ...Option) *Cache {
	c := &Cache{
		now:       time.Now,
		scheduler: goScheduler{},
		observer:  nopObserver{},
		log:       zerolog.Nop(),
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the cached value of key, fetching it when absent. A stale
// value is returned immediately with Result.Stale set and a background
// refetch is started.
func (c *Cache) Query(ctx context.Context, key Key, fetch Fetcher) (Result, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetch = fetch
	if e.hasValue {
		res := Result{Value: e.value, FetchedAt: e.fetchedAt}
		fresh := !e.invalid && !c.expiredLocked(e)
		c.mu.Unlock()

		if fresh {
			c.observer.Lookup(key.Kind, "hit")
			return res, nil
		}
		c.observer.Lookup(key.Kind, "stale")
		c.refreshAsync(key)
		res.Stale = true
		return res, nil
	}
	c.mu.Unlock()

	c.observer.Lookup(key.Kind, "miss")
	return c.load(ctx, key, fetch)
}

// Refetch issues a new fetch for key even if one is in flight. The older
// fetch is superseded: its response will not be applied.
func (c *Cache) Refetch(ctx context.Context, key Key, fetch Fetcher) (Result, error) {
	c.mu.Lock()
	c.entryLocked(key).fetch = fetch
	c.mu.Unlock()

	c.group.Forget(key.String())
	return c.load(ctx, key, fetch)
}

// Invalidate marks every key of the given kinds stale, supersedes their
// in-flight fetches and schedules a refetch of each.
func (c *Cache) Invalidate(kinds ...string) {
	want := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		want[k] = struct{}{}
	}

	var keys []Key
	c.mu.Lock()
	for id, e := range c.entries {
		if _, ok := want[e.key.Kind]; !ok {
			continue
		}
		c.seq++
		e.issued = c.seq
		e.invalid = true
		e.refreshing = 0
		c.group.Forget(id)
		if e.fetch != nil {
			keys = append(keys, e.key)
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.refreshAsync(k)
	}
}

// Reset drops every entry. Fetches still in flight will not repopulate the
// cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	for id := range c.entries {
		c.group.Forget(id)
	}
	c.entries = make(map[string]*entry)
}

// Peek returns the cached value of key without fetching.
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.hasValue {
		return Result{}, false
	}
	return Result{Value: e.value, FetchedAt: e.fetchedAt, Stale: e.invalid || c.expiredLocked(e)}, true
}

// Len reports the number of keys held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) load(ctx context.Context, key Key, fetch Fetcher) (Result, error) {
	ch := c.start(ctx, key, fetch)
	select {
	case <-ctx.Done():
		// Interest abandoned; the fetch keeps running and still settles.
		return Result{}, ctx.Err()
	case r := <-ch:
		return c.result(key, r)
	}
}

// start joins or begins the fetch of key. The fetch runs detached from ctx.
func (c *Cache) start(ctx context.Context, key Key, fetch Fetcher) <-chan singleflight.Result {
	detached := context.WithoutCancel(ctx)
	return c.group.DoChan(key.String(), func() (any, error) {
		seq := c.issue(key)
		v, err := fetch(detached)
		return c.settle(key, seq, v, err)
	})
}

func (c *Cache) result(key Key, r singleflight.Result) (Result, error) {
	if r.Shared {
		c.observer.Coalesced(key.Kind)
	}
	if r.Err != nil {
		return Result{}, r.Err
	}
	return r.Val.(Result), nil
}

func (c *Cache) issue(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.entryLocked(key).issued = c.seq
	return c.seq
}

func (c *Cache) settle(key Key, seq uint64, v any, err error) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || seq != e.issued {
		c.observer.Discarded(key.Kind)
		if err != nil {
			return Result{}, err
		}
		if ok && e.hasValue && e.applied > seq {
			return Result{Value: e.value, FetchedAt: e.fetchedAt, Stale: e.invalid}, nil
		}
		return Result{Value: v, FetchedAt: c.now()}, nil
	}
	if err != nil {
		// Keep whatever value is held; it stays stale.
		return Result{}, err
	}

	e.value = v
	e.hasValue = true
	e.fetchedAt = c.now()
	e.invalid = false
	e.applied = seq
	return Result{Value: v, FetchedAt: e.fetchedAt}, nil
}

// refreshAsync schedules a refetch of key. The scheduled job only starts
// the fetch; waiting for the backend happens on its own goroutine so a hung
// request never holds a scheduler worker.
func (c *Cache) refreshAsync(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || e.fetch == nil || e.refreshing != 0 {
		c.mu.Unlock()
		return
	}
	c.seq++
	id := c.seq
	e.refreshing = id
	fetch := e.fetch
	c.mu.Unlock()

	c.background.Add(1)
	done := func() {
		c.mu.Lock()
		if cur, ok := c.entries[key.String()]; ok && cur == e && e.refreshing == id {
			e.refreshing = 0
		}
		c.mu.Unlock()
		c.background.Done()
	}

	accepted := c.scheduler.Schedule(key.String(), func(ctx context.Context) {
		ch := c.start(ctx, key, fetch)
		go func() {
			defer done()
			if _, err := c.result(key, <-ch); err != nil {
				c.log.Debug().Err(err).Str("key", key.String()).Msg("background refetch failed")
			}
		}()
	})
	if !accepted {
		done()
	}
}

// Wait blocks until every background refetch scheduled so far has settled.
// A refetch whose job the scheduler never runs is never settled.
func (c *Cache) Wait() { c.background.Wait() }

func (c *Cache) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		// Anything issued before this entry existed must not land in it.
		c.seq++
		e = &entry{key: key, issued: c.seq}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) expiredLocked(e *entry) bool {
	return c.staleAfter > 0 && c.now().Sub(e.fetchedAt) >= c.staleAfter
}

// Get is Query with a typed value.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	res, err := c.Query(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, false, err
	}
	v, ok := res.Value.(T)
	if !ok {
		return zero, false, fmt.Errorf("query: cached value for %s has type %T", key, res.Value)
	}
	return v, res.Stale, nil
}

type goScheduler struct{}

func (goScheduler) Schedule(_ string, job func(ctx context.Context)) bool {
	go job(context.Background())
	return true
}

type nopObserver struct{}

func (nopObserver) Lookup(string, string) {}
func (nopObserver) Coalesced(string)      {}
func (nopObserver) Discarded(string)      {}
