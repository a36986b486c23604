package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// manualScheduler queues background jobs until the test runs them.
type manualScheduler struct {
	mu   sync.Mutex
	jobs []func(ctx context.Context)
}

func (s *manualScheduler) Schedule(_ string, job func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return true
}

func (s *manualScheduler) runAll() int {
	s.mu.Lock()
	jobs := s.jobs
	s.jobs = nil
	s.mu.Unlock()
	for _, job := range jobs {
		job(context.Background())
	}
	return len(jobs)
}

type countingObserver struct {
	mu        sync.Mutex
	lookups   map[string]int
	coalesced int
	discarded int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{lookups: map[string]int{}}
}

func (o *countingObserver) Lookup(_, result string) {
	o.mu.Lock()
	o.lookups[result]++
	o.mu.Unlock()
}

func (o *countingObserver) Coalesced(string) {
	o.mu.Lock()
	o.coalesced++
	o.mu.Unlock()
}

func (o *countingObserver) Discarded(string) {
	o.mu.Lock()
	o.discarded++
	o.mu.Unlock()
}

func constant(v any, calls *atomic.Int32) Fetcher {
	return func(context.Context) (any, error) {
		calls.Add(1)
		return v, nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewKey_Deterministic(t *testing.T) {
	type filter struct {
		Page   int    `json:"page"`
		Search string `json:"search,omitempty"`
	}
	a := NewKey("tickets", filter{Page: 2, Search: "refund"})
	b := NewKey("tickets", filter{Page: 2, Search: "refund"})
	if a != b {
		t.Fatalf("equal filters must give equal keys: %v vs %v", a, b)
	}
	if a == NewKey("tickets", filter{Page: 3, Search: "refund"}) {
		t.Fatalf("different filters must give different keys")
	}
	m1 := NewKey("users", map[string]string{"b": "2", "a": "1"})
	m2 := NewKey("users", map[string]string{"a": "1", "b": "2"})
	if m1 != m2 {
		t.Fatalf("map key order must not matter")
	}
	if NewKey("me", nil).String() != "me" {
		t.Fatalf("unexpected key string for nil params")
	}
}

func TestCache_CoalescesIdenticalFetches(t *testing.T) {
	obs := newCountingObserver()
	c := New(WithObserver(obs))
	key := NewKey("tickets", map[string]int{"page": 1})

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "page-1", nil
	}

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.Query(context.Background(), key, fetch)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = c.Query(context.Background(), key, fetch)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one network call, got %d", got)
	}
	for i := range results {
		if errs[i] != nil || results[i].Value != "page-1" {
			t.Fatalf("caller %d: unexpected result %+v, err %v", i, results[i], errs[i])
		}
	}
	if obs.coalesced != 2 {
		t.Fatalf("expected both callers to share the fetch, got %d", obs.coalesced)
	}
}

func TestCache_LatestIssuedWins(t *testing.T) {
	obs := newCountingObserver()
	c := New(WithObserver(obs))
	key := NewKey("tickets", map[string]string{"status": "new"})

	startedA := make(chan struct{})
	releaseA := make(chan struct{})
	fetchA := func(context.Context) (any, error) {
		close(startedA)
		<-releaseA
		return "A", nil
	}
	fetchB := func(context.Context) (any, error) { return "B", nil }

	resA := make(chan Result, 1)
	go func() {
		r, _ := c.Query(context.Background(), key, fetchA)
		resA <- r
	}()
	<-startedA

	b, err := c.Refetch(context.Background(), key, fetchB)
	if err != nil || b.Value != "B" {
		t.Fatalf("refetch: %+v, %v", b, err)
	}

	close(releaseA)
	a := <-resA

	cached, ok := c.Peek(key)
	if !ok || cached.Value != "B" {
		t.Fatalf("late response overwrote the newer one: %+v", cached)
	}
	if a.Value != "B" {
		t.Fatalf("superseded caller should see the newer value, got %v", a.Value)
	}
	if obs.discarded != 1 {
		t.Fatalf("expected one discarded response, got %d", obs.discarded)
	}
}

func TestCache_InvalidateKindServesStaleAndRefetches(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	ctx := context.Background()

	page1 := NewKey("departments", map[string]int{"page": 1})
	page2 := NewKey("departments", map[string]int{"page": 2})
	users := NewKey("users", nil)

	var deptCalls, userCalls atomic.Int32
	var version atomic.Value
	version.Store("v1")
	deptFetch := func(context.Context) (any, error) {
		deptCalls.Add(1)
		return version.Load(), nil
	}

	for _, k := range []Key{page1, page2} {
		if _, err := c.Query(ctx, k, deptFetch); err != nil {
			t.Fatalf("query %s: %v", k, err)
		}
	}
	if _, err := c.Query(ctx, users, constant("u", &userCalls)); err != nil {
		t.Fatalf("query users: %v", err)
	}

	version.Store("v2")
	c.Invalidate("departments")

	r, err := c.Query(ctx, page1, deptFetch)
	if err != nil {
		t.Fatalf("query after invalidate: %v", err)
	}
	if !r.Stale || r.Value != "v1" {
		t.Fatalf("expected stale v1 while refetching, got %+v", r)
	}
	if u, _ := c.Peek(users); u.Stale {
		t.Fatalf("other kinds must not be invalidated")
	}

	if n := sched.runAll(); n != 2 {
		t.Fatalf("expected refetch of both department keys, got %d jobs", n)
	}
	c.Wait()
	for _, k := range []Key{page1, page2} {
		got, _ := c.Peek(k)
		if got.Stale || got.Value != "v2" {
			t.Fatalf("%s: expected fresh v2, got %+v", k, got)
		}
	}
	if deptCalls.Load() != 4 || userCalls.Load() != 1 {
		t.Fatalf("unexpected call counts: departments=%d users=%d", deptCalls.Load(), userCalls.Load())
	}
}

func TestCache_InvalidateSupersedesInFlight(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	key := NewKey("tickets", nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Query(context.Background(), key, func(context.Context) (any, error) {
			close(started)
			<-release
			return "before-mutation", nil
		})
	}()
	<-started

	c.Invalidate("tickets")
	close(release)
	<-done

	if _, ok := c.Peek(key); ok {
		t.Fatalf("a response issued before invalidation must not be cached")
	}
}

func TestCache_AbandonDoesNotCancelFetch(t *testing.T) {
	c := New()
	key := NewKey("analytics", nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var sawCancel atomic.Bool
	fetch := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return "kpis", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Query(ctx, key, fetch)
		errc <- err
	}()
	<-started
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	waitFor(t, func() bool {
		_, ok := c.Peek(key)
		return ok
	})
	if sawCancel.Load() {
		t.Fatalf("fetch context must not be cancelled by the caller")
	}
}

func TestCache_ResetDropsLateResponses(t *testing.T) {
	c := New()
	key := NewKey("users", nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Query(context.Background(), key, func(context.Context) (any, error) {
			close(started)
			<-release
			return "previous user data", nil
		})
	}()
	<-started
	c.Reset()
	close(release)
	<-done

	if _, ok := c.Peek(key); ok {
		t.Fatalf("reset cache must not be repopulated by an older fetch")
	}
}

func TestCache_ErrorKeepsPreviousValue(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	key := NewKey("tickets", nil)
	ctx := context.Background()

	var calls atomic.Int32
	if _, err := c.Query(ctx, key, constant("ok", &calls)); err != nil {
		t.Fatalf("query: %v", err)
	}
	boom := errors.New("boom")
	if _, err := c.Refetch(ctx, key, func(context.Context) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, ok := c.Peek(key)
	if !ok || got.Value != "ok" {
		t.Fatalf("failed refetch must keep the cached value, got %+v", got)
	}
}

func TestCache_StaleAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sched := &manualScheduler{}
	c := New(WithStaleAfter(time.Minute), WithScheduler(sched), WithClock(func() time.Time { return now }))
	key := NewKey("kpis", nil)
	ctx := context.Background()

	var calls atomic.Int32
	_, _ = c.Query(ctx, key, constant("x", &calls))

	now = now.Add(30 * time.Second)
	if r, _ := c.Query(ctx, key, constant("x", &calls)); r.Stale {
		t.Fatalf("value should still be fresh")
	}

	now = now.Add(time.Minute)
	if r, _ := c.Query(ctx, key, constant("x", &calls)); !r.Stale {
		t.Fatalf("value should be stale after a minute")
	}
	if sched.runAll() != 1 {
		t.Fatalf("expected one background refetch")
	}
	c.Wait()
	if calls.Load() != 2 {
		t.Fatalf("expected 2 fetches, got %d", calls.Load())
	}
}

// serialScheduler runs jobs one at a time on a single goroutine, like a
// one-worker refresh dispatcher shared by several sessions.
type serialScheduler struct{ jobs chan func(ctx context.Context) }

func newSerialScheduler(t *testing.T) *serialScheduler {
	s := &serialScheduler{jobs: make(chan func(ctx context.Context), 16)}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-s.jobs:
				job(ctx)
			}
		}
	}()
	return s
}

func (s *serialScheduler) Schedule(_ string, job func(ctx context.Context)) bool {
	s.jobs <- job
	return true
}

func TestCache_HungRefetchDoesNotHoldSharedWorker(t *testing.T) {
	sched := newSerialScheduler(t)
	ctx := context.Background()

	// Session A: its refetch never returns.
	hung := make(chan struct{})
	t.Cleanup(func() { close(hung) })
	a := New(WithScheduler(sched))
	keyA := NewKey("tickets", nil)
	var first atomic.Bool
	first.Store(true)
	if _, err := a.Query(ctx, keyA, func(context.Context) (any, error) {
		if first.Swap(false) {
			return 1, nil
		}
		<-hung
		return 2, nil
	}); err != nil {
		t.Fatal(err)
	}
	a.Invalidate("tickets")

	// Session B shares the worker and must still refresh.
	b := New(WithScheduler(sched))
	keyB := NewKey("tickets", nil)
	var version atomic.Int32
	version.Store(1)
	var calls atomic.Int32
	if _, err := b.Query(ctx, keyB, func(context.Context) (any, error) {
		calls.Add(1)
		return int(version.Load()), nil
	}); err != nil {
		t.Fatal(err)
	}
	version.Store(2)
	b.Invalidate("tickets")

	waitFor(t, func() bool {
		r, ok := b.Peek(keyB)
		return ok && !r.Stale && r.Value == 2
	})
	if calls.Load() != 2 {
		t.Fatalf("session B fetched %d times, want 2", calls.Load())
	}
	if r, _ := a.Peek(keyA); !r.Stale {
		t.Fatalf("session A should still be waiting on its refetch")
	}
}

func TestCache_SupersededRefetchDoesNotBlockNextOne(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	ctx := context.Background()
	key := NewKey("users", nil)

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		n := calls.Add(1)
		if n == 2 {
			<-release
		}
		return int(n), nil
	}
	if _, err := c.Query(ctx, key, fetch); err != nil {
		t.Fatal(err)
	}

	c.Invalidate("users")
	sched.runAll() // starts fetch 2, which hangs
	waitFor(t, func() bool { return calls.Load() == 2 })

	c.Invalidate("users")
	if n := sched.runAll(); n != 1 {
		t.Fatalf("a superseded refetch must not suppress the next one, got %d jobs", n)
	}
	waitFor(t, func() bool {
		r, _ := c.Peek(key)
		return !r.Stale && r.Value == 3
	})

	close(release)
	c.Wait()
	if r, _ := c.Peek(key); r.Value != 3 {
		t.Fatalf("late superseded response applied: %+v", r)
	}
}

func TestGet_Typed(t *testing.T) {
	c := New()
	key := NewKey("count", nil)

	n, stale, err := Get(context.Background(), c, key, func(context.Context) (int, error) { return 42, nil })
	if err != nil || stale || n != 42 {
		t.Fatalf("unexpected result %d, %t, %v", n, stale, err)
	}

	_, _, err = Get(context.Background(), c, key, func(context.Context) (string, error) { return "", nil })
	if err == nil {
		t.Fatalf("expected type mismatch error")
	}
}
