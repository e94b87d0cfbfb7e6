package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func metricsKey(user string) Key {
	return Key{Kind: Metrics, User: user, Currency: "USD"}
}

func TestCache_GetSet(t *testing.T) {
	c := New()
	key := metricsKey("u1")

	if _, ok := c.Get(key); ok {
		t.Fatal("Get() on an empty cache returned a value")
	}
	c.Set(key, 42, 0)
	v, ok := c.Get(key)
	if !ok || v.(int) != 42 {
		t.Fatalf("Get() = %v, %v, want 42, true", v, ok)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New()
	clock := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set(metricsKey("u1"), "derived", 0) // Metrics default: 5 minutes
	c.Set(Key{Kind: Quotes, User: "u1", Symbol: "ACME"}, 10.5, 0)

	clock = clock.Add(90 * time.Second)
	if _, ok := c.Get(Key{Kind: Quotes, User: "u1", Symbol: "ACME"}); ok {
		t.Error("quote survived past its one-minute TTL")
	}
	if _, ok := c.Get(metricsKey("u1")); !ok {
		t.Error("metrics expired before their five-minute TTL")
	}

	clock = clock.Add(10 * time.Minute)
	if _, ok := c.Get(metricsKey("u1")); ok {
		t.Error("metrics survived past their TTL")
	}

	// The next write sweeps the expired entries out of the map.
	c.Set(metricsKey("u2"), "fresh", time.Hour)
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d after sweep, want 1", got)
	}
}

func TestCache_GetOrFetchCoalesces(t *testing.T) {
	c := New()
	key := metricsKey("u1")

	var calls atomic.Int32
	release := make(chan struct{})
	produce := func() (any, error) {
		calls.Add(1)
		<-release
		return "computed", nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrFetch(key, 0, produce)
			if err != nil {
				t.Errorf("GetOrFetch() error = %v", err)
			}
			results[i] = v
		}(i)
	}

	// Let the goroutines pile up on the same flight, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("producer ran %d times for %d concurrent callers, want 1", got, n)
	}
	for i, v := range results {
		if v != "computed" {
			t.Errorf("caller %d got %v", i, v)
		}
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := New()
	key := metricsKey("u1")
	boom := errors.New("backend down")

	var calls int
	_, err := c.GetOrFetch(key, 0, func() (any, error) {
		calls++
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("GetOrFetch() error = %v, want the producer's error", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("a failed computation was cached")
	}

	// The flight is released: the next call re-attempts and can succeed.
	v, err := c.GetOrFetch(key, 0, func() (any, error) {
		calls++
		return "recovered", nil
	})
	if err != nil || v != "recovered" {
		t.Fatalf("GetOrFetch() after failure = %v, %v", v, err)
	}
	if calls != 2 {
		t.Errorf("producer ran %d times, want 2", calls)
	}
}

func TestCache_Invalidation(t *testing.T) {
	c := New()
	c.Set(metricsKey("u1"), 1, time.Hour)
	c.Set(Key{Kind: Quotes, User: "u1", Symbol: "ACME"}, 2, time.Hour)
	c.Set(metricsKey("u2"), 3, time.Hour)

	c.Invalidate(metricsKey("u1"))
	if _, ok := c.Get(metricsKey("u1")); ok {
		t.Error("Invalidate() left the entry")
	}

	c.Set(metricsKey("u1"), 1, time.Hour)
	c.InvalidateUser("u1")
	if _, ok := c.Get(metricsKey("u1")); ok {
		t.Error("InvalidateUser() left the metrics entry")
	}
	if _, ok := c.Get(Key{Kind: Quotes, User: "u1", Symbol: "ACME"}); ok {
		t.Error("InvalidateUser() left the quotes entry")
	}
	if _, ok := c.Get(metricsKey("u2")); !ok {
		t.Error("InvalidateUser() removed another user's entry")
	}

	c.Set(Key{Kind: Quotes, User: "u2", Symbol: "ACME"}, 4, time.Hour)
	c.InvalidatePrefix(string(Quotes) + "/")
	if _, ok := c.Get(Key{Kind: Quotes, User: "u2", Symbol: "ACME"}); ok {
		t.Error("InvalidatePrefix() left a matching entry")
	}
	if _, ok := c.Get(metricsKey("u2")); !ok {
		t.Error("InvalidatePrefix() removed a non-matching entry")
	}
}

func TestKind_TTL(t *testing.T) {
	tests := []struct {
		kind Kind
		want time.Duration
	}{
		{Quotes, time.Minute},
		{Metrics, 5 * time.Minute},
		{Transactions, 30 * time.Minute},
		{Symbols, 30 * time.Minute},
	}
	for _, tt := range tests {
		if got := tt.kind.TTL(); got != tt.want {
			t.Errorf("%s TTL = %s, want %s", tt.kind, got, tt.want)
		}
	}
}
