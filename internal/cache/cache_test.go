package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = (%q, %v)", v, ok)
	}

	// "a" was just touched, so inserting "c" evicts "b".
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive eviction")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected deleted entry to miss")
	}
	// Deleting a missing key is a no-op.
	c.Delete("missing")
}

func TestLRUCacheSetRefreshesExisting(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1 after overwriting", c.Size())
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("Get(a) = %d, want 2", v)
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
}

func TestManagerCleanup(t *testing.T) {
	c := NewLRUCache[int](8, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(500 * time.Millisecond)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("manager never cleaned the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[string](2, time.Minute))

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Stop hung when cleanup was never started")
	}
}
