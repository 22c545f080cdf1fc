package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a missing")
	}
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[string](4, time.Minute)
	c.now = func() time.Time { return now }
	c.Set("k", "v")
	c.Set("j", "w")

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry expired early")
	}
	now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry still served")
	}
}

func TestLRUPurge(t *testing.T) {
	c := NewLRU[int](8, 0)
	for i, k := range []string{"a", "b", "c"} {
		c.Set(k, i)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len after Purge = %d", c.Len())
	}
	c.Set("a", 9)
	if v, _ := c.Get("a"); v != 9 {
		t.Fatalf("cache unusable after Purge")
	}
}
