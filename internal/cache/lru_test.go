package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](3, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Get() found = true for missing key")
	}

	c.Set("a", "alpha")
	got, found := c.Get("a")
	if !found || got != "alpha" {
		t.Errorf("Get(a) = %q, %v, want alpha, true", got, found)
	}

	c.Set("a", "updated")
	got, _ = c.Get("a")
	if got != "updated" {
		t.Errorf("Get(a) after overwrite = %q, want updated", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Error("a should have survived")
	}
	if _, found := c.Get("c"); !found {
		t.Error("c should be present")
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("Get() found expired entry")
	}
}

func TestLRUCache_Clear(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", c.Size())
	}

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", c.Size())
	}
	if _, found := c.Get("k0"); found {
		t.Error("Get() found entry after Clear")
	}

	// Cache stays usable after Clear.
	c.Set("fresh", 42)
	if got, found := c.Get("fresh"); !found || got != 42 {
		t.Errorf("Get(fresh) = %d, %v, want 42, true", got, found)
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestManager_Cleanup(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after background cleanup", c.Size())
	}
}
