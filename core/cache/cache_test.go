package cache

import (
	"testing"
	"time"
)

func TestLRUBasicOperations(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 3})

	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Put did not overwrite: got %d", v)
	}

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Remove returned a value")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 2})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most recently used
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", s.Evictions)
	}
}

func TestLRUTTL(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 10, TTL: time.Nanosecond})
	c.Put("a", 1)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned")
	}
}

func TestContentKey(t *testing.T) {
	a := ContentKey([]byte("\\v 1 In the beginning"))
	b := ContentKey([]byte("\\v 1 In the beginning"))
	if a != b {
		t.Error("same content produced different keys")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64", len(a))
	}
	if a == ContentKey([]byte("\\v 2 And the earth")) {
		t.Error("different content produced the same key")
	}
}

func TestVerseTextCache(t *testing.T) {
	c := NewDefaultVerseTextCache()
	source := []byte("\\c 1\n\\v 1 In the beginning\n")
	verses := map[string][]string{"1:1": {"In", "the", "beginning"}}

	if _, ok := c.Get(source); ok {
		t.Error("Get before Put returned a value")
	}
	c.Put(source, verses)
	got, ok := c.Get(source)
	if !ok {
		t.Fatal("Get after Put missed")
	}
	if len(got["1:1"]) != 3 {
		t.Errorf("cached verses = %v", got)
	}

	// A different document must not hit the same entry.
	if _, ok := c.Get([]byte("\\c 2\n")); ok {
		t.Error("unrelated source hit the cache")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
