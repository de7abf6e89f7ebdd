// Copyright (c) 2025 BVK Chaitanya

package syncmap

import "testing"

func TestMap(t *testing.T) {
	var m Map[string, int]

	if _, loaded := m.LoadOrStore("a", 1); loaded {
		t.Fatalf("first store must not load")
	}
	if v, loaded := m.LoadOrStore("a", 2); !loaded || v != 1 {
		t.Fatalf("want existing value 1, got %d (%t)", v, loaded)
	}

	v, ok := m.LoadAndDelete("a")
	if !ok || v != 1 {
		t.Fatalf("want deleted value 1, got %d (%t)", v, ok)
	}
	if _, ok := m.Load("a"); ok {
		t.Fatalf("key must be deleted")
	}
	if _, ok := m.LoadAndDelete("a"); ok {
		t.Fatalf("second delete must not load")
	}
}
