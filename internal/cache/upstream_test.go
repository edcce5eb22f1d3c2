package cache

import (
	"testing"
	"time"
)

func TestUpstreamCache_PutGet(t *testing.T) {
	c := NewUpstreamCache(time.Hour)

	c.Put("chart:abc", "positions")
	v, negative, ok := c.Get("chart:abc")
	if !ok || negative {
		t.Fatalf("Get = (negative=%v, ok=%v), want positive hit", negative, ok)
	}
	if v != "positions" {
		t.Errorf("value = %v, want positions", v)
	}
}

func TestUpstreamCache_AbsentVsNegative(t *testing.T) {
	c := NewUpstreamCache(time.Hour)

	if _, _, ok := c.Get("never-looked"); ok {
		t.Error("unseen key should be absent")
	}

	c.PutNegative("failed-lookup", "upstream 500")
	v, negative, ok := c.Get("failed-lookup")
	if !ok {
		t.Fatal("negative entry should be present")
	}
	if !negative {
		t.Error("entry should be negative")
	}
	if v != "upstream 500" {
		t.Errorf("reason = %v, want 'upstream 500'", v)
	}
}

func TestUpstreamCache_LazyExpiry(t *testing.T) {
	c := NewUpstreamCache(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("chart:abc", 1)

	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, _, ok := c.Get("chart:abc"); ok {
		t.Error("expired entry should read as absent")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be dropped on read")
	}
}

func TestUpstreamCache_Overwrite(t *testing.T) {
	c := NewUpstreamCache(time.Hour)

	c.PutNegative("k", "flaky")
	c.Put("k", 2)

	v, negative, ok := c.Get("k")
	if !ok || negative || v != 2 {
		t.Errorf("Get = (%v, negative=%v, ok=%v), want positive 2", v, negative, ok)
	}
}
