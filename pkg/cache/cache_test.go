package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get() = (%v, %v), want miss", data, hit)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "svg-key", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "svg-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() missed after Set()")
	}
	if string(data) != "<svg/>" {
		t.Errorf("Get() = %q, want <svg/>", data)
	}

	if _, hit, _ := c.Get(ctx, "other-key"); hit {
		t.Error("Get() hit for a key that was never set")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("Get() hit after TTL expired")
	}
}

func TestFileCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get() hit after Delete()")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestRenderKey(t *testing.T) {
	k1 := RenderKey("svg", []byte("content"))
	k2 := RenderKey("png", []byte("content"))
	k3 := RenderKey("svg", []byte("other"))

	if !strings.HasPrefix(k1, "render:svg:") {
		t.Errorf("RenderKey() = %q, want render:svg: prefix", k1)
	}
	if k1 == k2 {
		t.Error("different formats produced the same key")
	}
	if k1 == k3 {
		t.Error("different content produced the same key")
	}
	if k1 != RenderKey("svg", []byte("content")) {
		t.Error("RenderKey() is not deterministic")
	}
}
