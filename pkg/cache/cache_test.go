package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	key := NewDefaultKeyer().ImageKey("https://img.example/bg.png")
	if err := c.Set(ctx, key, []byte{0x89, 'P', 'N', 'G'}, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, key); hit || data != nil || err != nil {
		t.Errorf("Get = %v, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "card:1"); hit || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", hit, err)
	}

	png := []byte{0x89, 'P', 'N', 'G'}
	if err := c.Set(ctx, "card:1", png, time.Hour); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(ctx, "card:1")
	if err != nil || !hit || string(got) != string(png) {
		t.Errorf("Get = %v, %v, %v", got, hit, err)
	}

	if err := c.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "stale"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "card:1"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "card:1"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "card:1"); err != nil {
		t.Errorf("second Delete = %v", err)
	}

	c.Set(ctx, "a", []byte("1"), 0)
	fc := c.(*FileCache)
	if err := fc.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Clear should remove entries")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	a, _ := HashJSON(map[string]any{"name": "Asha", "class": "X"})
	b, _ := HashJSON(map[string]any{"class": "X", "name": "Asha"})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := CardKeyOpts{ContentHash: "abc", Scale: 3}
	k1 := k.CardKey("sub1", base)
	if !strings.HasPrefix(k1, "card:") {
		t.Errorf("CardKey = %s", k1)
	}
	variants := []CardKeyOpts{
		{ContentHash: "abd", Scale: 3},
		{ContentHash: "abc", Scale: 4},
		{ContentHash: "abc", Scale: 3, Background: "bg"},
	}
	for _, v := range variants {
		if k.CardKey("sub1", v) == k1 {
			t.Errorf("CardKey(%+v) collides with %+v", v, base)
		}
	}
	if k.CardKey("sub2", base) == k1 {
		t.Error("different submissions should not collide")
	}

	if ik := k.ImageKey("https://img/a.png"); !strings.HasPrefix(ik, "image:") || ik == k.ImageKey("https://img/b.png") {
		t.Errorf("ImageKey = %s", ik)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "school-a:")
	if key := scoped.ImageKey("u"); !strings.HasPrefix(key, "school-a:image:") {
		t.Errorf("ImageKey = %s", key)
	}
	if key := scoped.CardKey("s", CardKeyOpts{}); !strings.HasPrefix(key, "school-a:card:") {
		t.Errorf("CardKey = %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().ImageKey("u")
	if got := scoped.ImageKey("u"); got != want {
		t.Errorf("ImageKey = %s, want %s", got, want)
	}
}
