package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
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

	if err := c.Delete(ctx, "card:1"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "card:1"); hit {
		t.Error("deleted entry should miss")
	}
	if mr.Exists("card:1") {
		t.Error("Delete should remove the key")
	}
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	tests := []struct {
		key     string
		ttl     time.Duration
		wantTTL time.Duration
	}{
		{"card:hour", time.Hour, time.Hour},
		{"card:forever", 0, 0},
	}
	for _, tt := range tests {
		if err := c.Set(ctx, tt.key, []byte("x"), tt.ttl); err != nil {
			t.Fatal(err)
		}
		if got := mr.TTL(tt.key); got != tt.wantTTL {
			t.Errorf("TTL(%s) = %v, want %v", tt.key, got, tt.wantTTL)
		}
	}

	mr.FastForward(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "card:hour"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "card:forever"); !hit {
		t.Error("entry without TTL should survive")
	}
}

func TestRedisCacheScopedKeys(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	keyer := NewScopedKeyer(NewDefaultKeyer(), "school_id_cards:")

	key := keyer.ImageKey("https://img.example/bg.png")
	if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != key {
		t.Fatalf("keys = %v, want [%s]", keys, key)
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newRedisCache(t)
	mr.Close()

	if _, _, err := c.Get(context.Background(), "card:1"); err == nil {
		t.Error("Get on a closed server should fail")
	}
	if err := c.Set(context.Background(), "card:1", []byte("x"), 0); err == nil {
		t.Error("Set on a closed server should fail")
	}
}
