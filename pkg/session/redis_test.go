package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	testStore(t, store, ErrNotFound)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	sess, _ := New("admin@school.in", RoleAdmin, time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	key := "session:" + sess.ID
	if ttl := mr.TTL(key); ttl <= 59*time.Minute || ttl > time.Hour {
		t.Errorf("key TTL = %v, want about 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after key expiry = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreSetExpiredDeletes(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	sess, _ := New("admin@school.in", RoleAdmin, time.Hour)
	store.Set(ctx, sess)
	sess.ExpiresAt = time.Now().Add(-time.Second)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("session:" + sess.ID) {
		t.Error("expired session should be removed from Redis")
	}
}

func TestRedisStoreGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	tests := []struct {
		name  string
		value string
		want  error
	}{
		{"expired but not evicted", `{"id":"a","expires_at":"2020-01-01T00:00:00Z"}`, ErrExpired},
		{"revoked", `{"id":"b","expires_at":"2999-01-01T00:00:00Z","revoked":true}`, ErrNotFound},
		{"corrupt", `{not json`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr.Set("session:"+tt.name, tt.value)
			_, err := store.Get(ctx, tt.name)
			if err == nil {
				t.Fatal("Get succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Get = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	sess, _ := New("admin@school.in", RoleAdmin, time.Hour)
	if err := store.Set(context.Background(), sess); err == nil {
		t.Error("Set on a closed server should fail")
	}
	if _, err := store.Get(context.Background(), sess.ID); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get on a closed server = %v, want connection error", err)
	}
}
