package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockReleasesOnlyOwnToken(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	first, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "cron", time.Minute)

	ctx := context.Background()
	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatal("first acquire should succeed")
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second acquire should fail while held")
	}

	store.values["cron"] = "someone-else"
	if err := first.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if store.values["cron"] != "someone-else" {
		t.Fatal("release removed a lock it no longer owns")
	}

	delete(store.values, "cron")
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("acquire after expiry should succeed")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, held := store.values["cron"]; held {
		t.Fatal("owner release should delete the key")
	}
}
