package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"start-page/domain"
)

type stubBackend struct {
	selectFn func(ctx context.Context, order domain.Order) ([]domain.Todo, error)
	writeErr error
	selects  int
	writes   int
}

func (s *stubBackend) SelectAllOrdered(ctx context.Context, order domain.Order) ([]domain.Todo, error) {
	s.selects++
	if s.selectFn == nil {
		return nil, errors.New("unexpected SelectAllOrdered call")
	}
	return s.selectFn(ctx, order)
}

func (s *stubBackend) Insert(_ context.Context, t domain.Todo) (domain.Todo, error) {
	s.writes++
	t.ID = "new"
	return t, s.writeErr
}

func (s *stubBackend) Update(context.Context, string, domain.TodoPatch) error {
	s.writes++
	return s.writeErr
}

func (s *stubBackend) Delete(context.Context, string) error {
	s.writes++
	return s.writeErr
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheSelectMissThenHit(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	expected := []domain.Todo{{ID: "t1", Task: "Write code", InsertedAt: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)}}

	backend := &stubBackend{selectFn: func(_ context.Context, order domain.Order) ([]domain.Todo, error) {
		if order != domain.TodoOrder {
			t.Fatalf("unexpected order %#v", order)
		}
		return append([]domain.Todo(nil), expected...), nil
	}}
	cache := NewCache[domain.Todo, domain.TodoPatch](backend, client, time.Minute, "todos:default")

	todos, err := cache.SelectAllOrdered(ctx, domain.TodoOrder)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !reflect.DeepEqual(todos, expected) {
		t.Fatalf("unexpected todos: %#v", todos)
	}
	key := cache.orderKey(domain.TodoOrder)
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.SelectAllOrdered(ctx, domain.TodoOrder)
	if err != nil {
		t.Fatalf("cached select: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached todos: %#v", cached)
	}
	if backend.selects != 1 {
		t.Fatalf("expected cached select to avoid backend, calls=%d", backend.selects)
	}
}

func TestCacheKeysDifferByOrder(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewCache[domain.Todo, domain.TodoPatch](&stubBackend{}, client, time.Minute, "p")

	asc := cache.orderKey(domain.Order{Field: domain.FieldInsertedAt})
	desc := cache.orderKey(domain.Order{Field: domain.FieldInsertedAt, Descending: true})
	limited := cache.orderKey(domain.Order{Field: domain.FieldInsertedAt, Limit: 8})
	if asc == desc || asc == limited || desc == limited {
		t.Fatalf("expected distinct keys, got %q %q %q", asc, desc, limited)
	}
}

func TestCacheWritesEvict(t *testing.T) {
	ops := map[string]func(c *Cache[domain.Todo, domain.TodoPatch]) error{
		"insert": func(c *Cache[domain.Todo, domain.TodoPatch]) error {
			_, err := c.Insert(context.Background(), domain.Todo{Task: "x"})
			return err
		},
		"update": func(c *Cache[domain.Todo, domain.TodoPatch]) error {
			return c.Update(context.Background(), "t1", domain.TodoPatch{})
		},
		"delete": func(c *Cache[domain.Todo, domain.TodoPatch]) error {
			return c.Delete(context.Background(), "t1")
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			mr, client := newTestRedis(t)
			backend := &stubBackend{selectFn: func(context.Context, domain.Order) ([]domain.Todo, error) {
				return []domain.Todo{{ID: "t1", Task: "a"}}, nil
			}}
			cache := NewCache[domain.Todo, domain.TodoPatch](backend, client, time.Minute, "todos:default")
			if _, err := cache.SelectAllOrdered(context.Background(), domain.TodoOrder); err != nil {
				t.Fatalf("select: %v", err)
			}
			key := cache.orderKey(domain.TodoOrder)
			if !mr.Exists(key) {
				t.Fatalf("expected %s to be cached", key)
			}

			if err := op(cache); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if mr.Exists(key) || mr.Exists(cache.indexKey()) {
				t.Fatalf("expected cache to be evicted after %s", name)
			}
		})
	}
}

func TestCacheSkipsFillAfterConcurrentWrite(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	backend := &stubBackend{selectFn: func(context.Context, domain.Order) ([]domain.Todo, error) {
		calls++
		if calls == 1 {
			close(entered)
			<-release
			return []domain.Todo{{ID: "old", Task: "a"}}, nil
		}
		return []domain.Todo{{ID: "old", Task: "a"}, {ID: "new", Task: "b"}}, nil
	}}
	cache := NewCache[domain.Todo, domain.TodoPatch](backend, client, time.Minute, "todos:default")

	done := make(chan error, 1)
	go func() {
		_, err := cache.SelectAllOrdered(ctx, domain.TodoOrder)
		done <- err
	}()
	<-entered
	if _, err := cache.Insert(ctx, domain.Todo{Task: "b"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow select: %v", err)
	}
	if mr.Exists(cache.orderKey(domain.TodoOrder)) {
		t.Fatalf("read that started before the insert must not fill the cache")
	}

	todos, err := cache.SelectAllOrdered(ctx, domain.TodoOrder)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("expected reload to see the inserted row, got %#v", todos)
	}
	if !mr.Exists(cache.orderKey(domain.TodoOrder)) {
		t.Fatalf("expected a fresh read to fill the cache")
	}
}

func TestCacheFailedWriteKeepsEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	backend := &stubBackend{
		selectFn: func(context.Context, domain.Order) ([]domain.Todo, error) { return []domain.Todo{}, nil },
		writeErr: errors.New("boom"),
	}
	cache := NewCache[domain.Todo, domain.TodoPatch](backend, client, time.Minute, "todos:default")
	if _, err := cache.SelectAllOrdered(context.Background(), domain.TodoOrder); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := cache.Delete(context.Background(), "t1"); err == nil {
		t.Fatalf("expected delete error")
	}
	if !mr.Exists(cache.orderKey(domain.TodoOrder)) {
		t.Fatalf("failed write must not evict")
	}
}

func TestCacheFailsOpen(t *testing.T) {
	mr, client := newTestRedis(t)
	backend := &stubBackend{selectFn: func(context.Context, domain.Order) ([]domain.Todo, error) {
		return []domain.Todo{{ID: "t1", Task: "a"}}, nil
	}}
	cache := NewCache[domain.Todo, domain.TodoPatch](backend, client, time.Minute, "todos:default")

	if err := mr.Set(cache.orderKey(domain.TodoOrder), "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	todos, err := cache.SelectAllOrdered(context.Background(), domain.TodoOrder)
	if err != nil || len(todos) != 1 {
		t.Fatalf("expected fallback to backend, got %v %v", todos, err)
	}

	mr.Close()
	todos, err = cache.SelectAllOrdered(context.Background(), domain.TodoOrder)
	if err != nil || len(todos) != 1 {
		t.Fatalf("expected redis outage to fall back, got %v %v", todos, err)
	}
	if backend.selects != 2 {
		t.Fatalf("expected two backend selects, got %d", backend.selects)
	}
}

func TestCacheWithoutRedis(t *testing.T) {
	backend := &stubBackend{selectFn: func(context.Context, domain.Order) ([]domain.Todo, error) { return nil, nil }}
	cache := NewCache[domain.Todo, domain.TodoPatch](backend, nil, time.Minute, "todos:default")
	for i := 0; i < 2; i++ {
		if _, err := cache.SelectAllOrdered(context.Background(), domain.TodoOrder); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if _, err := cache.Insert(context.Background(), domain.Todo{Task: "x"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if backend.selects != 2 {
		t.Fatalf("expected every select to reach backend, got %d", backend.selects)
	}
}
