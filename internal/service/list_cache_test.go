package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
	"github.com/redis/go-redis/v9"
)

func TestInMemoryListCacheStoreGetSetInvalidate(t *testing.T) {
	store := NewInMemoryListCacheStore()
	ctx := context.Background()

	if err := store.Set(ctx, authorsNamespace, "k1", []byte(`{"x":1}`), time.Minute); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	got, ok, err := store.Get(ctx, authorsNamespace, "k1")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, ok=%v err=%v", ok, err)
	}
	if string(got) != `{"x":1}` {
		t.Fatalf("unexpected cache payload: %s", string(got))
	}

	if err := store.InvalidateNamespace(ctx, authorsNamespace); err != nil {
		t.Fatalf("invalidate namespace: %v", err)
	}
	if _, ok, _ := store.Get(ctx, authorsNamespace, "k1"); ok {
		t.Fatal("expected cache miss after invalidation")
	}
}

func TestInMemoryListCacheStoreExpiry(t *testing.T) {
	store := NewInMemoryListCacheStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Set(ctx, booksNamespace, "k", []byte(`{}`), time.Second); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	now = now.Add(2 * time.Second)
	if _, ok, _ := store.Get(ctx, booksNamespace, "k"); ok {
		t.Fatal("expected cache entry to expire")
	}
}

func TestNoopListCacheStoreAlwaysMisses(t *testing.T) {
	store := NewNoopListCacheStore()
	ctx := context.Background()
	_ = store.Set(ctx, booksNamespace, "k", []byte(`{}`), time.Minute)
	if _, ok, err := store.Get(ctx, booksNamespace, "k"); ok || err != nil {
		t.Fatalf("expected noop miss, ok=%v err=%v", ok, err)
	}
}

func TestRedisListCacheStoreRoundTripAndInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	store := NewRedisListCacheStore(client, "test_cache")
	ctx := context.Background()

	if err := store.Set(ctx, booksNamespace, "q=|page=1|size=10", []byte(`{"items":[]}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, authorsNamespace, "q=|page=1|size=10", []byte(`{"items":[]}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.Get(ctx, booksNamespace, "q=|page=1|size=10")
	if err != nil || !ok || string(got) != `{"items":[]}` {
		t.Fatalf("unexpected get: ok=%v err=%v payload=%s", ok, err, got)
	}
	if ttl := mr.TTL(store.dataKey(booksNamespace, "q=|page=1|size=10")); ttl <= 0 {
		t.Fatalf("expected data key ttl, got %v", ttl)
	}

	if err := store.InvalidateNamespace(ctx, booksNamespace); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := store.Get(ctx, booksNamespace, "q=|page=1|size=10"); ok {
		t.Fatal("expected books miss after invalidation")
	}
	if _, ok, _ := store.Get(ctx, authorsNamespace, "q=|page=1|size=10"); !ok {
		t.Fatal("expected authors namespace to be untouched")
	}
}

func TestCachedListServesHitsWithoutLoading(t *testing.T) {
	cache := NewListCache(NewInMemoryListCacheStore(), time.Minute)
	ctx := context.Background()
	q := ListQuery{Search: "tide", Page: repository.PageRequest{Page: 1, PageSize: 10}}
	var loads atomic.Int32
	load := func(context.Context) (*Page[string], error) {
		loads.Add(1)
		return &Page[string]{Items: []string{"A Quiet Tide"}, Pagination: Pagination{Page: 1, PageSize: 10, TotalItems: 1, TotalPages: 1}}, nil
	}

	for i := 0; i < 3; i++ {
		page, err := cachedList(ctx, cache, booksNamespace, q, load)
		if err != nil {
			t.Fatalf("cached list: %v", err)
		}
		if len(page.Items) != 1 || page.Items[0] != "A Quiet Tide" || page.Pagination.TotalItems != 1 {
			t.Fatalf("unexpected page: %+v", page)
		}
	}
	if loads.Load() != 1 {
		t.Fatalf("expected one load, got %d", loads.Load())
	}

	cache.Invalidate(ctx, booksNamespace)
	if _, err := cachedList(ctx, cache, booksNamespace, q, load); err != nil {
		t.Fatalf("cached list after invalidate: %v", err)
	}
	if loads.Load() != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", loads.Load())
	}
}

func TestCachedListCollapsesConcurrentMisses(t *testing.T) {
	cache := NewListCache(NewInMemoryListCacheStore(), time.Minute)
	ctx := context.Background()
	q := ListQuery{Page: repository.PageRequest{Page: 1, PageSize: 10}}
	release := make(chan struct{})
	var loads atomic.Int32
	load := func(context.Context) (*Page[int], error) {
		loads.Add(1)
		<-release
		return &Page[int]{Items: []int{1}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cachedList(ctx, cache, authorsNamespace, q, load); err != nil {
				t.Errorf("cached list: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := loads.Load(); n < 1 || n > 8 {
		t.Fatalf("unexpected load count %d", n)
	}
	if _, ok, _ := cache.store.Get(ctx, authorsNamespace, listCacheKey(q)); !ok {
		t.Fatal("expected populated cache entry")
	}
}

type failingListCacheStore struct{}

func (failingListCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (failingListCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return errors.New("redis down")
}

func (failingListCacheStore) InvalidateNamespace(context.Context, string) error {
	return errors.New("redis down")
}

func TestCachedListToleratesStoreFailures(t *testing.T) {
	cache := NewListCache(failingListCacheStore{}, time.Minute)
	ctx := context.Background()
	page, err := cachedList(ctx, cache, booksNamespace, ListQuery{}, func(context.Context) (*Page[int], error) {
		return &Page[int]{Items: []int{7}}, nil
	})
	if err != nil {
		t.Fatalf("expected store failure to be ignored, got %v", err)
	}
	if len(page.Items) != 1 || page.Items[0] != 7 {
		t.Fatalf("unexpected page: %+v", page)
	}
	cache.Invalidate(ctx, booksNamespace)
}

func TestCachedListPropagatesLoadErrors(t *testing.T) {
	cache := NewListCache(NewInMemoryListCacheStore(), time.Minute)
	boom := errors.New("boom")
	_, err := cachedList(context.Background(), cache, booksNamespace, ListQuery{}, func(context.Context) (*Page[int], error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
