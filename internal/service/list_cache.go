package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"golang.org/x/sync/singleflight"
)

const (
	authorsNamespace = "authors"
	booksNamespace   = "books"
)

type ListCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopListCacheStore struct{}

func NewNoopListCacheStore() *NoopListCacheStore {
	return &NoopListCacheStore{}
}

func (s *NoopListCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopListCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopListCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type memoryCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryListCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]memoryCacheEntry
	now   func() time.Time
}

func NewInMemoryListCacheStore() *InMemoryListCacheStore {
	return &InMemoryListCacheStore{
		store: make(map[string]map[string]memoryCacheEntry),
		now:   time.Now,
	}
}

func (s *InMemoryListCacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.store[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		if ns, ok := s.store[namespace]; ok {
			delete(ns, key)
			if len(ns) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryListCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]memoryCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemoryListCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}

// ListCache serves paged list responses from a ListCacheStore. Store failures are
// logged and treated as misses.
type ListCache struct {
	store ListCacheStore
	ttl   time.Duration
	sf    singleflight.Group
}

func NewListCache(store ListCacheStore, ttl time.Duration) *ListCache {
	if store == nil {
		store = NewNoopListCacheStore()
	}
	return &ListCache{store: store, ttl: ttl}
}

func (c *ListCache) Invalidate(ctx context.Context, namespaces ...string) {
	if c == nil {
		return
	}
	for _, ns := range namespaces {
		if err := c.store.InvalidateNamespace(ctx, ns); err != nil {
			observability.RecordListCacheEvent(ctx, ns, "error")
			observability.Logger().WarnContext(ctx, "list cache invalidation failed", "namespace", ns, "error", err)
			continue
		}
		observability.RecordListCacheEvent(ctx, ns, "invalidate")
	}
}

func listCacheKey(q ListQuery) string {
	return fmt.Sprintf("q=%s|page=%d|size=%d", q.Search, q.Page.Page, q.Page.PageSize)
}

func cachedList[T any](ctx context.Context, c *ListCache, namespace string, q ListQuery, load func(context.Context) (*Page[T], error)) (*Page[T], error) {
	if c == nil || c.ttl <= 0 {
		return load(ctx)
	}
	key := listCacheKey(q)
	if page, ok := readCachedPage[T](ctx, c, namespace, key); ok {
		return page, nil
	}

	result, err, shared := c.sf.Do(namespace+"|"+key, func() (any, error) {
		page, err := load(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(page)
		if err != nil {
			observability.Logger().WarnContext(ctx, "list cache encode failed", "namespace", namespace, "error", err)
			return page, nil
		}
		if err := c.store.Set(ctx, namespace, key, payload, c.ttl); err != nil {
			observability.RecordListCacheEvent(ctx, namespace, "error")
			observability.Logger().WarnContext(ctx, "list cache write failed", "namespace", namespace, "error", err)
		}
		return page, nil
	})
	if shared {
		observability.RecordListCacheEvent(ctx, namespace, "shared")
	}
	if err != nil {
		return nil, err
	}
	page, ok := result.(*Page[T])
	if !ok {
		return nil, fmt.Errorf("unexpected list cache result %T", result)
	}
	return page, nil
}

func readCachedPage[T any](ctx context.Context, c *ListCache, namespace, key string) (*Page[T], bool) {
	payload, ok, err := c.store.Get(ctx, namespace, key)
	if err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "error")
		observability.Logger().WarnContext(ctx, "list cache read failed", "namespace", namespace, "error", err)
		return nil, false
	}
	if !ok {
		observability.RecordListCacheEvent(ctx, namespace, "miss")
		return nil, false
	}
	var page Page[T]
	if err := json.Unmarshal(payload, &page); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "error")
		return nil, false
	}
	observability.RecordListCacheEvent(ctx, namespace, "hit")
	return &page, true
}
