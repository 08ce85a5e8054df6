package classifier

import (
	"context"
	"sync"
)

// LabelResolver looks up the publishing label of an album.
type LabelResolver interface {
	AlbumLabel(ctx context.Context, albumID string) (string, error)
}

// ResolverFunc adapts a function to [LabelResolver].
type ResolverFunc func(ctx context.Context, albumID string) (string, error)

func (f ResolverFunc) AlbumLabel(ctx context.Context, albumID string) (string, error) {
	return f(ctx, albumID)
}

// LabelStore caches album labels between lookups.
type LabelStore interface {
	GetLabel(ctx context.Context, albumID string) (label string, ok bool, err error)
	PutLabel(ctx context.Context, albumID, label string) error
}

// CachedResolver consults store before falling through to next, so each distinct album is fetched at most once
// per store lifetime.
type CachedResolver struct {
	next  LabelResolver
	store LabelStore
}

// NewCachedResolver wraps next with store. A nil store gets a fresh [MemoryStore].
func NewCachedResolver(next LabelResolver, store LabelStore) *CachedResolver {
	if store == nil {
		store = NewMemoryStore()
	}
	return &CachedResolver{next: next, store: store}
}

func (c *CachedResolver) AlbumLabel(ctx context.Context, albumID string) (string, error) {
	label, ok, err := c.store.GetLabel(ctx, albumID)
	if err != nil {
		return "", err
	}
	if ok {
		return label, nil
	}

	label, err = c.next.AlbumLabel(ctx, albumID)
	if err != nil {
		return "", err
	}

	if err := c.store.PutLabel(ctx, albumID, label); err != nil {
		return "", err
	}
	return label, nil
}

// MemoryStore is a process-local [LabelStore].
type MemoryStore struct {
	mu     sync.RWMutex
	labels map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{labels: make(map[string]string)}
}

func (m *MemoryStore) GetLabel(_ context.Context, albumID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	label, ok := m.labels[albumID]
	return label, ok, nil
}

func (m *MemoryStore) PutLabel(_ context.Context, albumID, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[albumID] = label
	return nil
}

// Len returns the number of cached albums.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.labels)
}
