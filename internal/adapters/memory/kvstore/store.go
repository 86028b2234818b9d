package kvstore

import (
	"context"
	"sync"

	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/kvstore"
)

// Store is an in-memory implementation of kvstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[string]string

	// quota bounds the total size of keys+values in bytes; 0 means unlimited.
	quota int
}

func NewStore() *Store {
	return &Store{m: make(map[string]string)}
}

// NewStoreWithQuota returns a store that rejects writes once the namespace
// would exceed quota bytes, the way browser local storage does.
func NewStoreWithQuota(quota int) *Store {
	s := NewStore()
	s.quota = quota
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quota > 0 {
		size := len(key) + len(value)
		for k, v := range s.m {
			if k == key {
				continue
			}
			size += len(k) + len(v)
		}
		if size > s.quota {
			return kvstore.ErrQuotaExceeded
		}
	}
	s.m[key] = value
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]string)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
