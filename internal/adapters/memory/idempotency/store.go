package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
)

// DefaultTTL bounds how long a chat submission can be replayed.
const DefaultTTL = 10 * time.Minute

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use. Records older than the TTL are treated as
// absent and dropped on access.
type Store struct {
	mu  sync.Mutex
	m   map[idempotency.Fingerprint]idempotency.Record
	ttl time.Duration
	now func() time.Time
}

func NewStore() *Store {
	return NewStoreWithTTL(DefaultTTL, nil)
}

// NewStoreWithTTL returns a store with a custom expiry. A nil now uses the wall clock.
func NewStoreWithTTL(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		m:   make(map[idempotency.Fingerprint]idempotency.Record),
		ttl: ttl,
		now: now,
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	if s.expired(rec) {
		delete(s.m, fp)
		return idempotency.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[fp] = rec
	for k, v := range s.m {
		if s.expired(v) {
			delete(s.m, k)
		}
	}
	return nil
}

func (s *Store) expired(rec idempotency.Record) bool {
	return s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl
}
