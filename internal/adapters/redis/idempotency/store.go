package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
)

// Store is a Redis implementation of idempotency.Store. Each record is a JSON
// value under "<prefix>:idem:<fingerprint hash>" and expires via the key TTL.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

type record struct {
	StatusCode  int       `json:"statusCode"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Store) key(fp idempotency.Fingerprint) string {
	b, _ := json.Marshal([]string{string(fp.Key), string(fp.MemberID), fp.Method, fp.Route, fp.BodyHash})
	sum := sha256.Sum256(b)
	return s.prefix + ":idem:" + hex.EncodeToString(sum[:])
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	raw, err := s.client.Get(ctx, s.key(fp)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, fmt.Errorf("read idempotency record: %w", err)
	}
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return idempotency.Record{}, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	return idempotency.Record{
		StatusCode:  r.StatusCode,
		ContentType: r.ContentType,
		Body:        r.Body,
		CreatedAt:   r.CreatedAt.UTC(),
	}, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(record{
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Body:        rec.Body,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(fp), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("write idempotency record: %w", err)
	}
	return nil
}
