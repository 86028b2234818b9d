package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// Store is a Redis implementation of kvstore.Store. Keys are stored under
// "<prefix>:" so Clear can scope its wipe with a SCAN match.
type Store struct {
	client redis.UniversalClient
	prefix string
}

func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Open connects to the Redis server at url (redis://...) and pings it.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

func (s *Store) key(k string) string { return s.prefix + ":" + k }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

// Clear collects every key under the prefix before deleting any, so the
// SCAN cursor never runs over a keyspace it is shrinking.
func (s *Store) Clear(ctx context.Context) error {
	var (
		cursor uint64
		keys   []string
	)
	for {
		page, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan namespace %s: %w", s.prefix, err)
		}
		keys = append(keys, page...)
		if next == 0 {
			break
		}
		cursor = next
	}
	for len(keys) > 0 {
		n := min(len(keys), scanBatch)
		if err := s.client.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("clear namespace %s: %w", s.prefix, err)
		}
		keys = keys[n:]
	}
	return nil
}
