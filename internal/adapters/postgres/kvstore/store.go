package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	postgres "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/postgres"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/kvstore"
)

// Store is a Postgres implementation of kvstore.Store.
//
// Every row carries a namespace so several deployments can share one table;
// Clear only touches the store's own namespace.
type Store struct {
	pool      postgres.DB
	namespace string
}

func NewStore(pool postgres.DB, namespace string) *Store {
	return &Store{pool: pool, namespace: namespace}
}

// EnsureSchema creates the backing table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS club_kv (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (namespace, key)
		)
	`)
	if err != nil {
		return fmt.Errorf("create club_kv: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.pool == nil {
		return "", false, errors.New("nil postgres pool")
	}
	var v string
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM club_kv WHERE namespace = $1 AND key = $2
	`, s.namespace, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO club_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, s.namespace, key, value)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.ProgramLimitExceededCode {
			return fmt.Errorf("write key %s: %w", key, kvstore.ErrQuotaExceeded)
		}
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM club_kv WHERE namespace = $1`, s.namespace); err != nil {
		return fmt.Errorf("clear namespace %s: %w", s.namespace, err)
	}
	return nil
}
