package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	postgres "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/postgres"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
)

// Store is a Postgres implementation of idempotency.Store.
//
// Rows are scoped by namespace like the key-value table. Records older than
// ttl are ignored on read and pruned on write.
type Store struct {
	pool      postgres.DB
	namespace string
	ttl       time.Duration
	now       func() time.Time
}

func NewStore(pool postgres.DB, namespace string, ttl time.Duration) *Store {
	return &Store{pool: pool, namespace: namespace, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS club_idempotency (
			namespace       TEXT NOT NULL,
			idempotency_key TEXT NOT NULL,
			member_id       TEXT NOT NULL,
			method          TEXT NOT NULL,
			route           TEXT NOT NULL,
			body_hash       TEXT NOT NULL,
			status_code     INTEGER NOT NULL,
			content_type    TEXT NOT NULL,
			body            BYTEA NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (namespace, idempotency_key, member_id, method, route, body_hash)
		)
	`)
	if err != nil {
		return fmt.Errorf("create club_idempotency: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT status_code, content_type, body, created_at
		FROM club_idempotency
		WHERE namespace = $1
		  AND idempotency_key = $2
		  AND member_id = $3
		  AND method = $4
		  AND route = $5
		  AND body_hash = $6
	`,
		s.namespace,
		string(fp.Key),
		string(fp.MemberID),
		fp.Method,
		fp.Route,
		fp.BodyHash,
	)
	var rec idempotency.Record
	if err := row.Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl {
		return idempotency.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO club_idempotency (
			namespace,
			idempotency_key,
			member_id,
			method,
			route,
			body_hash,
			status_code,
			content_type,
			body,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (namespace, idempotency_key, member_id, method, route, body_hash)
		DO UPDATE SET
			status_code = EXCLUDED.status_code,
			content_type = EXCLUDED.content_type,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at
	`,
		s.namespace,
		string(fp.Key),
		string(fp.MemberID),
		fp.Method,
		fp.Route,
		fp.BodyHash,
		rec.StatusCode,
		rec.ContentType,
		rec.Body,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("write idempotency record: %w", err)
	}
	if s.ttl > 0 {
		if _, err := s.pool.Exec(ctx, `
			DELETE FROM club_idempotency WHERE namespace = $1 AND created_at < $2
		`, s.namespace, s.now().Add(-s.ttl)); err != nil {
			return fmt.Errorf("prune idempotency records: %w", err)
		}
	}
	return nil
}
