// Package backend opens the stores selected by configuration.
package backend

import (
	"context"
	"fmt"

	memidem "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/idempotency"
	memkv "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/kvstore"
	"github.com/costa-brava-bikers/clubhouse-api/internal/adapters/postgres"
	pgidem "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/postgres/idempotency"
	pgkv "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/postgres/kvstore"
	redisidem "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/redis/idempotency"
	rediskv "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/redis/kvstore"
	sqlitekv "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/sqlite/kvstore"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/kvstore"
)

// Stores bundles what the service persists. Close releases connections and
// is never nil.
type Stores struct {
	KV          kvstore.Store
	Idempotency idempotency.Store
	Close       func()
}

// Open connects the configured backend. Postgres and Redis also hold
// idempotency records; the other backends keep them in memory.
func Open(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Stores, error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		return Stores{KV: memkv.NewStore(), Idempotency: memidem.NewStore(), Close: noop}, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return Stores{Close: noop}, fmt.Errorf("postgres: %w", err)
		}
		kv := pgkv.NewStore(pool, cfg.Namespace)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return Stores{Close: noop}, fmt.Errorf("postgres schema: %w", err)
		}
		idem := pgidem.NewStore(pool, cfg.Namespace, memidem.DefaultTTL)
		if err := idem.EnsureSchema(ctx); err != nil {
			pool.Close()
			return Stores{Close: noop}, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("storage backend ready", "backend", cfg.Backend, "namespace", cfg.Namespace)
		return Stores{KV: kv, Idempotency: idem, Close: pool.Close}, nil

	case config.BackendRedis:
		client, err := rediskv.Open(ctx, cfg.RedisURL)
		if err != nil {
			return Stores{Close: noop}, fmt.Errorf("redis: %w", err)
		}
		log.Info("storage backend ready", "backend", cfg.Backend, "namespace", cfg.Namespace)
		return Stores{
			KV:          rediskv.NewStore(client, cfg.Namespace),
			Idempotency: redisidem.NewStore(client, cfg.Namespace, memidem.DefaultTTL),
			Close:       func() { _ = client.Close() },
		}, nil

	case config.BackendSQLite, "":
		s, err := sqlitekv.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return Stores{Close: noop}, fmt.Errorf("sqlite: %w", err)
		}
		log.Info("storage backend ready", "backend", config.BackendSQLite, "path", cfg.SQLitePath)
		return Stores{KV: s, Idempotency: memidem.NewStore(), Close: func() { _ = s.Close() }}, nil

	default:
		return Stores{Close: noop}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
