// Command clubctl inspects and maintains the club's stored collections.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/backend"
	platformclock "github.com/costa-brava-bikers/clubhouse-api/internal/platform/clock"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/storage"
)

func main() {
	cmd := newRootCommand(openFromEnv)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openFromEnv opens the same storage the API would use.
func openFromEnv(ctx context.Context) (*storage.Store, func(), error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(func(k string) string {
		// The CLI never serves requests, so session settings are irrelevant.
		if k == "AUTH_MODE" {
			return config.AuthModeDev
		}
		return os.Getenv(k)
	})
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	stores, err := backend.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, nil, err
	}
	s := storage.New(stores.KV, storage.Options{
		DevelopmentMode: cfg.DevMode,
		Logger:          log,
		Clock:           platformclock.NewSystemClock(),
	})
	return s, stores.Close, nil
}
