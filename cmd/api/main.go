package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/costa-brava-bikers/clubhouse-api/internal/adapters/gemini"
	"github.com/costa-brava-bikers/clubhouse-api/internal/adapters/httpapi"
	"github.com/costa-brava-bikers/clubhouse-api/internal/adapters/imgbb"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/assistant"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/clubstate"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/media"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/members"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/trips"
	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/auth/session"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/backend"
	platformclock "github.com/costa-brava-bikers/clubhouse-api/internal/platform/clock"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/imagehost"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/textgen"
	"github.com/costa-brava-bikers/clubhouse-api/internal/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.New(logger.Config{}).Error("invalid dotenv file", "err", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.New(logger.Config{}).Error("invalid config", "err", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	stores, err := backend.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	store := storage.New(stores.KV, storage.Options{
		DevelopmentMode: cfg.DevMode,
		Logger:          log,
		Clock:           clk,
	})
	state := clubstate.Load(ctx, store)

	// External services are optional; without keys the assistant falls back
	// to canned text and uploads report that they are not configured.
	var gen textgen.Generator
	if cfg.GeminiAPIKey != "" {
		gen = gemini.New(gemini.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, Timeout: cfg.HTTPTimeout})
	} else {
		log.Warn("GEMINI_API_KEY not set; assistant replies use fallback text")
	}
	var host imagehost.Host
	if cfg.ImgBBAPIKey != "" {
		host = imgbb.New(imgbb.Options{APIKey: cfg.ImgBBAPIKey, Timeout: cfg.HTTPTimeout})
	} else {
		log.Warn("IMGBB_API_KEY not set; image uploads are disabled")
	}

	sessionCfg := cfg.Session
	if cfg.AuthMode == config.AuthModeDev && sessionCfg.Secret == "" {
		sessionCfg = config.SessionConfig{Secret: ephemeralSecret(), Issuer: "clubhouse-api-dev", TTL: 24 * time.Hour}
	}
	sessions := session.NewManager(sessionCfg, clk)

	// Auth configuration:
	// - Production: bearer session tokens issued by POST /login
	// - Local dev: AUTH_MODE=dev also accepts X-Debug-Member
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case config.AuthModeDev:
		log.Warn("AUTH_MODE=dev: X-Debug-Member is trusted; do not use in production")
		authMW = httpapi.NewDevAuthMiddleware(domain.MemberID(cfg.DevMember), sessions)
	default:
		authMW = httpapi.NewAuthMiddleware(sessions)
	}

	api := httpapi.NewServer(httpapi.ServerOptions{
		Members:  members.NewService(state),
		Trips:    trips.NewService(state, state, assistant.NewService(gen, log), clk),
		Polls:    polls.NewService(state, state),
		Media:    media.NewService(host, log),
		Sessions: sessions,
		Idem:     stores.Idempotency,
		Logger:   log,
	})
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		AuthMiddleware: authMW,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "port", cfg.Port, "backend", cfg.Storage.Backend, "auth", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ephemeralSecret signs dev-mode sessions; tokens do not survive a restart.
func ephemeralSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
