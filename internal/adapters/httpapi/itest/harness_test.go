package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/costa-brava-bikers/clubhouse-api/internal/adapters/httpapi"
	memclock "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/clock"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/assistant"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/clubstate"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/media"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/members"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/trips"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/auth/session"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/backend"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/storage"
)

func backendsFromEnv(t *testing.T) []string {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "sqlite":
		return []string{config.BackendSQLite}
	case "memory":
		return []string{config.BackendMemory}
	case "redis":
		return []string{config.BackendRedis}
	case "postgres":
		return []string{config.BackendPostgres}
	case "all":
		bs := []string{config.BackendSQLite, config.BackendRedis}
		if os.Getenv("TEST_DATABASE_URL") != "" {
			bs = append(bs, config.BackendPostgres)
		}
		return bs
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|sqlite|redis|postgres|all)")
		return nil
	}
}

func storageConfig(t *testing.T, b string) config.StorageConfig {
	t.Helper()
	cfg := config.StorageConfig{Backend: b, Namespace: "itest-" + uuid.NewString()}
	switch b {
	case config.BackendSQLite:
		cfg.SQLitePath = filepath.Join(t.TempDir(), "club.db")
	case config.BackendRedis:
		mr := miniredis.RunT(t)
		cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	case config.BackendPostgres:
		cfg.DatabaseURL = os.Getenv("TEST_DATABASE_URL")
		if cfg.DatabaseURL == "" {
			t.Skip("TEST_DATABASE_URL not set")
		}
	}
	return cfg
}

type echoGenerator struct{}

func (echoGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	return "briefing: " + prompt[:min(len(prompt), 20)], nil
}

type testServer struct {
	baseURL string
	client  *http.Client
}

// newTestServer boots the full stack on cfg. Booting twice on the same
// storage config simulates a restart.
func newTestServer(t *testing.T, cfg config.StorageConfig) *testServer {
	t.Helper()
	ctx := context.Background()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	stores, err := backend.Open(ctx, cfg, logger.Nop())
	if err != nil {
		t.Fatalf("backend.Open: %v", err)
	}
	t.Cleanup(stores.Close)

	store := storage.New(stores.KV, storage.Options{Clock: clk})
	st := clubstate.Load(ctx, store)
	sessions := session.NewManager(config.SessionConfig{Secret: "itest-secret-0123456789", Issuer: "itest", TTL: time.Hour}, clk)

	api := httpapi.NewServer(httpapi.ServerOptions{
		Members:  members.NewService(st),
		Trips:    trips.NewService(st, st, assistant.NewService(echoGenerator{}, nil), clk),
		Polls:    polls.NewService(st, st),
		Media:    media.NewService(nil, nil),
		Sessions: sessions,
		Idem:     stores.Idempotency,
	})
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{AuthMiddleware: httpapi.NewAuthMiddleware(sessions)})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, token string, body any, hdr ...string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) login(t *testing.T, member, password string) string {
	t.Helper()
	status, body, _ := s.doJSON(t, http.MethodPost, "/login", "", map[string]string{"memberId": member, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login(%s) status=%d body=%s", member, status, string(body))
	}
	return mustUnmarshal[httpapi.LoginResponse](t, body).Token
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[httpapi.ErrorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
