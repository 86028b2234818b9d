package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memclock "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/clock"
	memidempotency "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/idempotency"
	memkv "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/kvstore"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/assistant"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/clubstate"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/media"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/members"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/trips"
	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/auth/session"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/imagehost"
	"github.com/costa-brava-bikers/clubhouse-api/internal/storage"
)

type fakeGenerator struct{ text string }

func (g fakeGenerator) GenerateText(context.Context, string) (string, error) { return g.text, nil }

type fakeHost struct{ url string }

func (h fakeHost) Upload(context.Context, imagehost.Image) (string, error) { return h.url, nil }

type testEnv struct {
	h        http.Handler
	state    *clubstate.State
	clk      *memclock.ManualClock
	sessions *session.Manager
}

type envOptions struct {
	sessionAuth bool
	noImageHost bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	clk := memclock.NewManualClock(time.UnixMilli(1700000000000).UTC())
	store := storage.New(memkv.NewStore(), storage.Options{DevelopmentMode: true, Clock: clk})
	st := clubstate.Load(context.Background(), store)

	sessions := session.NewManager(config.SessionConfig{
		Secret: "test-secret-0123456789",
		Issuer: "test-iss",
		TTL:    time.Hour,
	}, clk)

	var host imagehost.Host = fakeHost{url: "https://i.example.com/bike.png"}
	if opts.noImageHost {
		host = nil
	}

	tripSvc := trips.NewService(st, st, assistant.NewService(fakeGenerator{text: "Ride safe."}, nil), clk)
	n := 0
	tripSvc.SetNewCommentIDForTest(func() domain.CommentID {
		n++
		return domain.CommentID(fmt.Sprintf("c_test_%d", n))
	})

	api := NewServer(ServerOptions{
		Members:  members.NewService(st),
		Trips:    tripSvc,
		Polls:    polls.NewService(st, st),
		Media:    media.NewService(host, nil),
		Sessions: sessions,
		Idem:     memidempotency.NewStore(),
	})

	auth := NewDevAuthMiddleware("", nil)
	if opts.sessionAuth {
		auth = NewAuthMiddleware(sessions)
	}
	return &testEnv{
		h:        NewRouterWithOptions(api, RouterOptions{AuthMiddleware: auth}),
		state:    st,
		clk:      clk,
		sessions: sessions,
	}
}

// do sends a JSON request as member (via X-Debug-Member when non-empty).
func (e *testEnv) do(t *testing.T, method, path, member string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if member != "" {
		req.Header.Set("X-Debug-Member", member)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) ErrorResponse {
	t.Helper()
	requireStatus(t, rec, wantStatus)
	er := decode[ErrorResponse](t, rec)
	if er.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", er.Error.Code, wantCode, rec.Body.String())
	}
	return er
}

func domainID(s string) domain.MemberID { return domain.MemberID(s) }

func mustMember(t *testing.T, e *testEnv, id string) domain.Member {
	t.Helper()
	m, ok := e.state.Member(domain.MemberID(id))
	if !ok {
		t.Fatalf("member %q not found", id)
	}
	return m
}
