package contracttest

import (
	"context"
	"testing"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	idempotencyport "github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
	kvstoreport "github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/kvstore"
)

type CleanupFunc = func()

type KVStoreFactory func(t *testing.T) (kvstoreport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		MemberID: domain.MemberID("m1"),
		Method:   "POST",
		Route:    "/trips/{tripId}/comments",
		BodyHash: "abc",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(empty) ok=%v err=%v, want miss", ok, err)
	}
	rec := idempotencyport.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"id":"c1"}`),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"id":"c1"}` || got.StatusCode != 201 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// A different member using the same key must not see the record.
	other := fp
	other.MemberID = "m2"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other member) ok=%v err=%v, want miss", ok, err)
	}
}

// RunKVStore exercises the local-storage semantics every backend must honor.
func RunKVStore(t *testing.T, newStore KVStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear (reset): %v", err)
	}

	// Absent keys are not errors.
	if v, ok, err := store.Get(ctx, "cbb_members"); err != nil || ok || v != "" {
		t.Fatalf("Get(absent)=%q ok=%v err=%v", v, ok, err)
	}

	if err := store.Set(ctx, "cbb_members", `[{"id":"admin"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get(ctx, "cbb_members")
	if err != nil || !ok || v != `[{"id":"admin"}]` {
		t.Fatalf("Get=%q ok=%v err=%v", v, ok, err)
	}

	// Overwrite semantics.
	if err := store.Set(ctx, "cbb_members", `[]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _, _ := store.Get(ctx, "cbb_members"); v != `[]` {
		t.Fatalf("Get after overwrite=%q", v)
	}

	// Empty values are stored, not treated as absent.
	if err := store.Set(ctx, "empty", ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if v, ok, err := store.Get(ctx, "empty"); err != nil || !ok || v != "" {
		t.Fatalf("Get(empty)=%q ok=%v err=%v", v, ok, err)
	}

	// Clear wipes everything in the namespace, including unrelated keys.
	if err := store.Set(ctx, "some_other_key", "should be cleared"); err != nil {
		t.Fatalf("Set other: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"cbb_members", "empty", "some_other_key"} {
		if _, ok, err := store.Get(ctx, k); err != nil || ok {
			t.Fatalf("Get(%q) after Clear ok=%v err=%v", k, ok, err)
		}
	}

	// Store is usable after Clear.
	if err := store.Set(ctx, "cbb_version", "1.1.0"); err != nil {
		t.Fatalf("Set after Clear: %v", err)
	}
	if v, ok, _ := store.Get(ctx, "cbb_version"); !ok || v != "1.1.0" {
		t.Fatalf("Get(cbb_version)=%q ok=%v", v, ok)
	}
}
