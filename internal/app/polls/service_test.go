package polls_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memclock "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/clock"
	memkv "github.com/costa-brava-bikers/clubhouse-api/internal/adapters/memory/kvstore"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/clubstate"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	"github.com/costa-brava-bikers/clubhouse-api/internal/storage"
)

func newService(t *testing.T) (*polls.Service, *storage.Store) {
	t.Helper()
	store := storage.New(memkv.NewStore(), storage.Options{
		DevelopmentMode: true,
		Clock:           memclock.NewManualClock(time.Unix(100, 0).UTC()),
	})
	st := clubstate.Load(context.Background(), store)
	return polls.NewService(st, st), store
}

func wantStatus(t *testing.T, err error, status int, code string) {
	t.Helper()
	var ae *polls.Error
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v (type=%T), want %s %d", err, err, code, status)
	}
}

func votesOf(p domain.Poll, opt domain.OptionID) []domain.MemberID {
	for _, o := range p.Options {
		if o.ID == opt {
			return o.Votes
		}
	}
	return nil
}

func TestService_Vote_SingleChoice(t *testing.T) {
	t.Parallel()

	svc, store := newService(t)
	ctx := context.Background()

	// m1 starts on o1 in the seed; moving to o2 removes the old vote.
	got, err := svc.Vote(ctx, "m1", "p1", "o2")
	if err != nil {
		t.Fatalf("Vote err=%v", err)
	}
	if fmt.Sprint(votesOf(got, "o1")) != "[m2]" || fmt.Sprint(votesOf(got, "o2")) != "[m3 m1]" {
		t.Fatalf("votes o1=%v o2=%v", votesOf(got, "o1"), votesOf(got, "o2"))
	}

	// Voting again for the same option does not double count.
	got, err = svc.Vote(ctx, "m1", "p1", "o2")
	if err != nil {
		t.Fatalf("Vote (repeat) err=%v", err)
	}
	if tally := polls.Tally(got); tally.TotalVotes != 5 {
		t.Fatalf("TotalVotes=%d, want 5", tally.TotalVotes)
	}

	stored := store.GetPolls(ctx)
	if id, ok := stored[0].VotedOption("m1"); !ok || id != "o2" {
		t.Fatalf("persisted vote=%q ok=%v", id, ok)
	}
}

func TestService_Vote_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Vote(ctx, "m1", "nope", "o1")
	wantStatus(t, err, 404, "POLL_NOT_FOUND")
	_, err = svc.Vote(ctx, "m1", "p1", "o9")
	wantStatus(t, err, 422, "VALIDATION_ERROR")
	_, err = svc.Vote(ctx, "ghost", "p1", "o1")
	wantStatus(t, err, 401, "UNAUTHORIZED")

	ps := svc.ListPolls(ctx)
	ps[0].Active = false
	if _, err := svc.ReplacePolls(ctx, domain.AdminMemberID, ps); err != nil {
		t.Fatalf("ReplacePolls err=%v", err)
	}
	_, err = svc.Vote(ctx, "m1", "p1", "o1")
	wantStatus(t, err, 422, "POLL_INACTIVE")
}

func TestTally_SeedPoll(t *testing.T) {
	t.Parallel()

	tally := polls.Tally(storage.SeedPolls()[0])
	if tally.TotalVotes != 5 {
		t.Fatalf("TotalVotes=%d", tally.TotalVotes)
	}
	want := map[domain.OptionID]int{"o1": 40, "o2": 20, "o3": 40}
	for _, o := range tally.Options {
		if o.Percent != want[o.OptionID] {
			t.Fatalf("%s percent=%d, want %d", o.OptionID, o.Percent, want[o.OptionID])
		}
	}
}

func TestService_ReplacePolls(t *testing.T) {
	t.Parallel()

	svc, store := newService(t)
	n := 0
	svc.SetNewIDForTest(func(prefix string) string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	})
	ctx := context.Background()

	ps := svc.ListPolls(ctx)
	ps = append(ps, domain.Poll{
		Question: "  Breakfast stop?  ",
		Active:   true,
		Options: []domain.PollOption{
			{Title: "Option 1", Description: "Description here..."},
			{Title: "Option 2", Description: "Description here..."},
		},
	})

	got, err := svc.ReplacePolls(ctx, domain.AdminMemberID, ps)
	if err != nil {
		t.Fatalf("ReplacePolls err=%v", err)
	}
	if len(got) != 2 || got[1].ID != "p_1" || got[1].Question != "Breakfast stop?" {
		t.Fatalf("polls=%+v", got)
	}
	if got[1].Options[0].ID != "o_2" || got[1].Options[1].ID != "o_3" || got[1].Options[0].Votes == nil {
		t.Fatalf("options=%+v", got[1].Options)
	}
	if len(store.GetPolls(ctx)) != 2 {
		t.Fatalf("replacement not persisted")
	}

	// Deleting every poll is allowed.
	got, err = svc.ReplacePolls(ctx, domain.AdminMemberID, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("ReplacePolls(nil)=%v err=%v", got, err)
	}
}

func TestService_ReplacePolls_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.ReplacePolls(ctx, "m1", nil)
	wantStatus(t, err, 403, "FORBIDDEN")

	_, err = svc.ReplacePolls(ctx, domain.AdminMemberID, []domain.Poll{{ID: "p1", Question: " "}})
	wantStatus(t, err, 422, "VALIDATION_ERROR")

	_, err = svc.ReplacePolls(ctx, domain.AdminMemberID, []domain.Poll{{ID: "p1", Question: "a"}, {ID: "p1", Question: "b"}})
	wantStatus(t, err, 422, "VALIDATION_ERROR")

	_, err = svc.ReplacePolls(ctx, domain.AdminMemberID, []domain.Poll{{ID: "p1", Question: "a", Options: []domain.PollOption{{ID: "o1"}, {ID: "o1"}}}})
	wantStatus(t, err, 422, "VALIDATION_ERROR")
}
