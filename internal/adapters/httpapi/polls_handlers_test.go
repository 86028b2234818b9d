package httpapi

import (
	"net/http"
	"testing"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

func TestPolls_ListIncludesTally(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, envOptions{})
	rec := e.do(t, http.MethodGet, "/polls", "m3", nil)
	requireStatus(t, rec, http.StatusOK)
	got := decode[PollsResponse](t, rec).Polls
	if len(got) != 1 {
		t.Fatalf("polls=%+v", got)
	}
	p := got[0]
	if p.TotalVotes != 5 || len(p.Options) != 3 {
		t.Fatalf("poll=%+v", p)
	}
	if p.Options[0].VoteCount != 2 || p.Options[0].Percent != 40 || p.Options[1].Percent != 20 {
		t.Fatalf("options=%+v", p.Options)
	}
	if v, err := p.MyVote.Get(); err != nil || v != "o2" {
		t.Fatalf("myVote=%v err=%v", v, err)
	}

	rec = e.do(t, http.MethodGet, "/polls", "admin", nil)
	if p := decode[PollsResponse](t, rec).Polls[0]; !p.MyVote.IsNull() {
		t.Fatalf("admin has not voted, myVote=%v", p.MyVote)
	}
}

func TestPolls_VoteMovesCallersVote(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, envOptions{})
	rec := e.do(t, http.MethodPost, "/polls/p1/votes", "m1", VoteRequest{OptionID: "o3"})
	requireStatus(t, rec, http.StatusOK)
	p := decode[PollResponse](t, rec).Poll
	if p.TotalVotes != 5 || p.Options[0].VoteCount != 1 || p.Options[2].VoteCount != 3 {
		t.Fatalf("poll=%+v", p)
	}
	if v, _ := p.MyVote.Get(); v != "o3" {
		t.Fatalf("myVote=%q", v)
	}

	rec = e.do(t, http.MethodPost, "/polls/p1/votes", "m1", VoteRequest{OptionID: "o9"})
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	rec = e.do(t, http.MethodPost, "/polls/p9/votes", "m1", VoteRequest{OptionID: "o1"})
	requireErrorCode(t, rec, http.StatusNotFound, "POLL_NOT_FOUND")
	rec = e.do(t, http.MethodPost, "/polls/p1/votes", "ghost", VoteRequest{OptionID: "o1"})
	requireErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestPolls_Replace(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, envOptions{})
	body := ReplacePollsRequest{Polls: []domain.Poll{{
		Question: "  Sunday or Saturday? ",
		Active:   true,
		Options:  []domain.PollOption{{Title: "Saturday"}, {Title: "Sunday"}},
	}}}

	rec := e.do(t, http.MethodPut, "/polls", "m1", body)
	requireErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = e.do(t, http.MethodPut, "/polls", "admin", body)
	requireStatus(t, rec, http.StatusOK)
	got := decode[PollsResponse](t, rec).Polls
	if len(got) != 1 || got[0].Question != "Sunday or Saturday?" || got[0].ID == "" {
		t.Fatalf("polls=%+v", got)
	}
	if got[0].Options[0].ID == "" || got[0].Options[0].Votes == nil {
		t.Fatalf("options=%+v", got[0].Options)
	}

	// Closed polls reject votes.
	closed := e.state.Polls()
	closed[0].Active = false
	rec = e.do(t, http.MethodPut, "/polls", "admin", ReplacePollsRequest{Polls: closed})
	requireStatus(t, rec, http.StatusOK)
	rec = e.do(t, http.MethodPost, "/polls/"+string(closed[0].ID)+"/votes", "m1", VoteRequest{OptionID: string(closed[0].Options[0].ID)})
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "POLL_INACTIVE")
}
