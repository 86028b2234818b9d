package itest

import (
	"net/http"
	"testing"

	"github.com/costa-brava-bikers/clubhouse-api/internal/adapters/httpapi"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
)

func TestClub_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			cfg := storageConfig(t, b)
			srv := newTestServer(t, cfg)

			// Missing auth header => 401
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/members/me", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
			}

			admin := srv.login(t, "admin", "admin123")
			rider := srv.login(t, "m3", "1234")

			// Admin adds a member who can then log in.
			var newID string
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/members", admin, httpapi.AddMemberRequest{Name: "Happy", Password: "lowell"})
				requireStatus(t, status, body, http.StatusCreated)
				newID = mustUnmarshal[httpapi.MemberResponse](t, body).Member.ID
				srv.login(t, newID, "lowell")
			}

			// Upcoming trip gets its briefing on first read.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/trips/upcoming", rider, nil)
				requireStatus(t, status, body, http.StatusOK)
				up := mustUnmarshal[httpapi.UpcomingTripResponse](t, body)
				if up.Trip == nil || up.Trip.AIBriefing == "" {
					t.Fatalf("upcoming=%s", string(body))
				}
			}

			// Idempotent comment: one write, replayed response.
			{
				comment := httpapi.PostCommentRequest{Text: "Bringing the spare chain"}
				status, first, _ := srv.doJSON(t, http.MethodPost, "/trips/t_next/comments", rider, comment, "Idempotency-Key", "c-1")
				requireStatus(t, status, first, http.StatusCreated)
				status, second, hdr := srv.doJSON(t, http.MethodPost, "/trips/t_next/comments", rider, comment, "Idempotency-Key", "c-1")
				requireStatus(t, status, second, http.StatusCreated)
				requireHeaderPresent(t, hdr, "Idempotent-Replayed")
				if string(first) != string(second) {
					t.Fatalf("replay differs:\n%s\n%s", first, second)
				}
			}

			// Vote moves m3 from o2 to o1.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/polls/p1/votes", rider, httpapi.VoteRequest{OptionID: "o1"})
				requireStatus(t, status, body, http.StatusOK)
			}

			if b == config.BackendMemory {
				return
			}

			// Restart on the same storage: everything above survives.
			srv2 := newTestServer(t, cfg)
			rider2 := srv2.login(t, "m3", "1234")
			srv2.login(t, newID, "lowell")
			{
				status, body, _ := srv2.doJSON(t, http.MethodGet, "/trips/upcoming", rider2, nil)
				requireStatus(t, status, body, http.StatusOK)
				up := mustUnmarshal[httpapi.UpcomingTripResponse](t, body)
				if n := len(up.Trip.Comments); n != 3 {
					t.Fatalf("comments after restart=%d, want 3", n)
				}
			}
			{
				status, body, _ := srv2.doJSON(t, http.MethodGet, "/polls", rider2, nil)
				requireStatus(t, status, body, http.StatusOK)
				p := mustUnmarshal[httpapi.PollsResponse](t, body).Polls[0]
				if v, _ := p.MyVote.Get(); v != "o1" || p.Options[0].VoteCount != 3 {
					t.Fatalf("poll after restart=%+v", p)
				}
			}
		})
	}
}
