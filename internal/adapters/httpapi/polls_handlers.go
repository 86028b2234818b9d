package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

func pollsView(ps []domain.Poll, caller domain.MemberID) []Poll {
	out := make([]Poll, 0, len(ps))
	for _, p := range ps {
		out = append(out, pollFromDomain(p, polls.Tally(p), caller))
	}
	return out
}

func (s *Server) ListPolls(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PollsResponse{Polls: pollsView(s.Polls.ListPolls(r.Context()), caller)})
}

func (s *Server) ReplacePolls(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body ReplacePollsRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	ps, err := s.Polls.ReplacePolls(r.Context(), caller, body.Polls)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PollsResponse{Polls: pollsView(ps, caller)})
}

func (s *Server) Vote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body VoteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := s.Polls.Vote(r.Context(), caller, domain.PollID(chi.URLParam(r, "pollId")), domain.OptionID(strings.TrimSpace(body.OptionID)))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PollResponse{Poll: pollFromDomain(p, polls.Tally(p), caller)})
}
