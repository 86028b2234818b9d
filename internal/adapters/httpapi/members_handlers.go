package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	id := domain.MemberID(strings.TrimSpace(body.MemberID))
	if id == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "memberId is required", map[string]any{"memberId": "must be non-empty"})
		return
	}
	m, err := s.Members.Login(r.Context(), id, body.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if s.Sessions == nil {
		writeError(w, r, http.StatusServiceUnavailable, "SESSIONS_UNAVAILABLE", "login is not configured", nil)
		return
	}
	token, exp, err := s.Sessions.Issue(m)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.log.Info("member logged in", "memberId", m.ID)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
		Member:    memberFromDomain(m),
	})
}

func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	ms := s.Members.ListMembers(r.Context())
	out := make([]Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberFromDomain(m))
	}
	writeJSON(w, http.StatusOK, MembersResponse{Members: out})
}

func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	s.writeMember(w, r, caller)
}

func (s *Server) GetMember(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	s.writeMember(w, r, domain.MemberID(chi.URLParam(r, "memberId")))
}

func (s *Server) writeMember(w http.ResponseWriter, r *http.Request, id domain.MemberID) {
	m, err := s.Members.GetMember(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MemberResponse{Member: memberFromDomain(m)})
}

func (s *Server) UpdateMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body UpdateMemberRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	m, err := s.Members.UpdateMember(r.Context(), caller, domain.MemberID(chi.URLParam(r, "memberId")), updateMemberInputFromRequest(body))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MemberResponse{Member: memberFromDomain(m)})
}

func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body AddMemberRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	canon := body
	canon.Name = domain.NormalizeHumanName(canon.Name)
	bodyHash, err := hashJSON(canon)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.idempotent(w, r, "/members", bodyHash, func() (int, any, error) {
		m, err := s.Members.AddMember(r.Context(), caller, body.toInput())
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, MemberResponse{Member: memberFromDomain(m)}, nil
	})
}

func (s *Server) DeleteMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := s.Members.DeleteMember(r.Context(), caller, domain.MemberID(chi.URLParam(r, "memberId"))); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
