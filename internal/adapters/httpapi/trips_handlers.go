package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

func tripIDParam(r *http.Request) domain.TripID {
	return domain.TripID(chi.URLParam(r, "tripId"))
}

func (s *Server) GetUpcomingTrip(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	t, err := s.Trips.UpcomingTrip(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UpcomingTripResponse{Trip: t})
}

func (s *Server) ListPastTrips(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	ts := s.Trips.PastTrips(r.Context())
	if ts == nil {
		ts = []domain.Trip{}
	}
	writeJSON(w, http.StatusOK, TripsResponse{Trips: ts})
}

func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	t, err := s.Trips.GetTrip(r.Context(), tripIDParam(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: t})
}

func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body domain.Trip
	if !decodeJSON(w, r, &body) {
		return
	}
	// The server assigns ids for new trips.
	body.ID = ""
	bodyHash, err := hashJSON(body)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.idempotent(w, r, "/trips", bodyHash, func() (int, any, error) {
		t, err := s.Trips.SaveTrip(r.Context(), caller, body)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, TripResponse{Trip: t}, nil
	})
}

func (s *Server) SaveTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body domain.Trip
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ID = tripIDParam(r)
	t, err := s.Trips.SaveTrip(r.Context(), caller, body)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: t})
}

func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := s.Trips.DeleteTrip(r.Context(), caller, tripIDParam(r)); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.CompleteTrip(r.Context(), caller, tripIDParam(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: t})
}

func (s *Server) ToggleJoin(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.ToggleJoin(r.Context(), caller, tripIDParam(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: t})
}

func (s *Server) PostComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body PostCommentRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	tripID := tripIDParam(r)
	canon := struct {
		TripID   string `json:"tripId"`
		Text     string `json:"text"`
		ImageURL string `json:"imageUrl"`
	}{string(tripID), strings.TrimSpace(body.Text), strings.TrimSpace(body.ImageURL)}
	bodyHash, err := hashJSON(canon)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.idempotent(w, r, "/trips/{tripId}/comments", bodyHash, func() (int, any, error) {
		res, err := s.Trips.PostComment(r.Context(), caller, tripID, body.Text, body.ImageURL)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, PostCommentResponse{Comment: res.Comment, Reply: res.Reply}, nil
	})
}

func (s *Server) AddPhoto(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body AddPhotoRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	t, err := s.Trips.AddPhoto(r.Context(), caller, tripIDParam(r), strings.TrimSpace(body.URL))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: t})
}

func (s *Server) RegenerateBriefing(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.RegenerateBriefing(r.Context(), caller, tripIDParam(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: t})
}
