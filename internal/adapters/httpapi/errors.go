package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/members"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/trips"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

// writeAppError maps service errors to their HTTP status. Anything else is a 500.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		me *members.Error
		te *trips.Error
		pe *polls.Error
	)
	switch {
	case errors.As(err, &me):
		writeError(w, r, me.Status, me.Code, me.Message, me.Details)
	case errors.As(err, &te):
		writeError(w, r, te.Status, te.Code, te.Message, te.Details)
	case errors.As(err, &pe):
		writeError(w, r, pe.Status, pe.Code, pe.Message, pe.Details)
	default:
		s.log.Error("request failed", "err", err, "method", r.Method, "path", r.URL.Path, "requestId", middleware.GetReqID(r.Context()))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
