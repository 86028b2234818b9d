package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
)

// maxJSONBody leaves room for trips carrying an inline GPX file.
const maxJSONBody = 8 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			return false
		}
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid JSON body", map[string]any{"error": err.Error()})
		return false
	}
	return true
}

// requireCaller returns the authenticated member or writes 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (domain.MemberID, bool) {
	id, ok := MemberIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing member", nil)
	}
	return id, ok
}

func hashJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// idempotent runs handle at most once per Idempotency-Key:
// - replay if same member+key+route+bodyHash
// - reject if same member+key+route with a different bodyHash (409)
// Requests without the header run normally.
func (s *Server) idempotent(w http.ResponseWriter, r *http.Request, route string, bodyHash string, handle func() (int, any, error)) {
	ctx := r.Context()
	caller, _ := MemberIDFromContext(ctx)
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" || s.Idem == nil {
		status, body, err := handle()
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, status, body)
		return
	}

	metaFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		MemberID: caller,
		Method:   r.Method,
		Route:    route,
		BodyHash: "",
	}
	if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
		s.writeAppError(w, r, err)
		return
	} else if ok {
		if string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
			return
		}
	} else {
		_ = s.Idem.Put(ctx, metaFP, idempotency.Record{
			StatusCode:  0,
			ContentType: "text/plain",
			Body:        []byte(bodyHash),
			CreatedAt:   s.now(),
		})
	}

	respFP := metaFP
	respFP.BodyHash = bodyHash
	if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
		s.writeAppError(w, r, err)
		return
	} else if ok && rec.StatusCode >= 200 && rec.StatusCode < 300 && strings.HasPrefix(rec.ContentType, "application/json") {
		w.Header().Set("Content-Type", rec.ContentType)
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
		return
	}

	status, body, err := handle()
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	b, err := json.Marshal(body)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.Idem.Put(ctx, respFP, idempotency.Record{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        b,
		CreatedAt:   s.now(),
	}); err != nil {
		s.log.Warn("failed to store idempotent response", "err", err, "route", route)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
