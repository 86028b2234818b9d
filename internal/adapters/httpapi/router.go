package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
)

type RouterOptions struct {
	// AuthMiddleware guards every route except /healthz and /login.
	// When nil, protected routes answer 401.
	AuthMiddleware func(http.Handler) http.Handler
	Logger         logger.Logger
}

// NewRouter constructs the API HTTP router without authentication.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/login", s.Login)

	r.Group(func(r chi.Router) {
		if opts.AuthMiddleware != nil {
			r.Use(opts.AuthMiddleware)
		}

		r.Get("/members", s.ListMembers)
		r.Post("/members", s.AddMember)
		r.Get("/members/me", s.GetMe)
		r.Get("/members/{memberId}", s.GetMember)
		r.Patch("/members/{memberId}", s.UpdateMember)
		r.Delete("/members/{memberId}", s.DeleteMember)

		r.Get("/trips/upcoming", s.GetUpcomingTrip)
		r.Get("/trips/past", s.ListPastTrips)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/{tripId}", s.GetTrip)
		r.Put("/trips/{tripId}", s.SaveTrip)
		r.Delete("/trips/{tripId}", s.DeleteTrip)
		r.Post("/trips/{tripId}/complete", s.CompleteTrip)
		r.Post("/trips/{tripId}/join", s.ToggleJoin)
		r.Post("/trips/{tripId}/comments", s.PostComment)
		r.Post("/trips/{tripId}/photos", s.AddPhoto)
		r.Post("/trips/{tripId}/briefing", s.RegenerateBriefing)

		r.Get("/polls", s.ListPolls)
		r.Put("/polls", s.ReplacePolls)
		r.Post("/polls/{pollId}/votes", s.Vote)

		r.Post("/uploads", s.UploadImage)
	})
	return r
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}
