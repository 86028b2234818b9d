package httpapi

import (
	"time"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/media"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/members"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/polls"
	"github.com/costa-brava-bikers/clubhouse-api/internal/app/trips"
	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/idempotency"
)

// SessionIssuer mints the bearer token returned by /login.
type SessionIssuer interface {
	Issue(m domain.Member) (string, time.Time, error)
}

// Server holds the application services behind the HTTP routes.
type Server struct {
	Members  *members.Service
	Trips    *trips.Service
	Polls    *polls.Service
	Media    *media.Service
	Sessions SessionIssuer
	Idem     idempotency.Store

	log logger.Logger
	now func() time.Time
}

type ServerOptions struct {
	Members  *members.Service
	Trips    *trips.Service
	Polls    *polls.Service
	Media    *media.Service
	Sessions SessionIssuer
	Idem     idempotency.Store
	Logger   logger.Logger
}

func NewServer(opts ServerOptions) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Members:  opts.Members,
		Trips:    opts.Trips,
		Polls:    opts.Polls,
		Media:    opts.Media,
		Sessions: opts.Sessions,
		Idem:     opts.Idem,
		log:      log.With("component", "httpapi"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}
