package trips

import (
	"context"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// Store is the trip collection this service reads and mutates.
type Store interface {
	Trips() []domain.Trip
	UpdateTrips(ctx context.Context, fn func([]domain.Trip) ([]domain.Trip, error)) ([]domain.Trip, error)
}

// MemberLookup resolves callers for role checks.
type MemberLookup interface {
	Member(id domain.MemberID) (domain.Member, bool)
}

// Assistant writes briefings and chat replies. Implementations never fail;
// they return fallback text instead.
type Assistant interface {
	RouteBriefing(ctx context.Context, title, start, end string, distanceKm float64) string
	ChatReply(ctx context.Context, messages []string) string
}

// PostCommentResult holds the caller's comment and, when the assistant was
// mentioned, its reply.
type PostCommentResult struct {
	Comment domain.Comment
	Reply   *domain.Comment
}
