package trips

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	clockport "github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/clock"
)

// assistantMention triggers an assistant reply when it appears in a comment.
const assistantMention = "@ai"

// assistantReplyDelay keeps the reply ordered after the message it answers.
const assistantReplyDelay = 100 * time.Millisecond

type Service struct {
	trips     Store
	members   MemberLookup
	assistant Assistant
	clk       clockport.Clock

	newTripID    func() domain.TripID
	newCommentID func() domain.CommentID
}

func NewService(trips Store, members MemberLookup, assistant Assistant, clk clockport.Clock) *Service {
	return &Service{
		trips:     trips,
		members:   members,
		assistant: assistant,
		clk:       clk,
		newTripID: func() domain.TripID {
			return domain.TripID("t_" + uuid.NewString())
		},
		newCommentID: func() domain.CommentID {
			return domain.CommentID(uuid.NewString())
		},
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

// SetNewCommentIDForTest overrides comment ID generation for deterministic tests.
func (s *Service) SetNewCommentIDForTest(fn func() domain.CommentID) {
	if fn != nil {
		s.newCommentID = fn
	}
}

// UpcomingTrip returns the first trip with status upcoming, or nil. A missing
// briefing is generated and stored first when the trip has a distance.
func (s *Service) UpcomingTrip(ctx context.Context) (*domain.Trip, error) {
	t, ok := firstUpcoming(s.trips.Trips())
	if !ok {
		return nil, nil
	}
	if t.AIBriefing != "" || t.DistanceKm <= 0 || s.assistant == nil {
		return &t, nil
	}

	text := s.assistant.RouteBriefing(ctx, t.Title, t.StartLocation, t.EndLocation, t.DistanceKm)
	var out domain.Trip
	_, err := s.trips.UpdateTrips(ctx, func(ts []domain.Trip) ([]domain.Trip, error) {
		i := indexOf(ts, t.ID)
		if i < 0 {
			return nil, errTripNotFound()
		}
		// Another request may have filled it in while we waited.
		if ts[i].AIBriefing == "" {
			ts[i].AIBriefing = text
		}
		out = ts[i]
		return ts, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PastTrips returns past trips, newest first.
func (s *Service) PastTrips(_ context.Context) []domain.Trip {
	all := s.trips.Trips()
	out := make([]domain.Trip, 0, len(all))
	for _, t := range all {
		if t.Status == domain.TripStatusPast {
			out = append(out, t)
		}
	}
	domain.SortTripsByDateDesc(out)
	return out
}

func (s *Service) GetTrip(_ context.Context, id domain.TripID) (domain.Trip, error) {
	ts := s.trips.Trips()
	i := indexOf(ts, id)
	if i < 0 {
		return domain.Trip{}, errTripNotFound()
	}
	return ts[i], nil
}

// SaveTrip replaces the trip with the same id or appends it. A blank id
// creates a new trip. Admin only.
func (s *Service) SaveTrip(ctx context.Context, caller domain.MemberID, t domain.Trip) (domain.Trip, error) {
	if err := s.requireAdmin(caller); err != nil {
		return domain.Trip{}, err
	}
	if err := normalizeTrip(&t); err != nil {
		return domain.Trip{}, err
	}
	if t.ID == "" {
		t.ID = s.newTripID()
	}

	_, err := s.trips.UpdateTrips(ctx, func(ts []domain.Trip) ([]domain.Trip, error) {
		if i := indexOf(ts, t.ID); i >= 0 {
			ts[i] = t
			return ts, nil
		}
		return append(ts, t), nil
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}

func normalizeTrip(t *domain.Trip) error {
	t.Title = domain.NormalizeHumanName(t.Title)
	if t.Title == "" {
		return errValidation("title", "must be non-empty")
	}
	if _, ok := domain.ParseTripDate(t.Date); !ok {
		return errValidation("date", "must be an ISO-8601 date")
	}
	if t.Status == "" {
		t.Status = domain.TripStatusUpcoming
	}
	if t.Status != domain.TripStatusUpcoming && t.Status != domain.TripStatusPast {
		return errValidation("status", "must be upcoming or past")
	}
	if t.DistanceKm < 0 {
		return errValidation("distanceKm", "must be >= 0")
	}
	for _, l := range t.ExternalLinks {
		if !l.Platform.Valid() {
			return errValidation("externalLinks", "unknown platform "+strconv.Quote(string(l.Platform)))
		}
		if strings.TrimSpace(l.URL) == "" {
			return errValidation("externalLinks", "url must be non-empty")
		}
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	if t.Participants == nil {
		t.Participants = []domain.MemberID{}
	}
	return nil
}

// DeleteTrip removes a trip. Admin only.
func (s *Service) DeleteTrip(ctx context.Context, caller domain.MemberID, id domain.TripID) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	_, err := s.trips.UpdateTrips(ctx, func(ts []domain.Trip) ([]domain.Trip, error) {
		i := indexOf(ts, id)
		if i < 0 {
			return nil, errTripNotFound()
		}
		return append(ts[:i], ts[i+1:]...), nil
	})
	return err
}

// CompleteTrip moves an upcoming trip to past. Admin only.
func (s *Service) CompleteTrip(ctx context.Context, caller domain.MemberID, id domain.TripID) (domain.Trip, error) {
	if err := s.requireAdmin(caller); err != nil {
		return domain.Trip{}, err
	}
	return s.mutate(ctx, id, func(t *domain.Trip) error {
		if t.Status != domain.TripStatusUpcoming {
			return &Error{Status: 409, Code: "TRIP_NOT_UPCOMING", Message: "only upcoming trips can be completed"}
		}
		t.Status = domain.TripStatusPast
		return nil
	})
}

// ToggleJoin adds the caller to the participants, or removes them if already
// joined. Only upcoming trips can be joined.
func (s *Service) ToggleJoin(ctx context.Context, caller domain.MemberID, id domain.TripID) (domain.Trip, error) {
	if _, ok := s.members.Member(caller); !ok {
		return domain.Trip{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "unknown caller"}
	}
	return s.mutate(ctx, id, func(t *domain.Trip) error {
		if t.Status != domain.TripStatusUpcoming {
			return &Error{Status: 409, Code: "TRIP_NOT_UPCOMING", Message: "only upcoming trips can be joined"}
		}
		if t.HasParticipant(caller) {
			kept := t.Participants[:0]
			for _, p := range t.Participants {
				if p != caller {
					kept = append(kept, p)
				}
			}
			t.Participants = kept
			return nil
		}
		t.Participants = append(t.Participants, caller)
		return nil
	})
}

// PostComment appends the caller's message. If it mentions the assistant, a
// reply built from the last few messages is appended after it.
func (s *Service) PostComment(ctx context.Context, caller domain.MemberID, id domain.TripID, text, imageURL string) (PostCommentResult, error) {
	if _, ok := s.members.Member(caller); !ok {
		return PostCommentResult{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "unknown caller"}
	}
	if strings.TrimSpace(text) == "" {
		return PostCommentResult{}, errValidation("text", "must be non-empty")
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL != "" && !isHTTPURL(imageURL) {
		return PostCommentResult{}, errValidation("imageUrl", "must be an http(s) URL")
	}

	c := domain.Comment{
		ID:        s.newCommentID(),
		MemberID:  caller,
		Text:      text,
		Timestamp: s.clk.Now().UnixMilli(),
		ImageURL:  imageURL,
	}
	var history []string
	_, err := s.mutate(ctx, id, func(t *domain.Trip) error {
		t.Comments = append(t.Comments, c)
		history = commentTexts(t.Comments)
		return nil
	})
	if err != nil {
		return PostCommentResult{}, err
	}

	res := PostCommentResult{Comment: c}
	if s.assistant == nil || !strings.Contains(strings.ToLower(text), assistantMention) {
		return res, nil
	}

	replyText := s.assistant.ChatReply(ctx, history)
	now := s.clk.Now()
	reply := domain.Comment{
		ID:        domain.CommentID("ai_" + strconv.FormatInt(now.UnixMilli(), 10)),
		MemberID:  domain.AssistantMemberID,
		Text:      replyText,
		Timestamp: now.Add(assistantReplyDelay).UnixMilli(),
	}
	if _, err := s.mutate(ctx, id, func(t *domain.Trip) error {
		t.Comments = append(t.Comments, reply)
		return nil
	}); err != nil {
		// The user's comment is stored; the trip vanished while the assistant was thinking.
		return res, nil
	}
	res.Reply = &reply
	return res, nil
}

// AddPhoto appends an image URL to a past trip's gallery.
func (s *Service) AddPhoto(ctx context.Context, caller domain.MemberID, id domain.TripID, photoURL string) (domain.Trip, error) {
	if _, ok := s.members.Member(caller); !ok {
		return domain.Trip{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "unknown caller"}
	}
	photoURL = strings.TrimSpace(photoURL)
	if !isHTTPURL(photoURL) {
		return domain.Trip{}, errValidation("url", "must be an http(s) URL")
	}
	return s.mutate(ctx, id, func(t *domain.Trip) error {
		if t.Status != domain.TripStatusPast {
			return &Error{Status: 409, Code: "TRIP_NOT_PAST", Message: "photos can only be added to past trips"}
		}
		t.Gallery = append(t.Gallery, photoURL)
		return nil
	})
}

// RegenerateBriefing replaces the trip briefing with fresh assistant text. Admin only.
func (s *Service) RegenerateBriefing(ctx context.Context, caller domain.MemberID, id domain.TripID) (domain.Trip, error) {
	if err := s.requireAdmin(caller); err != nil {
		return domain.Trip{}, err
	}
	t, err := s.GetTrip(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if s.assistant == nil {
		return domain.Trip{}, &Error{Status: 503, Code: "ASSISTANT_UNAVAILABLE", Message: "assistant not configured"}
	}
	text := s.assistant.RouteBriefing(ctx, t.Title, t.StartLocation, t.EndLocation, t.DistanceKm)
	return s.mutate(ctx, id, func(t *domain.Trip) error {
		t.AIBriefing = text
		return nil
	})
}

// mutate applies fn to one trip inside a whole-collection update.
func (s *Service) mutate(ctx context.Context, id domain.TripID, fn func(*domain.Trip) error) (domain.Trip, error) {
	var out domain.Trip
	_, err := s.trips.UpdateTrips(ctx, func(ts []domain.Trip) ([]domain.Trip, error) {
		i := indexOf(ts, id)
		if i < 0 {
			return nil, errTripNotFound()
		}
		if err := fn(&ts[i]); err != nil {
			return nil, err
		}
		out = ts[i].Clone()
		return ts, nil
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return out, nil
}

func (s *Service) requireAdmin(caller domain.MemberID) error {
	m, ok := s.members.Member(caller)
	if !ok || !m.IsAdmin() {
		return &Error{Status: 403, Code: "FORBIDDEN", Message: "admin role required"}
	}
	return nil
}

func firstUpcoming(ts []domain.Trip) (domain.Trip, bool) {
	for _, t := range ts {
		if t.Status == domain.TripStatusUpcoming {
			return t, true
		}
	}
	return domain.Trip{}, false
}

func indexOf(ts []domain.Trip, id domain.TripID) int {
	for i, t := range ts {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func commentTexts(cs []domain.Comment) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Text)
	}
	return out
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
