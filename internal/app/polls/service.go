package polls

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// Store is the poll collection this service reads and mutates.
type Store interface {
	Polls() []domain.Poll
	UpdatePolls(ctx context.Context, fn func([]domain.Poll) ([]domain.Poll, error)) ([]domain.Poll, error)
}

type MemberLookup interface {
	Member(id domain.MemberID) (domain.Member, bool)
}

type Service struct {
	polls   Store
	members MemberLookup

	newID func(prefix string) string
}

func NewService(polls Store, members MemberLookup) *Service {
	return &Service{
		polls:   polls,
		members: members,
		newID: func(prefix string) string {
			return prefix + uuid.NewString()
		},
	}
}

// SetNewIDForTest overrides poll/option ID generation for deterministic tests.
func (s *Service) SetNewIDForTest(fn func(prefix string) string) {
	if fn != nil {
		s.newID = fn
	}
}

func (s *Service) ListPolls(_ context.Context) []domain.Poll {
	return s.polls.Polls()
}

// Vote records a single-choice vote: the caller is removed from every option
// of the poll, then added to the chosen one.
func (s *Service) Vote(ctx context.Context, caller domain.MemberID, pollID domain.PollID, optionID domain.OptionID) (domain.Poll, error) {
	if _, ok := s.members.Member(caller); !ok {
		return domain.Poll{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "unknown caller"}
	}

	var out domain.Poll
	_, err := s.polls.UpdatePolls(ctx, func(ps []domain.Poll) ([]domain.Poll, error) {
		pi := -1
		for i := range ps {
			if ps[i].ID == pollID {
				pi = i
				break
			}
		}
		if pi < 0 {
			return nil, &Error{Status: 404, Code: "POLL_NOT_FOUND", Message: "poll not found"}
		}
		p := &ps[pi]
		if !p.Active {
			return nil, &Error{Status: 422, Code: "POLL_INACTIVE", Message: "poll is closed"}
		}
		found := false
		for _, o := range p.Options {
			if o.ID == optionID {
				found = true
				break
			}
		}
		if !found {
			return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid optionId", Details: map[string]any{"optionId": "not an option of this poll"}}
		}

		for i := range p.Options {
			o := &p.Options[i]
			kept := make([]domain.MemberID, 0, len(o.Votes)+1)
			for _, v := range o.Votes {
				if v != caller {
					kept = append(kept, v)
				}
			}
			if o.ID == optionID {
				kept = append(kept, caller)
			}
			o.Votes = kept
		}
		out = p.Clone()
		return ps, nil
	})
	if err != nil {
		return domain.Poll{}, err
	}
	return out, nil
}

// Tally returns vote counts and rounded percentages for a poll.
func Tally(p domain.Poll) domain.PollTally {
	return p.Tally()
}

// ReplacePolls installs a full edited set of polls. Admin only. Blank poll
// and option ids are generated; existing votes are kept as sent.
func (s *Service) ReplacePolls(ctx context.Context, caller domain.MemberID, in []domain.Poll) ([]domain.Poll, error) {
	m, ok := s.members.Member(caller)
	if !ok || !m.IsAdmin() {
		return nil, &Error{Status: 403, Code: "FORBIDDEN", Message: "admin role required"}
	}

	next := domain.ClonePolls(in)
	if next == nil {
		next = []domain.Poll{}
	}
	seen := make(map[domain.PollID]bool, len(next))
	for i := range next {
		p := &next[i]
		p.Question = strings.TrimSpace(p.Question)
		if p.Question == "" {
			return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid question", Details: map[string]any{"index": i, "question": "must be non-empty"}}
		}
		if p.ID == "" {
			p.ID = domain.PollID(s.newID("p_"))
		}
		if seen[p.ID] {
			return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "duplicate poll id", Details: map[string]any{"id": string(p.ID)}}
		}
		seen[p.ID] = true
		if p.Options == nil {
			p.Options = []domain.PollOption{}
		}
		optSeen := make(map[domain.OptionID]bool, len(p.Options))
		for j := range p.Options {
			o := &p.Options[j]
			if o.ID == "" {
				o.ID = domain.OptionID(s.newID("o_"))
			}
			if optSeen[o.ID] {
				return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "duplicate option id", Details: map[string]any{"pollId": string(p.ID), "id": string(o.ID)}}
			}
			optSeen[o.ID] = true
			if o.Votes == nil {
				o.Votes = []domain.MemberID{}
			}
		}
	}

	return s.polls.UpdatePolls(ctx, func([]domain.Poll) ([]domain.Poll, error) {
		return next, nil
	})
}
