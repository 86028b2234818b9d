// Package clubstate holds the club's three collections in memory for the life
// of the process and writes each one back in full after every mutation.
package clubstate

import (
	"context"
	"sync"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// Persister is the whole-collection read/write surface of the storage layer.
type Persister interface {
	GetMembers(ctx context.Context) []domain.Member
	GetTrips(ctx context.Context) []domain.Trip
	GetPolls(ctx context.Context) []domain.Poll
	SaveMembers(ctx context.Context, members []domain.Member)
	SaveTrips(ctx context.Context, trips []domain.Trip)
	SavePolls(ctx context.Context, polls []domain.Poll)
}

// State is safe for concurrent use. Mutations are serialized, so within one
// process the last writer wins per collection.
type State struct {
	store Persister

	mu      sync.RWMutex
	members []domain.Member
	trips   []domain.Trip
	polls   []domain.Poll
}

// Load reads every collection once. Members are read first so the storage
// version guard runs before anything else is loaded.
func Load(ctx context.Context, store Persister) *State {
	s := &State{store: store}
	s.members = store.GetMembers(ctx)
	s.trips = store.GetTrips(ctx)
	s.polls = store.GetPolls(ctx)
	return s
}

func (s *State) Members() []domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneMembers(s.members)
}

// Member looks up a single member by id.
func (s *State) Member(id domain.MemberID) (domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Member{}, false
}

func (s *State) Trips() []domain.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneTrips(s.trips)
}

func (s *State) Polls() []domain.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ClonePolls(s.polls)
}

// UpdateMembers applies fn to a copy of the members and, when fn succeeds,
// installs and persists the result. An error from fn leaves state untouched.
func (s *State) UpdateMembers(ctx context.Context, fn func([]domain.Member) ([]domain.Member, error)) ([]domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(domain.CloneMembers(s.members))
	if err != nil {
		return nil, err
	}
	s.members = next
	s.store.SaveMembers(ctx, next)
	return domain.CloneMembers(next), nil
}

func (s *State) UpdateTrips(ctx context.Context, fn func([]domain.Trip) ([]domain.Trip, error)) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(domain.CloneTrips(s.trips))
	if err != nil {
		return nil, err
	}
	s.trips = next
	s.store.SaveTrips(ctx, next)
	return domain.CloneTrips(next), nil
}

func (s *State) UpdatePolls(ctx context.Context, fn func([]domain.Poll) ([]domain.Poll, error)) ([]domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(domain.ClonePolls(s.polls))
	if err != nil {
		return nil, err
	}
	s.polls = next
	s.store.SavePolls(ctx, next)
	return domain.ClonePolls(next), nil
}
