// Package storage owns versioned read/write access to the club's three
// collections (members, trips, polls) on top of a key-value store.
//
// Reads never fail: a missing or unreadable entry falls back to built-in seed
// data. Writes never fail either; errors are logged and dropped. Schema
// changes are handled by bumping CurrentVersion, which wipes the whole
// namespace on the next production start.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	platformclock "github.com/costa-brava-bikers/clubhouse-api/internal/platform/clock"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	clockport "github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/clock"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/kvstore"
)

const (
	KeyMembers = "cbb_members"
	KeyTrips   = "cbb_trips"
	KeyPolls   = "cbb_polls"
	KeyVersion = "cbb_version"

	// CurrentVersion is the schema tag. Increment it to reset stored data.
	CurrentVersion = "1.1.0"
)

const msgVersionMismatch = "Version mismatch, resetting storage..."

var errNullCollection = errors.New("stored collection is null")

type Options struct {
	// DevelopmentMode skips the version guard so data survives iterative development.
	DevelopmentMode bool
	Logger          logger.Logger
	Clock           clockport.Clock
}

// Store is the persistence layer for the club collections.
type Store struct {
	kv      kvstore.Store
	log     logger.Logger
	clk     clockport.Clock
	devMode bool
}

func New(kv kvstore.Store, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = platformclock.NewSystemClock()
	}
	return &Store{
		kv:      kv,
		log:     log.With("component", "storage"),
		clk:     clk,
		devMode: opts.DevelopmentMode,
	}
}

// DevelopmentMode reports whether the version guard is disabled.
func (s *Store) DevelopmentMode() bool { return s.devMode }

// CheckVersion wipes the entire namespace and stamps CurrentVersion when the
// stored tag differs from it. It is a no-op in development mode.
func (s *Store) CheckVersion(ctx context.Context, isDevelopmentMode bool) {
	if isDevelopmentMode {
		return
	}
	stored, _, err := s.kv.Get(ctx, KeyVersion)
	if err != nil {
		s.log.Error("Failed to check version", "err", err)
		return
	}
	if stored == CurrentVersion {
		return
	}
	s.log.Info(msgVersionMismatch, "stored", stored, "current", CurrentVersion, "direction", versionDirection(stored, CurrentVersion))
	if err := s.kv.Clear(ctx); err != nil {
		s.log.Error("Failed to check version", "err", err)
		return
	}
	if err := s.kv.Set(ctx, KeyVersion, CurrentVersion); err != nil {
		s.log.Error("Failed to check version", "err", err)
	}
}

// StoredVersion returns the version tag currently in the store, if any.
func (s *Store) StoredVersion(ctx context.Context) (string, bool, error) {
	return s.kv.Get(ctx, KeyVersion)
}

// Reset unconditionally wipes the namespace and stamps CurrentVersion.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := s.kv.Set(ctx, KeyVersion, CurrentVersion); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	s.log.Info("storage reset", "version", CurrentVersion)
	return nil
}

// GetMembers runs the version guard, then returns the stored members or the
// seed set. The seed admin is prepended (and persisted) when missing.
func (s *Store) GetMembers(ctx context.Context) []domain.Member {
	s.CheckVersion(ctx, s.devMode)

	members, err := load[domain.Member](ctx, s.kv, KeyMembers)
	if err != nil {
		if !errors.Is(err, errMissing) {
			s.log.Error("Failed to load members from storage", "err", err)
		}
		return SeedMembers()
	}

	if !containsMember(members, domain.AdminMemberID) {
		members = append([]domain.Member{DefaultAdmin()}, members...)
		if err := save(ctx, s.kv, KeyMembers, members); err != nil {
			s.log.Error("Failed to save members to storage", "err", err)
		}
	}
	return members
}

func (s *Store) SaveMembers(ctx context.Context, members []domain.Member) {
	if err := save(ctx, s.kv, KeyMembers, members); err != nil {
		s.log.Error("Failed to save members to storage", "err", err, "count", len(members))
	}
}

func (s *Store) GetTrips(ctx context.Context) []domain.Trip {
	trips, err := load[domain.Trip](ctx, s.kv, KeyTrips)
	if err != nil {
		if !errors.Is(err, errMissing) {
			s.log.Error("Failed to load trips from storage", "err", err)
		}
		return SeedTrips(s.clk.Now())
	}
	return trips
}

func (s *Store) SaveTrips(ctx context.Context, trips []domain.Trip) {
	if err := save(ctx, s.kv, KeyTrips, trips); err != nil {
		s.log.Error("Failed to save trips to storage", "err", err, "count", len(trips))
	}
}

func (s *Store) GetPolls(ctx context.Context) []domain.Poll {
	polls, err := load[domain.Poll](ctx, s.kv, KeyPolls)
	if err != nil {
		if !errors.Is(err, errMissing) {
			s.log.Error("Failed to load polls from storage", "err", err)
		}
		return SeedPolls()
	}
	return polls
}

func (s *Store) SavePolls(ctx context.Context, polls []domain.Poll) {
	if err := save(ctx, s.kv, KeyPolls, polls); err != nil {
		s.log.Error("Failed to save polls to storage", "err", err, "count", len(polls))
	}
}

var errMissing = errors.New("no stored entry")

// load reads and decodes a collection. errMissing means the key is absent or
// empty; any other error is a read or parse failure.
func load[T any](ctx context.Context, kv kvstore.Store, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, errMissing
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		return nil, fmt.Errorf("decode %s: %w", key, errNullCollection)
	}
	return out, nil
}

func save[T any](ctx context.Context, kv kvstore.Store, key string, items []T) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(b))
}

func containsMember(ms []domain.Member, id domain.MemberID) bool {
	for _, m := range ms {
		if m.ID == id {
			return true
		}
	}
	return false
}

func versionDirection(stored, current string) string {
	if stored == "" {
		return "fresh"
	}
	sv, err := semver.NewVersion(stored)
	if err != nil {
		return "unknown"
	}
	cv, err := semver.NewVersion(current)
	if err != nil {
		return "unknown"
	}
	switch {
	case sv.LessThan(cv):
		return "upgrade"
	case sv.GreaterThan(cv):
		return "downgrade"
	default:
		// Same precedence, different text (e.g. "v1.1.0" or build metadata).
		return "respelled"
	}
}
