package domain

import (
	"sort"
	"time"
)

type TripStatus string

const (
	TripStatusUpcoming TripStatus = "upcoming"
	TripStatusPast     TripStatus = "past"
)

type LinkPlatform string

const (
	LinkPlatformRelive     LinkPlatform = "Relive"
	LinkPlatformCalimoto   LinkPlatform = "Calimoto"
	LinkPlatformStrava     LinkPlatform = "Strava"
	LinkPlatformGoogleMaps LinkPlatform = "Google Maps"
)

func (p LinkPlatform) Valid() bool {
	switch p {
	case LinkPlatformRelive, LinkPlatformCalimoto, LinkPlatformStrava, LinkPlatformGoogleMaps:
		return true
	}
	return false
}

type ExternalLink struct {
	Platform LinkPlatform `json:"platform"`
	URL      string       `json:"url"`
}

// Comment is a single chat message on a trip.
type Comment struct {
	ID        CommentID `json:"id"`
	MemberID  MemberID  `json:"memberId"`
	Text      string    `json:"text"`
	Timestamp int64     `json:"timestamp"` // unix millis
	ImageURL  string    `json:"imageUrl,omitempty"`
}

// Trip is a club ride. Date is kept as the ISO-8601 text it was entered with.
type Trip struct {
	ID            TripID         `json:"id"`
	Title         string         `json:"title"`
	Date          string         `json:"date"`
	Status        TripStatus     `json:"status"`
	Description   string         `json:"description"`
	AIBriefing    string         `json:"aiBriefing,omitempty"`
	DistanceKm    float64        `json:"distanceKm"`
	StartLocation string         `json:"startLocation"`
	EndLocation   string         `json:"endLocation"`
	CoverImage    string         `json:"coverImage"`
	RouteMapURL   string         `json:"routeMapUrl,omitempty"`
	GPXFile       string         `json:"gpxFile,omitempty"`
	GPXFileName   string         `json:"gpxFileName,omitempty"`
	ExternalLinks []ExternalLink `json:"externalLinks"`
	Gallery       []string       `json:"gallery"`
	Comments      []Comment      `json:"comments"`
	Participants  []MemberID     `json:"participants"`
}

// tripDateLayouts are tried in order; the club enters local times without a zone.
var tripDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTripDate parses a trip date. ok is false when no known layout matches.
func ParseTripDate(s string) (time.Time, bool) {
	for _, layout := range tripDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HasParticipant reports whether id has joined the trip.
func (t Trip) HasParticipant(id MemberID) bool {
	for _, p := range t.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// SortTripsByDateDesc orders trips newest first. Unparseable dates sort last,
// ties break by ID.
func SortTripsByDateDesc(ts []Trip) {
	sort.SliceStable(ts, func(i, j int) bool {
		di, oki := ParseTripDate(ts[i].Date)
		dj, okj := ParseTripDate(ts[j].Date)
		if oki != okj {
			return oki
		}
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return string(ts[i].ID) < string(ts[j].ID)
	})
}
