package storage

import (
	"time"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// Seed collections are built fresh on every call so callers may mutate them.

// DefaultAdmin returns the seed admin record.
func DefaultAdmin() domain.Member {
	return domain.Member{
		ID:           domain.AdminMemberID,
		Name:         "Club Admin",
		Password:     "admin123",
		Role:         domain.RoleAdmin,
		AvatarURL:    "https://cdn-icons-png.flaticon.com/512/9703/9703596.png",
		BikeModel:    "Harley-Davidson CVO",
		BikeImageURL: "https://picsum.photos/seed/adminbike/400/300",
		Address:      "Clubhouse HQ",
		Lat:          41.9794,
		Lng:          2.8214,
	}
}

func SeedMembers() []domain.Member {
	rider := func(id, name, avatarSeed, bike, bikeSeed, address string, lat, lng float64) domain.Member {
		return domain.Member{
			ID:           domain.MemberID(id),
			Name:         name,
			Password:     domain.DefaultPassword,
			AvatarURL:    "https://picsum.photos/seed/" + avatarSeed + "/150/150",
			BikeModel:    bike,
			BikeImageURL: "https://picsum.photos/seed/" + bikeSeed + "/400/300",
			Address:      address,
			Lat:          lat,
			Lng:          lng,
		}
	}
	return []domain.Member{
		DefaultAdmin(),
		rider("m1", "Jax", "jax", "Harley-Davidson Dyna", "harley1", "123 Redwood Hwy, Charming, CA", 38.0, -121.0),
		rider("m2", "Chibs", "chibs", "Triumph Tiger 1200", "triumph", "45 Glasgow Ln, Belfast, ME", 44.4, -69.0),
		rider("m3", "Tig", "tig", "Ducati Multistrada", "ducati", "88 Speed St, Oakland, CA", 37.8, -122.2),
		rider("m4", "Opie", "opie", "Indian Chief", "indian", "99 Pine Rd, Lodi, CA", 38.1, -121.2),
		rider("m5", "Bobby", "bobby", "Honda Goldwing", "honda", "505 Elvis Blvd, Memphis, TN", 35.1, -90.0),
	}
}

// SeedTrips returns the demo trips. Chat timestamps are relative to now so the
// seeded conversation looks recent.
func SeedTrips(now time.Time) []domain.Trip {
	ms := now.UnixMilli()
	return []domain.Trip{
		{
			ID:            "t_next",
			Title:         "Coastal Highway Run",
			Date:          "2023-11-15T09:00:00",
			Status:        domain.TripStatusUpcoming,
			Description:   "A scenic ride down Highway 1. Breakfast at Alice's Restaurant before heading towards the coast.",
			DistanceKm:    240,
			StartLocation: "Clubhouse HQ",
			EndLocation:   "Big Sur Point",
			CoverImage:    "https://picsum.photos/seed/hwy1/800/400",
			Participants:  []domain.MemberID{"m1", "m2", "m4"},
			Comments: []domain.Comment{
				{ID: "c1", MemberID: "m2", Text: "Does everyone have their rain gear?", Timestamp: ms - 1000000},
				{ID: "c2", MemberID: "m1", Text: "Forecast looks clear, brother.", Timestamp: ms - 500000},
			},
		},
		{
			ID:            "t_past_1",
			Title:         "Mountain Pass Loop",
			Date:          "2023-10-01T08:30:00",
			Status:        domain.TripStatusPast,
			Description:   "Twisty roads through the Sierra foothills. Challenging but rewarding.",
			DistanceKm:    310,
			StartLocation: "Folsom",
			EndLocation:   "Lake Tahoe",
			CoverImage:    "https://picsum.photos/seed/mountain/800/400",
			ExternalLinks: []domain.ExternalLink{
				{Platform: domain.LinkPlatformRelive, URL: "#"},
				{Platform: domain.LinkPlatformCalimoto, URL: "#"},
			},
			Gallery: []string{
				"https://picsum.photos/seed/g1/400/300",
				"https://picsum.photos/seed/g2/400/300",
				"https://picsum.photos/seed/g3/400/300",
			},
			Participants: []domain.MemberID{"m1", "m2", "m3", "m4", "m5"},
			Comments:     []domain.Comment{},
		},
		{
			ID:            "t_past_2",
			Title:         "Desert Night Ride",
			Date:          "2023-09-12T18:00:00",
			Status:        domain.TripStatusPast,
			Description:   "Cool air night ride through the high desert.",
			DistanceKm:    150,
			StartLocation: "Victorville",
			EndLocation:   "Barstow",
			CoverImage:    "https://picsum.photos/seed/desert/800/400",
			ExternalLinks: []domain.ExternalLink{
				{Platform: domain.LinkPlatformGoogleMaps, URL: "#"},
			},
			Gallery: []string{
				"https://picsum.photos/seed/g4/400/300",
				"https://picsum.photos/seed/g5/400/300",
			},
			Participants: []domain.MemberID{"m1", "m3"},
			Comments:     []domain.Comment{},
		},
	}
}

func SeedPolls() []domain.Poll {
	return []domain.Poll{
		{
			ID:       "p1",
			Question: "Where is our next mission?",
			Active:   true,
			Options: []domain.PollOption{
				{
					ID:          "o1",
					Title:       "Tossa de Mar Loop",
					Description: "Beautiful coastal curves with a lunch stop at the castle. Can be busy with tourists.",
					Votes:       []domain.MemberID{"m1", "m2"},
				},
				{
					ID:          "o2",
					Title:       "Montseny Mountain Pass",
					Description: "Technical twisties, cooler temperatures, and lush forest views. For the spirited riders.",
					Votes:       []domain.MemberID{"m3"},
				},
				{
					ID:          "o3",
					Title:       "Girona Old Town Dash",
					Description: "Relaxed highway cruise with a coffee stop in the square. Good for all skill levels.",
					Votes:       []domain.MemberID{"m4", "m5"},
				},
			},
		},
	}
}
