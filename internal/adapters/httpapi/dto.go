package httpapi

import (
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/members"
	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// Member is the public profile. Passwords never leave the server.
type Member struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	AvatarURL    string  `json:"avatarUrl"`
	BikeModel    string  `json:"bikeModel"`
	BikeImageURL string  `json:"bikeImageUrl"`
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

func memberFromDomain(m domain.Member) Member {
	return Member{
		ID:           string(m.ID),
		Name:         m.Name,
		Role:         string(m.EffectiveRole()),
		AvatarURL:    m.AvatarURL,
		BikeModel:    m.BikeModel,
		BikeImageURL: m.BikeImageURL,
		Address:      m.Address,
		Lat:          m.Lat,
		Lng:          m.Lng,
	}
}

type LoginRequest struct {
	MemberID string `json:"memberId"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Member    Member `json:"member"`
}

type MemberResponse struct {
	Member Member `json:"member"`
}

type MembersResponse struct {
	Members []Member `json:"members"`
}

// UpdateMemberRequest is a partial update; explicit null clears a field.
type UpdateMemberRequest struct {
	Name         nullable.Nullable[string]  `json:"name,omitempty"`
	Password     nullable.Nullable[string]  `json:"password,omitempty"`
	Role         nullable.Nullable[string]  `json:"role,omitempty"`
	AvatarURL    nullable.Nullable[string]  `json:"avatarUrl,omitempty"`
	BikeModel    nullable.Nullable[string]  `json:"bikeModel,omitempty"`
	BikeImageURL nullable.Nullable[string]  `json:"bikeImageUrl,omitempty"`
	Address      nullable.Nullable[string]  `json:"address,omitempty"`
	Lat          nullable.Nullable[float64] `json:"lat,omitempty"`
	Lng          nullable.Nullable[float64] `json:"lng,omitempty"`
}

func updateMemberInputFromRequest(b UpdateMemberRequest) members.UpdateMemberInput {
	role := optionalFromNullable(b.Role)
	var r members.Optional[domain.Role]
	switch {
	case role.IsNull():
		r = members.Null[domain.Role]()
	case role.IsSpecified():
		r = members.Some(domain.Role(role.Value()))
	}
	return members.UpdateMemberInput{
		Name:         optionalFromNullable(b.Name),
		Password:     optionalFromNullable(b.Password),
		Role:         r,
		AvatarURL:    optionalFromNullable(b.AvatarURL),
		BikeModel:    optionalFromNullable(b.BikeModel),
		BikeImageURL: optionalFromNullable(b.BikeImageURL),
		Address:      optionalFromNullable(b.Address),
		Lat:          optionalFromNullable(b.Lat),
		Lng:          optionalFromNullable(b.Lng),
	}
}

func optionalFromNullable[T any](n nullable.Nullable[T]) members.Optional[T] {
	if !n.IsSpecified() {
		return members.Unspecified[T]()
	}
	if n.IsNull() {
		return members.Null[T]()
	}
	v, err := n.Get()
	if err != nil {
		return members.Unspecified[T]()
	}
	return members.Some(v)
}

type AddMemberRequest struct {
	Name         string  `json:"name"`
	Password     string  `json:"password"`
	Role         string  `json:"role,omitempty"`
	AvatarURL    string  `json:"avatarUrl,omitempty"`
	BikeModel    string  `json:"bikeModel,omitempty"`
	BikeImageURL string  `json:"bikeImageUrl,omitempty"`
	Address      string  `json:"address,omitempty"`
	Lat          float64 `json:"lat,omitempty"`
	Lng          float64 `json:"lng,omitempty"`
}

func (b AddMemberRequest) toInput() members.AddMemberInput {
	return members.AddMemberInput{
		Name:         b.Name,
		Password:     b.Password,
		Role:         domain.Role(b.Role),
		AvatarURL:    b.AvatarURL,
		BikeModel:    b.BikeModel,
		BikeImageURL: b.BikeImageURL,
		Address:      b.Address,
		Lat:          b.Lat,
		Lng:          b.Lng,
	}
}

type TripResponse struct {
	Trip domain.Trip `json:"trip"`
}

// UpcomingTripResponse carries a null trip when nothing is scheduled.
type UpcomingTripResponse struct {
	Trip *domain.Trip `json:"trip"`
}

type TripsResponse struct {
	Trips []domain.Trip `json:"trips"`
}

type PostCommentRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type PostCommentResponse struct {
	Comment domain.Comment  `json:"comment"`
	Reply   *domain.Comment `json:"reply,omitempty"`
}

type AddPhotoRequest struct {
	URL string `json:"url"`
}

type PollOption struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Votes       []string `json:"votes"`
	VoteCount   int      `json:"voteCount"`
	Percent     int      `json:"percent"`
}

// Poll is a poll with its computed tally and the caller's current choice.
type Poll struct {
	ID         string                    `json:"id"`
	Question   string                    `json:"question"`
	Active     bool                      `json:"active"`
	TotalVotes int                       `json:"totalVotes"`
	MyVote     nullable.Nullable[string] `json:"myVote"`
	Options    []PollOption              `json:"options"`
}

func pollFromDomain(p domain.Poll, tally domain.PollTally, caller domain.MemberID) Poll {
	out := Poll{
		ID:         string(p.ID),
		Question:   p.Question,
		Active:     p.Active,
		TotalVotes: tally.TotalVotes,
		Options:    make([]PollOption, 0, len(p.Options)),
	}
	if opt, ok := p.VotedOption(caller); ok {
		out.MyVote = nullable.NewNullableWithValue(string(opt))
	} else {
		out.MyVote = nullable.NewNullNullable[string]()
	}
	for i, o := range p.Options {
		votes := make([]string, 0, len(o.Votes))
		for _, v := range o.Votes {
			votes = append(votes, string(v))
		}
		po := PollOption{ID: string(o.ID), Title: o.Title, Description: o.Description, Votes: votes}
		if i < len(tally.Options) {
			po.VoteCount = tally.Options[i].Votes
			po.Percent = tally.Options[i].Percent
		}
		out.Options = append(out.Options, po)
	}
	return out
}

type PollsResponse struct {
	Polls []Poll `json:"polls"`
}

type PollResponse struct {
	Poll Poll `json:"poll"`
}

type ReplacePollsRequest struct {
	Polls []domain.Poll `json:"polls"`
}

type VoteRequest struct {
	OptionID string `json:"optionId"`
}

// UploadForm is the multipart body of POST /uploads.
type UploadForm struct {
	Image openapi_types.File
}
