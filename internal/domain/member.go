package domain

// DefaultPassword is used when a member record has no password set (legacy data).
const DefaultPassword = "1234"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member is a club member profile as stored in the members collection.
//
// Password and Role are optional for compatibility with records written before
// those fields existed; use EffectivePassword/EffectiveRole when reading them.
type Member struct {
	ID           MemberID `json:"id"`
	Name         string   `json:"name"`
	Password     string   `json:"password,omitempty"`
	Role         Role     `json:"role,omitempty"`
	AvatarURL    string   `json:"avatarUrl"`
	BikeModel    string   `json:"bikeModel"`
	BikeImageURL string   `json:"bikeImageUrl"`
	Address      string   `json:"address"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
}

func (m Member) EffectivePassword() string {
	if m.Password == "" {
		return DefaultPassword
	}
	return m.Password
}

func (m Member) EffectiveRole() Role {
	if m.Role == "" {
		return RoleMember
	}
	return m.Role
}

func (m Member) IsAdmin() bool { return m.EffectiveRole() == RoleAdmin }
