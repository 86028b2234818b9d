package members

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// Defaults applied to members added without the optional fields.
const (
	DefaultBikeModel = "Unknown"
	DefaultAddress   = "Unknown"
	DefaultLat       = 41.9794
	DefaultLng       = 2.8214
)

// Directory is the member collection this service reads and mutates.
type Directory interface {
	Members() []domain.Member
	Member(id domain.MemberID) (domain.Member, bool)
	UpdateMembers(ctx context.Context, fn func([]domain.Member) ([]domain.Member, error)) ([]domain.Member, error)
}

type Service struct {
	dir Directory

	newMemberID func() domain.MemberID
}

func NewService(dir Directory) *Service {
	return &Service{
		dir: dir,
		newMemberID: func() domain.MemberID {
			return domain.MemberID("m_" + uuid.NewString())
		},
	}
}

// SetNewMemberIDForTest overrides member ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewMemberIDForTest(fn func() domain.MemberID) {
	if fn != nil {
		s.newMemberID = fn
	}
}

// Login compares the plaintext password (or the default when none is set).
func (s *Service) Login(_ context.Context, id domain.MemberID, password string) (domain.Member, error) {
	m, ok := s.dir.Member(id)
	if !ok {
		return domain.Member{}, errMemberNotFound()
	}
	if password != m.EffectivePassword() {
		return domain.Member{}, &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "Incorrect password"}
	}
	return m, nil
}

func (s *Service) ListMembers(_ context.Context) []domain.Member {
	return s.dir.Members()
}

func (s *Service) GetMember(_ context.Context, id domain.MemberID) (domain.Member, error) {
	m, ok := s.dir.Member(id)
	if !ok {
		return domain.Member{}, errMemberNotFound()
	}
	return m, nil
}

// UpdateMember lets a member edit their own profile; an admin may edit anyone.
// Only an admin may change a role.
func (s *Service) UpdateMember(ctx context.Context, caller, id domain.MemberID, in UpdateMemberInput) (domain.Member, error) {
	actor, ok := s.dir.Member(caller)
	if !ok {
		return domain.Member{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "unknown caller"}
	}
	if caller != id && !actor.IsAdmin() {
		return domain.Member{}, errForbidden("members may only edit their own profile")
	}
	if in.Role.IsSpecified() && !actor.IsAdmin() {
		return domain.Member{}, errForbidden("only an admin may change roles")
	}

	var updated domain.Member
	_, err := s.dir.UpdateMembers(ctx, func(ms []domain.Member) ([]domain.Member, error) {
		i := indexOf(ms, id)
		if i < 0 {
			return nil, errMemberNotFound()
		}
		m := ms[i]
		if err := applyPatch(&m, in); err != nil {
			return nil, err
		}
		if m.ID == domain.AdminMemberID && m.EffectiveRole() != domain.RoleAdmin {
			return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid role", Details: map[string]any{"role": "the club admin must keep the admin role"}}
		}
		ms[i] = m
		updated = m
		return ms, nil
	})
	if err != nil {
		return domain.Member{}, err
	}
	return updated, nil
}

func applyPatch(m *domain.Member, in UpdateMemberInput) error {
	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "cannot be null"}}
		}
		name := domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
		}
		m.Name = name
	}
	if in.Role.IsSpecified() {
		r := in.Role.Value()
		if in.Role.IsNull() {
			r = ""
		}
		if r != "" && r != domain.RoleAdmin && r != domain.RoleMember {
			return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid role", Details: map[string]any{"role": "must be admin or member"}}
		}
		m.Role = r
	}

	applyString := func(dst *string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = ""
			return
		}
		*dst = strings.TrimSpace(o.Value())
	}
	// Stored verbatim; Login compares exactly.
	if in.Password.IsSpecified() {
		m.Password = ""
		if !in.Password.IsNull() {
			m.Password = in.Password.Value()
		}
	}
	applyString(&m.AvatarURL, in.AvatarURL)
	applyString(&m.BikeModel, in.BikeModel)
	applyString(&m.BikeImageURL, in.BikeImageURL)
	applyString(&m.Address, in.Address)

	applyFloat := func(dst *float64, o Optional[float64]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = 0
			return
		}
		*dst = o.Value()
	}
	applyFloat(&m.Lat, in.Lat)
	applyFloat(&m.Lng, in.Lng)
	return nil
}

// AddMember creates a member. Admin only.
func (s *Service) AddMember(ctx context.Context, caller domain.MemberID, in AddMemberInput) (domain.Member, error) {
	if err := s.requireAdmin(caller); err != nil {
		return domain.Member{}, err
	}

	name := domain.NormalizeHumanName(in.Name)
	if name == "" || in.Password == "" {
		return domain.Member{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "Name and password are required",
			Details: map[string]any{"name": "required", "password": "required"},
		}
	}
	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return domain.Member{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid role", Details: map[string]any{"role": "must be admin or member"}}
	}

	m := domain.Member{
		ID:           s.newMemberID(),
		Name:         name,
		Password:     in.Password,
		Role:         role,
		AvatarURL:    orDefault(in.AvatarURL, fmt.Sprintf("https://picsum.photos/seed/%s/150/150", url.PathEscape(name))),
		BikeModel:    orDefault(in.BikeModel, DefaultBikeModel),
		BikeImageURL: orDefault(in.BikeImageURL, fmt.Sprintf("https://picsum.photos/seed/%sbike/400/300", url.PathEscape(name))),
		Address:      orDefault(in.Address, DefaultAddress),
		Lat:          in.Lat,
		Lng:          in.Lng,
	}
	if m.Lat == 0 {
		m.Lat = DefaultLat
	}
	if m.Lng == 0 {
		m.Lng = DefaultLng
	}

	_, err := s.dir.UpdateMembers(ctx, func(ms []domain.Member) ([]domain.Member, error) {
		if indexOf(ms, m.ID) >= 0 {
			// Extremely unlikely (UUID collision); treat as conflict.
			return nil, &Error{Status: 409, Code: "MEMBER_ID_CONFLICT", Message: "member id conflict"}
		}
		return append(ms, m), nil
	})
	if err != nil {
		return domain.Member{}, err
	}
	return m, nil
}

// DeleteMember removes a member. Admin only; neither the reserved admin
// record nor the caller's own record can be removed.
func (s *Service) DeleteMember(ctx context.Context, caller, id domain.MemberID) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if id == caller {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "You cannot delete yourself!"}
	}
	if id == domain.AdminMemberID {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "the club admin cannot be deleted"}
	}
	_, err := s.dir.UpdateMembers(ctx, func(ms []domain.Member) ([]domain.Member, error) {
		i := indexOf(ms, id)
		if i < 0 {
			return nil, errMemberNotFound()
		}
		return append(ms[:i], ms[i+1:]...), nil
	})
	return err
}

func (s *Service) requireAdmin(caller domain.MemberID) error {
	m, ok := s.dir.Member(caller)
	if !ok || !m.IsAdmin() {
		return errForbidden("admin role required")
	}
	return nil
}

func indexOf(ms []domain.Member, id domain.MemberID) int {
	for i, m := range ms {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
