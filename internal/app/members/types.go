package members

import "github.com/costa-brava-bikers/clubhouse-api/internal/domain"

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// UpdateMemberInput is a partial profile update. Null on Password or Role
// reverts to the default; null on Name is rejected; null elsewhere clears.
type UpdateMemberInput struct {
	Name         Optional[string]
	Password     Optional[string]      // self or admin
	Role         Optional[domain.Role] // admin only
	AvatarURL    Optional[string]
	BikeModel    Optional[string]
	BikeImageURL Optional[string]
	Address      Optional[string]
	Lat          Optional[float64]
	Lng          Optional[float64]
}

// AddMemberInput is the admin "add member" form. Blank optional fields are
// filled with defaults.
type AddMemberInput struct {
	Name         string
	Password     string
	Role         domain.Role
	AvatarURL    string
	BikeModel    string
	BikeImageURL string
	Address      string
	Lat          float64
	Lng          float64
}
