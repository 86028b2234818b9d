package domain

// MemberID is an internal identifier for a member record.
type MemberID string

// TripID is an internal identifier for a trip record.
type TripID string

// CommentID identifies a chat message on a trip.
type CommentID string

// PollID identifies a poll.
type PollID string

// OptionID identifies a poll option.
type OptionID string

const (
	// AdminMemberID is the reserved identity of the club admin record.
	// Storage re-injects the seed admin whenever it is missing.
	AdminMemberID MemberID = "admin"

	// AssistantMemberID is the sentinel author id used for assistant replies in trip chats.
	AssistantMemberID MemberID = "ai"
)
