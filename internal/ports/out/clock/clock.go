package clock

import "time"

// Clock provides time to the application: comment timestamps, session expiry
// and the relative timestamps of seeded chat messages.
// Using an interface enables deterministic tests via a controllable implementation.
type Clock interface {
	Now() time.Time
}
