package clock

import "time"

// SystemClock returns the current wall-clock time in UTC, truncated to
// milliseconds: stored timestamps are unix millis, so anything finer would not
// survive a save/load round trip.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
