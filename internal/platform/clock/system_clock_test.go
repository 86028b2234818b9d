package clock

import (
	"testing"
	"time"
)

func TestSystemClock_MillisecondPrecisionUTC(t *testing.T) {
	t.Parallel()

	now := NewSystemClock().Now()
	if now.Location() != time.UTC {
		t.Fatalf("location=%v, want UTC", now.Location())
	}
	if now.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("now=%v has sub-millisecond precision", now)
	}
	if !time.UnixMilli(now.UnixMilli()).UTC().Equal(now) {
		t.Fatalf("UnixMilli round trip changed %v", now)
	}
}
