package timealign

import (
	"fmt"
	"time"
)

// Index identifies one upstream publication instant. It is derived purely
// from a clock reading and the configured publication interval, and is never
// persisted independently of the artifact it indexes.
type Index struct {
	t time.Time
}

// Align returns the index of the most recently published artifact at time now,
// given the upstream publication interval.
//
// Flooring is performed across the full epoch in UTC (time.Truncate), so the
// result is correct for any positive interval, including intervals that do not
// divide the hour evenly and intervals of an hour or longer. Intervals must be
// positive; Align panics otherwise, since a non-positive interval is rejected
// during configuration validation and can only appear here through a
// programming error.
func Align(now time.Time, interval time.Duration) Index {
	if interval <= 0 {
		panic(fmt.Sprintf("timealign: non-positive interval %v", interval))
	}
	return Index{t: now.UTC().Truncate(interval)}
}

// Time returns the publication instant the index refers to, in UTC.
func (i Index) Time() time.Time {
	return i.t
}

// String formats the index as a fixed-width YYYYMMDDHHMM key, the canonical
// form used in resource locators and journal records.
func (i Index) String() string {
	return i.t.Format("200601021504")
}

// Next returns the index one publication interval later.
func (i Index) Next(interval time.Duration) Index {
	return Index{t: i.t.Add(interval)}
}

// Before reports whether i refers to an earlier publication instant than other.
func (i Index) Before(other Index) bool {
	return i.t.Before(other.t)
}

// IsZero reports whether the index is the zero value.
func (i Index) IsZero() bool {
	return i.t.IsZero()
}
