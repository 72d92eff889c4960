package timealign

import (
	"testing"
	"time"
)

// TestAlign_FifteenMinuteGrid tests alignment to a 15-minute publication grid.
func TestAlign_FifteenMinuteGrid(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{"mid slot", "2024-06-01T10:07:00Z", "202406011000"},
		{"next slot", "2024-06-01T10:22:00Z", "202406011015"},
		{"on boundary", "2024-06-01T10:30:00Z", "202406011030"},
		{"just before boundary", "2024-06-01T10:44:59Z", "202406011030"},
		{"top of hour", "2024-06-01T10:00:00Z", "202406011000"},
		{"end of hour", "2024-06-01T10:59:59Z", "202406011045"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.now, err)
			}

			got := Align(now, 15*time.Minute).String()
			if got != tt.want {
				t.Errorf("Align(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

// TestAlign_LongIntervals tests intervals that exceed an hour, which the
// minute-of-hour flooring in the legacy scripts mishandled.
func TestAlign_LongIntervals(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2024-06-01T10:07:00Z")

	tests := []struct {
		interval time.Duration
		want     string
	}{
		{time.Hour, "202406011000"},
		{3 * time.Hour, "202406010900"},
		{6 * time.Hour, "202406010600"},
		{24 * time.Hour, "202406010000"},
	}

	for _, tt := range tests {
		got := Align(now, tt.interval).String()
		if got != tt.want {
			t.Errorf("Align(10:07, %v) = %s, want %s", tt.interval, got, tt.want)
		}
	}
}

// TestAlign_Properties verifies the alignment invariants: the index never
// exceeds now, and never lags it by a full interval or more.
func TestAlign_Properties(t *testing.T) {
	intervals := []time.Duration{
		time.Minute, 5 * time.Minute, 15 * time.Minute,
		17 * time.Minute, // does not divide the hour
		time.Hour, 90 * time.Minute,
	}

	base, _ := time.Parse(time.RFC3339, "2024-06-01T00:00:00Z")
	for _, interval := range intervals {
		for step := 0; step < 200; step++ {
			now := base.Add(time.Duration(step) * 7 * time.Minute)
			idx := Align(now, interval)

			if idx.Time().After(now) {
				t.Fatalf("Align(%v, %v) = %v is in the future", now, interval, idx.Time())
			}
			if lag := now.Sub(idx.Time()); lag >= interval {
				t.Fatalf("Align(%v, %v) lags by %v, want < %v", now, interval, lag, interval)
			}
		}
	}
}

// TestAlign_NonUTCInput tests that alignment normalizes the clock reading
// to UTC before flooring.
func TestAlign_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2024, 6, 1, 12, 7, 0, 0, loc) // 10:07 UTC

	got := Align(now, 15*time.Minute).String()
	if got != "202406011000" {
		t.Errorf("Align(non-UTC 12:07+02:00) = %s, want 202406011000", got)
	}
}

// TestAlign_Monotonic verifies indexes are non-decreasing as the clock advances.
func TestAlign_Monotonic(t *testing.T) {
	base, _ := time.Parse(time.RFC3339, "2024-06-01T09:58:00Z")

	prev := Align(base, 15*time.Minute)
	for step := 1; step < 120; step++ {
		now := base.Add(time.Duration(step) * 30 * time.Second)
		idx := Align(now, 15*time.Minute)
		if idx.Before(prev) {
			t.Fatalf("index went backwards at %v: %s after %s", now, idx, prev)
		}
		prev = idx
	}
}

// TestIndex_Next tests stepping an index forward by one interval.
func TestIndex_Next(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2024-06-01T10:07:00Z")
	idx := Align(now, 15*time.Minute)

	next := idx.Next(15 * time.Minute)
	if next.String() != "202406011015" {
		t.Errorf("Next() = %s, want 202406011015", next)
	}
}

// TestAlign_PanicsOnNonPositiveInterval tests that a non-positive interval
// is treated as a programming error.
func TestAlign_PanicsOnNonPositiveInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Align(now, 0) did not panic")
		}
	}()
	Align(time.Now(), 0)
}
