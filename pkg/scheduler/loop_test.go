package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stratus-hq/skywatch/pkg/acquire"
	"stratus-hq/skywatch/pkg/gate"
	"stratus-hq/skywatch/pkg/journal"
	"stratus-hq/skywatch/pkg/timealign"
)

// memoryRecorder captures journal entries in memory.
type memoryRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (m *memoryRecorder) Record(ctx context.Context, e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryRecorder) all() []journal.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]journal.Entry(nil), m.entries...)
}

// fixedClock returns a controllable clock function.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func mustLoop(t *testing.T, cfg LoopConfig, cycle CycleFunc, rec Recorder) *Loop {
	t.Helper()
	l, err := NewLoop(cfg, cycle, nil, rec)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	return l
}

// TestLoop_CycleUsesAlignedIndex tests that the cycle receives the index
// floored to the interval grid: 10:07 with a 900s interval asks for 10:00,
// 10:22 asks for 10:15.
func TestLoop_CycleUsesAlignedIndex(t *testing.T) {
	clock := &fixedClock{}
	rec := &memoryRecorder{}

	var got []string
	l := mustLoop(t, LoopConfig{Name: "tile", Interval: 900 * time.Second},
		func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
			got = append(got, idx.String())
			return CycleResult{Path: "p", Size: 1}, nil
		}, rec)
	l.now = clock.now

	clock.set(time.Date(2024, 6, 1, 10, 7, 0, 0, time.UTC))
	l.runCycle(context.Background())

	clock.set(time.Date(2024, 6, 1, 10, 22, 0, 0, time.UTC))
	l.runCycle(context.Background())

	want := []string{"202406011000", "202406011015"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("indexes = %v, want %v", got, want)
	}
}

// TestLoop_ClosedWindowSkipsButCompletes tests that a closed gate produces a
// full (skipped) cycle: no acquisition, but state, journal and cadence are
// all updated.
func TestLoop_ClosedWindowSkipsButCompletes(t *testing.T) {
	clock := &fixedClock{}
	rec := &memoryRecorder{}

	cycleCalls := 0
	l := mustLoop(t, LoopConfig{
		Name:     "camera",
		Interval: 10 * time.Minute,
		Window:   &gate.Window{StartHourUTC: 3, EndHourUTC: 18},
	}, func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
		cycleCalls++
		return CycleResult{}, nil
	}, rec)
	l.now = clock.now

	clock.set(time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC))
	l.runCycle(context.Background())

	if cycleCalls != 0 {
		t.Errorf("cycle ran %d times with closed window", cycleCalls)
	}
	outcome, at := l.LastOutcome()
	if outcome != OutcomeSkippedClosed {
		t.Errorf("outcome = %s, want %s", outcome, OutcomeSkippedClosed)
	}
	if at.IsZero() {
		t.Error("skipped cycle did not update last-cycle time")
	}
	entries := rec.all()
	if len(entries) != 1 || entries[0].Outcome != string(OutcomeSkippedClosed) {
		t.Errorf("journal = %+v, want one skipped_closed entry", entries)
	}
}

// TestLoop_ErrorsAreSwallowed tests that no cycle error propagates or
// changes the loop's willingness to run the next cycle.
func TestLoop_ErrorsAreSwallowed(t *testing.T) {
	clock := &fixedClock{}
	rec := &memoryRecorder{}
	clock.set(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))

	failures := []error{
		&acquire.UnavailableError{Index: "x", StatusCode: 502},
		&acquire.NotYetPublishedError{Index: "x"},
		&acquire.TimeoutError{Index: "x", Timeout: time.Second},
		&acquire.DeviceError{Device: "fswebcam", Cause: errors.New("ioctl")},
		errors.New("plain failure"),
	}

	call := 0
	l := mustLoop(t, LoopConfig{Name: "tile", Interval: time.Minute},
		func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
			err := failures[call%len(failures)]
			call++
			return CycleResult{}, err
		}, rec)
	l.now = clock.now

	for i := 0; i < len(failures); i++ {
		l.runCycle(context.Background())
	}

	if call != len(failures) {
		t.Errorf("cycle ran %d times, want %d", call, len(failures))
	}

	wantOutcomes := []Outcome{
		OutcomeUnavailable,
		OutcomeNotYetPublished,
		OutcomeUnavailable,
		OutcomeFailed,
		OutcomeFailed,
	}
	entries := rec.all()
	if len(entries) != len(wantOutcomes) {
		t.Fatalf("journal entries = %d, want %d", len(entries), len(wantOutcomes))
	}
	for i, want := range wantOutcomes {
		if entries[i].Outcome != string(want) {
			t.Errorf("entry %d outcome = %s, want %s", i, entries[i].Outcome, want)
		}
	}
}

// TestLoop_SuccessUpdatesLastSuccess tests success bookkeeping for
// readiness checks.
func TestLoop_SuccessUpdatesLastSuccess(t *testing.T) {
	clock := &fixedClock{}
	clock.set(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))

	fail := true
	l := mustLoop(t, LoopConfig{Name: "tile", Interval: time.Minute},
		func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
			if fail {
				return CycleResult{}, &acquire.UnavailableError{Index: idx.String()}
			}
			return CycleResult{Path: "p", Size: 10}, nil
		}, nil)
	l.now = clock.now

	l.runCycle(context.Background())
	if !l.LastSuccess().IsZero() {
		t.Error("failed cycle counted as success")
	}

	fail = false
	clock.set(time.Date(2024, 6, 1, 10, 1, 0, 0, time.UTC))
	l.runCycle(context.Background())
	if got := l.LastSuccess(); !got.Equal(clock.now()) {
		t.Errorf("LastSuccess = %v, want %v", got, clock.now())
	}
}

// TestLoop_NextWake tests fixed-cadence wake computation: the next wake is
// the next interval boundary regardless of cycle outcome or duration.
func TestLoop_NextWake(t *testing.T) {
	clock := &fixedClock{}
	l := mustLoop(t, LoopConfig{Name: "tile", Interval: 15 * time.Minute},
		func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
			return CycleResult{}, nil
		}, nil)
	l.now = clock.now

	tests := []struct {
		now  string
		want string
	}{
		{"2024-06-01T10:07:00Z", "2024-06-01T10:15:00Z"},
		{"2024-06-01T10:15:00Z", "2024-06-01T10:30:00Z"}, // on-boundary: strictly after
		{"2024-06-01T10:59:59Z", "2024-06-01T11:00:00Z"},
	}
	for _, tt := range tests {
		now, _ := time.Parse(time.RFC3339, tt.now)
		want, _ := time.Parse(time.RFC3339, tt.want)
		clock.set(now)
		if got := l.nextWake(); !got.Equal(want) {
			t.Errorf("nextWake(%s) = %v, want %v", tt.now, got, want)
		}
	}
}

// TestLoop_RunStopsOnCancel tests cooperative cancellation between cycles.
func TestLoop_RunStopsOnCancel(t *testing.T) {
	rec := &memoryRecorder{}
	l := mustLoop(t, LoopConfig{Name: "tile", Interval: 10 * time.Millisecond},
		func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
			return CycleResult{Path: "p", Size: 1}, nil
		}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if len(rec.all()) == 0 {
		t.Error("no cycles ran before cancellation")
	}
	if state := l.CurrentState(); state != StateSleeping {
		t.Errorf("state after stop = %s, want %s", state, StateSleeping)
	}
}

// TestNewLoop_Validation tests fail-fast construction.
func TestNewLoop_Validation(t *testing.T) {
	cycle := func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
		return CycleResult{}, nil
	}

	tests := []struct {
		name string
		cfg  LoopConfig
	}{
		{"empty name", LoopConfig{Interval: time.Minute}},
		{"zero interval", LoopConfig{Name: "tile"}},
		{"negative interval", LoopConfig{Name: "tile", Interval: -time.Second}},
		{"bad window", LoopConfig{Name: "tile", Interval: time.Minute, Window: &gate.Window{StartHourUTC: 20, EndHourUTC: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoop(tt.cfg, cycle, nil, nil); err == nil {
				t.Errorf("NewLoop(%+v) succeeded, want error", tt.cfg)
			}
		})
	}

	if _, err := NewLoop(LoopConfig{Name: "tile", Interval: time.Minute}, nil, nil, nil); err == nil {
		t.Error("NewLoop(nil cycle) succeeded, want error")
	}
}
