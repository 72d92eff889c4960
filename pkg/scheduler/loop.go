package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stratus-hq/skywatch/pkg/acquire"
	"stratus-hq/skywatch/pkg/gate"
	"stratus-hq/skywatch/pkg/journal"
	"stratus-hq/skywatch/pkg/telemetry/metrics"
	"stratus-hq/skywatch/pkg/timealign"
)

// Outcome classifies one completed cycle.
type Outcome string

const (
	// OutcomeStored: the artifact was acquired, validated and stored.
	OutcomeStored Outcome = "stored"
	// OutcomeSkippedClosed: the window gate was closed; nothing was attempted.
	OutcomeSkippedClosed Outcome = "skipped_closed"
	// OutcomeNotYetPublished: upstream has not materialized this index yet.
	OutcomeNotYetPublished Outcome = "not_yet_published"
	// OutcomeUnavailable: upstream unreachable, erroring, or timed out.
	OutcomeUnavailable Outcome = "unavailable"
	// OutcomeFailed: any other cycle failure (device error, storage error).
	OutcomeFailed Outcome = "failed"
)

// State is the loop's scheduling state.
type State string

const (
	// StateSleeping: waiting for the next interval boundary.
	StateSleeping State = "sleeping"
	// StateRunning: executing one acquisition cycle.
	StateRunning State = "running"
)

// CycleResult describes a successful cycle's stored artifact.
type CycleResult struct {
	// Path is where the artifact was stored.
	Path string

	// Size is the stored size in bytes.
	Size int64

	// CapturedAt is the capture instant for rolling artifacts; zero for
	// latest-snapshot cycles.
	CapturedAt time.Time

	// Evicted is how many artifacts the cycle's retention pass removed.
	Evicted int
}

// CycleFunc performs one acquisition for the given index. It is called at
// most once per wake, with the gate already checked.
type CycleFunc func(ctx context.Context, idx timealign.Index) (CycleResult, error)

// Recorder receives one journal entry per cycle. *journal.Journal implements
// it; a nil Recorder disables journaling.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// LoopConfig configures one acquisition loop.
type LoopConfig struct {
	// Name identifies the loop in logs, metrics and the journal.
	Name string

	// Interval is the acquisition cadence. Must be positive.
	Interval time.Duration

	// Window optionally gates acquisition by UTC hour. Nil is always open.
	Window *gate.Window
}

// Loop is one independent scheduled-acquisition loop.
type Loop struct {
	config  LoopConfig
	cycle   CycleFunc
	logger  *slog.Logger
	metrics *metrics.Collector
	journal Recorder

	// now is the clock; swapped out in tests.
	now func() time.Time

	mu          sync.RWMutex
	state       State
	lastOutcome Outcome
	lastCycle   time.Time
	lastSuccess time.Time
}

// NewLoop creates a loop. collector and recorder may be nil.
func NewLoop(config LoopConfig, cycle CycleFunc, collector *metrics.Collector, recorder Recorder) (*Loop, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("loop name is empty")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("loop %q: interval must be positive, got %v", config.Name, config.Interval)
	}
	if config.Window != nil {
		if err := config.Window.Validate(); err != nil {
			return nil, fmt.Errorf("loop %q: %w", config.Name, err)
		}
	}
	if cycle == nil {
		return nil, fmt.Errorf("loop %q: nil cycle", config.Name)
	}

	return &Loop{
		config:  config,
		cycle:   cycle,
		logger:  slog.Default().With("component", "scheduler", "loop", config.Name),
		metrics: collector,
		journal: recorder,
		now:     time.Now,
		state:   StateSleeping,
	}, nil
}

// Run executes cycles until ctx is cancelled, then returns ctx.Err(). The
// first cycle runs immediately; subsequent wakes land on interval boundaries.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("loop started",
		"interval", l.config.Interval,
		"window", l.config.Window.String(),
	)

	for {
		l.setState(StateRunning)
		l.runCycle(ctx)
		l.setState(StateSleeping)

		wake := l.nextWake()
		timer := time.NewTimer(wake.Sub(l.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("loop stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// nextWake returns the next interval boundary strictly after now.
func (l *Loop) nextWake() time.Time {
	now := l.now()
	wake := timealign.Align(now, l.config.Interval).Time().Add(l.config.Interval)
	if !wake.After(now) {
		wake = now.Add(l.config.Interval)
	}
	return wake
}

// runCycle performs one full cycle. It never returns an error: every failure
// is classified, logged and swallowed so the next cycle is unaffected.
func (l *Loop) runCycle(ctx context.Context) {
	now := l.now()

	if !l.config.Window.IsOpen(now) {
		l.logger.Info("cycle skipped, window closed",
			"window", l.config.Window.String(),
			"hour_utc", now.UTC().Hour(),
		)
		l.finishCycle(ctx, now, OutcomeSkippedClosed, journal.Entry{}, 0)
		return
	}

	idx := timealign.Align(now, l.config.Interval)
	start := l.now()
	result, err := l.cycle(ctx, idx)
	elapsed := l.now().Sub(start)

	outcome := classify(err)
	entry := journal.Entry{
		Index:     idx.String(),
		Path:      result.Path,
		SizeBytes: result.Size,
		Duration:  elapsed,
	}

	switch outcome {
	case OutcomeStored:
		l.logger.Info("cycle complete",
			"index", idx.String(),
			"path", result.Path,
			"bytes", result.Size,
			"duration", elapsed,
		)
		if l.metrics != nil {
			l.metrics.RecordStored(l.config.Name, result.Size, now)
			l.metrics.RecordEvictions(l.config.Name, result.Evicted)
		}
	case OutcomeNotYetPublished:
		// Routine near publication boundaries; the next cycle recovers.
		l.logger.Info("artifact not yet published",
			"index", idx.String(),
			"duration", elapsed,
		)
		entry.Detail = err.Error()
	case OutcomeUnavailable:
		l.logger.Warn("upstream unavailable",
			"index", idx.String(),
			"duration", elapsed,
			"error", err,
		)
		entry.Detail = err.Error()
	default:
		l.logger.Error("cycle failed",
			"index", idx.String(),
			"duration", elapsed,
			"error", err,
		)
		entry.Detail = err.Error()
	}

	l.finishCycle(ctx, now, outcome, entry, elapsed)
}

// finishCycle updates loop state and writes metrics and the journal entry.
func (l *Loop) finishCycle(ctx context.Context, now time.Time, outcome Outcome, entry journal.Entry, elapsed time.Duration) {
	l.mu.Lock()
	l.lastOutcome = outcome
	l.lastCycle = now
	if outcome == OutcomeStored {
		l.lastSuccess = now
	}
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.RecordCycle(l.config.Name, string(outcome), elapsed)
	}
	if l.journal != nil {
		entry.Loop = l.config.Name
		entry.Outcome = string(outcome)
		entry.At = now.UTC()
		if err := l.journal.Record(ctx, entry); err != nil {
			l.logger.Warn("journal record failed", "error", err)
		}
	}
}

// classify maps a cycle error to an outcome.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeStored
	case acquire.IsNotYetPublished(err):
		return OutcomeNotYetPublished
	case acquire.IsUnavailable(err):
		return OutcomeUnavailable
	default:
		return OutcomeFailed
	}
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// CurrentState returns the loop's scheduling state.
func (l *Loop) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// LastOutcome returns the most recent cycle's outcome and completion time.
func (l *Loop) LastOutcome() (Outcome, time.Time) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastOutcome, l.lastCycle
}

// LastSuccess returns when the loop last stored an artifact, zero if never.
func (l *Loop) LastSuccess() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSuccess
}

// Name returns the loop name.
func (l *Loop) Name() string {
	return l.config.Name
}
