package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"stratus-hq/skywatch/pkg/journal"
	"stratus-hq/skywatch/pkg/store"
	"stratus-hq/skywatch/pkg/telemetry/metrics"
)

// SweepTarget is one rolling store the sweeper enforces retention on.
type SweepTarget struct {
	// Name is the owning loop's name, for logs and metrics.
	Name string

	// Store is the rolling store to sweep.
	Store *store.Rolling
}

// SweeperConfig configures the deep retention sweep.
type SweeperConfig struct {
	// Schedule is a cron expression, e.g. "0 3 * * *" for daily at 3 AM.
	// Empty disables the sweeper.
	Schedule string

	// JournalRetention bounds the cycle journal's age. Zero keeps the
	// journal forever.
	JournalRetention time.Duration
}

// Sweeper runs a scheduled deep retention sweep across every rolling store
// and prunes the cycle journal. The per-capture retention pass already keeps
// each store bounded during normal operation; the sweep exists to reclaim
// space while a loop's window is closed for hours (no captures, no passes)
// and to retry evictions that failed earlier.
type Sweeper struct {
	config  SweeperConfig
	targets []SweepTarget
	journal *journal.Journal
	metrics *metrics.Collector
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper. journal and collector may be nil.
func NewSweeper(config SweeperConfig, targets []SweepTarget, j *journal.Journal, collector *metrics.Collector) *Sweeper {
	return &Sweeper{
		config:  config,
		targets: targets,
		journal: j,
		metrics: collector,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "scheduler.sweeper"),
	}
}

// Start begins scheduled sweeping. If no schedule is configured, Start does
// nothing and returns nil.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("sweeper started",
		"schedule", s.config.Schedule,
		"targets", len(s.targets),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Sweep executes one sweep across all targets. Failures are logged per
// target and never abort the sweep.
func (s *Sweeper) Sweep(ctx context.Context) {
	for _, target := range s.targets {
		evicted, err := target.Store.EnforceRetention()
		if err != nil {
			s.logger.Warn("sweep pass incomplete",
				"loop", target.Name,
				"evicted", len(evicted),
				"error", err,
			)
		} else if len(evicted) > 0 {
			s.logger.Info("sweep pass complete",
				"loop", target.Name,
				"evicted", len(evicted),
			)
		}
		if s.metrics != nil {
			s.metrics.RecordEvictions(target.Name, len(evicted))
		}
	}

	if s.journal != nil && s.config.JournalRetention > 0 {
		cutoff := time.Now().Add(-s.config.JournalRetention)
		if _, err := s.journal.Prune(ctx, cutoff); err != nil {
			s.logger.Warn("journal prune failed", "error", err)
		}
	}
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("sweeper stopped")
	}
}

// NextRun returns the next scheduled sweep time, nil if none is scheduled.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
