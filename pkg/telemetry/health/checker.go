// Package health exposes liveness and readiness for the acquisition daemon.
//
// Liveness is unconditional: if the process answers, it is alive. Readiness
// aggregates per-loop checks registered by the run command, typically "has
// this loop stored an artifact recently enough".
package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc is a function that performs a health check for a component.
// It returns nil if the component is healthy, or an error describing the
// problem.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single health check.
type CheckResult struct {
	// Status is the check status: "ok" or "unhealthy".
	Status string `json:"status"`

	// Message provides additional context for unhealthy status.
	Message string `json:"message,omitempty"`
}

// Status represents the overall health of the daemon.
type Status struct {
	// Status is the overall status: "ok" or "degraded".
	Status string `json:"status"`

	// Checks contains the status of individual components.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the health check was performed.
	Timestamp time.Time `json:"timestamp"`
}

// Checker manages health checks for daemon components.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New creates a health checker. If timeout is 0 it defaults to 5 seconds
// per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers a health check for a named component, replacing
// any existing check under the same name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every registered check and aggregates the results. A daemon
// with any failing check reports "degraded". The loops keep running either
// way; readiness only informs external monitoring.
func (c *Checker) Check(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	status := Status{
		Status:    "ok",
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now().UTC(),
	}

	for name, fn := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
		err := fn(checkCtx)
		cancel()

		if err != nil {
			status.Status = "degraded"
			status.Checks[name] = CheckResult{Status: "unhealthy", Message: err.Error()}
		} else {
			status.Checks[name] = CheckResult{Status: "ok"}
		}
	}

	return status
}
