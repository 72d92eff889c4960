// Package scheduler drives the acquisition loops.
//
// A Loop alternates between two states, Sleeping and Running. On each wake it
// performs one acquisition cycle (window-gate check, index-aligned fetch or
// capture, storage hand-off, retention pass) and then sleeps until the next
// interval boundary. Cycles are independent: every per-cycle error is logged
// and swallowed, and the next wake is computed from the wall clock rather
// than from the previous cycle's fate, so the cadence stays fixed even under
// sustained upstream outage. A closed gate still produces a (skipped) cycle
// for the same reason.
//
// Loops run until their context is cancelled; cancellation is only observed
// between cycles, which is always safe because no multi-step transaction
// spans a sleep boundary.
//
// The Sweeper complements the per-capture retention pass with a
// cron-scheduled deep sweep that also prunes the cycle journal.
package scheduler
