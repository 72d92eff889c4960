// Package store persists acquired artifacts and enforces retention.
//
// Two stores cover the two artifact lifecycles:
//
//   - Latest is a single-slot cache: every successful acquisition atomically
//     replaces the prior snapshot under one fixed path. External readers (a
//     web server serving the snapshot, for example) never observe a partially
//     written file.
//   - Rolling accumulates one file per capture instant in a directory and
//     enforces a maximum-count policy after every put. Artifacts matching the
//     policy's pin predicate are excluded from the count and never
//     auto-deleted.
//
// Each store exclusively owns its directory. There is no locking: the
// single-writer assumption holds by construction, one scheduler loop per
// store.
package store
