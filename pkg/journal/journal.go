package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver, cgo-free
)

// Entry is one recorded acquisition cycle.
type Entry struct {
	// Loop is the loop name ("tile", "camera").
	Loop string

	// Index is the canonical acquisition index that was attempted
	// (YYYYMMDDHHMM), empty for skipped cycles.
	Index string

	// Outcome is the cycle outcome: "stored", "skipped_closed",
	// "not_yet_published", "unavailable", "failed".
	Outcome string

	// Path is the storage path on success, empty otherwise.
	Path string

	// SizeBytes is the stored artifact size on success.
	SizeBytes int64

	// Duration is how long the cycle's acquisition took.
	Duration time.Duration

	// Detail carries the error text for failed cycles.
	Detail string

	// At is when the cycle ran, UTC.
	At time.Time
}

// Config contains configuration for the journal.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultConfig returns the default journal configuration.
func DefaultConfig() Config {
	return Config{
		Path:        "data/journal.db",
		BusyTimeout: 5 * time.Second,
	}
}

// Journal is a SQLite-backed cycle journal.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	loop        TEXT    NOT NULL,
	idx         TEXT    NOT NULL DEFAULT '',
	outcome     TEXT    NOT NULL,
	path        TEXT    NOT NULL DEFAULT '',
	size_bytes  INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	detail      TEXT    NOT NULL DEFAULT '',
	at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cycles_loop_at ON cycles(loop, at DESC);
`

// Open opens (creating if necessary) the journal database at cfg.Path and
// initializes its schema. WAL mode is enabled so an external reader can query
// the journal while the daemon writes.
func Open(cfg Config) (*Journal, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultConfig().BusyTimeout
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	// A single writer, so one connection avoids lock contention entirely.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}

	return &Journal{
		db:     db,
		logger: slog.Default().With("component", "journal"),
	}, nil
}

// Record appends one cycle entry. A zero At is filled with the current time.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO cycles (loop, idx, outcome, path, size_bytes, duration_ms, detail, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Loop, e.Index, e.Outcome, e.Path, e.SizeBytes, e.Duration.Milliseconds(), e.Detail, e.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for a loop, newest first. An empty loop
// matches all loops.
func (j *Journal) Recent(ctx context.Context, loop string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT loop, idx, outcome, path, size_bytes, duration_ms, detail, at
	          FROM cycles`
	args := []any{}
	if loop != "" {
		query += ` WHERE loop = ?`
		args = append(args, loop)
	}
	query += ` ORDER BY at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMS int64
		if err := rows.Scan(&e.Loop, &e.Index, &e.Outcome, &e.Path, &e.SizeBytes, &durationMS, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastSuccess returns the most recent "stored" entry for a loop, or nil if
// the loop has never succeeded. Used by readiness checks.
func (j *Journal) LastSuccess(ctx context.Context, loop string) (*Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT loop, idx, outcome, path, size_bytes, duration_ms, detail, at
		 FROM cycles WHERE loop = ? AND outcome = 'stored'
		 ORDER BY at DESC, id DESC LIMIT 1`, loop)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var e Entry
	var durationMS int64
	if err := rows.Scan(&e.Loop, &e.Index, &e.Outcome, &e.Path, &e.SizeBytes, &durationMS, &e.Detail, &e.At); err != nil {
		return nil, fmt.Errorf("scan journal row: %w", err)
	}
	e.Duration = time.Duration(durationMS) * time.Millisecond
	return &e, nil
}

// Prune deletes entries older than the cutoff, returning how many were
// removed. The daemon calls this from the nightly sweep so the journal stays
// bounded like everything else.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM cycles WHERE at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		j.logger.Info("journal pruned", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
