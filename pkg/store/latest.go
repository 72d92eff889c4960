package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Latest is the single-slot snapshot store. The target path, if present,
// always holds the most recent successfully validated artifact in full:
// writes go to a temp file in the same directory and are renamed over the
// target, so a crash leaves either the old complete file or the new one,
// never a mix.
type Latest struct {
	dir    string
	name   string
	logger *slog.Logger
}

// NewLatest creates a latest-snapshot store rooted at dir, storing under the
// fixed filename name. The directory is created if missing.
func NewLatest(dir, name string) (*Latest, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid snapshot filename %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewStorageError("put_latest", dir, err)
	}

	return &Latest{
		dir:    dir,
		name:   name,
		logger: slog.Default().With("component", "store.latest", "dir", dir),
	}, nil
}

// Path returns the fixed target path external readers consume.
func (l *Latest) Path() string {
	return filepath.Join(l.dir, l.name)
}

// Put atomically replaces the snapshot with data. Empty data is rejected:
// a failed or empty acquisition must never overwrite a good prior snapshot.
func (l *Latest) Put(data []byte) error {
	if len(data) == 0 {
		return NewStorageError("put_latest", l.Path(), errors.New("refusing to store empty payload"))
	}

	tmp, err := os.CreateTemp(l.dir, "."+l.name+".tmp-*")
	if err != nil {
		return NewStorageError("put_latest", l.dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return NewStorageError("put_latest", tmpPath, err)
	}
	// Flush to disk before the rename so the swap is crash-safe, not just
	// process-safe.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return NewStorageError("put_latest", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return NewStorageError("put_latest", tmpPath, err)
	}

	if err := os.Rename(tmpPath, l.Path()); err != nil {
		os.Remove(tmpPath)
		return NewStorageError("put_latest", l.Path(), err)
	}

	l.logger.Debug("snapshot replaced", "bytes", len(data))
	return nil
}
