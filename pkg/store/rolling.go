package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// Rolling is the timestamped multi-artifact store. Each capture lands under a
// name derived from its capture instant; the retention pass keeps the newest
// MaxCount unpinned artifacts and best-effort deletes the rest.
type Rolling struct {
	dir    string
	prefix string
	ext    string
	logger *slog.Logger

	// policyMu guards policy for hot reload; file operations themselves are
	// single-writer by construction and need no lock.
	policyMu sync.RWMutex
	policy   Policy
}

// NewRolling creates a rolling store rooted at dir. Filenames take the form
// <prefix><YYYYMMDD-HHMMSS><ext>; the directory is created if missing.
func NewRolling(dir, prefix, ext string, policy Policy) (*Rolling, error) {
	if policy.MaxCount <= 0 {
		return nil, fmt.Errorf("retention max count must be positive, got %d", policy.MaxCount)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewStorageError("put_rolling", dir, err)
	}

	return &Rolling{
		dir:    dir,
		prefix: prefix,
		ext:    ext,
		policy: policy,
		logger: slog.Default().With("component", "store.rolling", "dir", dir),
	}, nil
}

// Dir returns the store's directory.
func (r *Rolling) Dir() string {
	return r.dir
}

// SetPolicy replaces the retention policy. Used by configuration hot reload;
// takes effect on the next retention pass.
func (r *Rolling) SetPolicy(policy Policy) error {
	if policy.MaxCount <= 0 {
		return fmt.Errorf("retention max count must be positive, got %d", policy.MaxCount)
	}
	r.policyMu.Lock()
	r.policy = policy
	r.policyMu.Unlock()
	return nil
}

// currentPolicy returns a snapshot of the policy.
func (r *Rolling) currentPolicy() Policy {
	r.policyMu.RLock()
	defer r.policyMu.RUnlock()
	return r.policy
}

// Put stores data under a name derived from capturedAt (one-second
// resolution) and returns the storage path. Empty data is rejected.
//
// Same-second collisions never silently clobber: if the existing file is
// content-identical the write is a no-op, otherwise a numeric suffix
// disambiguates.
func (r *Rolling) Put(data []byte, capturedAt time.Time) (string, error) {
	if len(data) == 0 {
		return "", NewStorageError("put_rolling", r.dir, errors.New("refusing to store empty payload"))
	}

	path, collided, err := r.resolvePath(capturedAt, func(existing string) (bool, error) {
		prior, err := os.ReadFile(existing)
		if err != nil {
			return false, err
		}
		return bytes.Equal(prior, data), nil
	})
	if err != nil {
		return "", err
	}
	if collided {
		r.logger.Debug("duplicate capture, keeping existing artifact", "path", path)
		return path, nil
	}

	tmp, err := os.CreateTemp(r.dir, ".rolling-tmp-*")
	if err != nil {
		return "", NewStorageError("put_rolling", r.dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", NewStorageError("put_rolling", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", NewStorageError("put_rolling", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", NewStorageError("put_rolling", path, err)
	}

	r.logger.Debug("artifact stored", "path", path, "bytes", len(data))
	return path, nil
}

// Ingest moves an already-captured file (for example a camera frame written
// by the capture command) into the store under capturedAt's name, with the
// same collision policy as Put. The source file is consumed.
func (r *Rolling) Ingest(srcPath string, capturedAt time.Time) (string, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", NewStorageError("ingest", srcPath, err)
	}
	if info.Size() == 0 {
		os.Remove(srcPath)
		return "", NewStorageError("ingest", srcPath, errors.New("refusing to ingest empty file"))
	}

	path, collided, err := r.resolvePath(capturedAt, func(existing string) (bool, error) {
		return filesIdentical(existing, srcPath)
	})
	if err != nil {
		return "", err
	}
	if collided {
		os.Remove(srcPath)
		r.logger.Debug("duplicate capture, keeping existing artifact", "path", path)
		return path, nil
	}

	if err := os.Rename(srcPath, path); err != nil {
		return "", NewStorageError("ingest", path, err)
	}

	r.logger.Debug("artifact ingested", "path", path, "bytes", info.Size())
	return path, nil
}

// resolvePath picks the storage path for a capture instant. identical reports
// whether an existing file already holds this capture's content; when it
// does, resolvePath returns that path with collided=true.
func (r *Rolling) resolvePath(capturedAt time.Time, identical func(existing string) (bool, error)) (string, bool, error) {
	stamp := capturedAt.UTC().Format(captureStampLayout)

	for n := 0; ; n++ {
		name := r.prefix + stamp
		if n > 0 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		name += r.ext
		path := filepath.Join(r.dir, name)

		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, false, nil
		}
		if err != nil {
			return "", false, NewStorageError("put_rolling", path, err)
		}

		same, err := identical(path)
		if err != nil {
			return "", false, NewStorageError("put_rolling", path, err)
		}
		if same {
			return path, true, nil
		}
		// Differing content in the same second: suffix and try again.
	}
}

// captureStampRe extracts the capture instant embedded in a filename.
var captureStampRe = regexp.MustCompile(`\d{8}-\d{6}`)

// List returns the directory's artifacts, pin status applied, newest first.
// Temp files and hidden files are skipped. Artifacts whose names carry no
// parseable capture stamp fall back to their modification time.
func (r *Rolling) List() ([]Artifact, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, NewStorageError("list", r.dir, err)
	}

	policy := r.currentPolicy()

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed concurrently
		}

		a := Artifact{
			Path: filepath.Join(r.dir, entry.Name()),
			Size: info.Size(),
		}
		if stamp := captureStampRe.FindString(entry.Name()); stamp != "" {
			if t, err := time.Parse(captureStampLayout, stamp); err == nil {
				a.CapturedAt = t
			}
		}
		if a.CapturedAt.IsZero() {
			a.CapturedAt = info.ModTime().UTC()
		}
		if policy.Pin != nil {
			a.Pinned = policy.Pin(a)
		}
		artifacts = append(artifacts, a)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].CapturedAt.Equal(artifacts[j].CapturedAt) {
			return artifacts[i].CapturedAt.After(artifacts[j].CapturedAt)
		}
		return artifacts[i].Path > artifacts[j].Path
	})

	return artifacts, nil
}

// EnforceRetention applies the retention policy: keep the newest MaxCount
// unpinned artifacts, delete the rest. Pinned artifacts are excluded from the
// count and never deleted. Deletion is best-effort: individual failures are
// logged and skipped, never fatal. Returns the paths actually evicted.
//
// The pass is idempotent: with no intervening writes, a second run evicts
// nothing.
func (r *Rolling) EnforceRetention() ([]string, error) {
	artifacts, err := r.List()
	if err != nil {
		return nil, err
	}

	policy := r.currentPolicy()

	var unpinned []Artifact
	for _, a := range artifacts {
		if !a.Pinned {
			unpinned = append(unpinned, a)
		}
	}
	if len(unpinned) <= policy.MaxCount {
		return nil, nil
	}

	var evicted []string
	var lastErr error
	for _, a := range unpinned[policy.MaxCount:] {
		if err := os.Remove(a.Path); err != nil {
			if os.IsNotExist(err) {
				continue // already gone, nothing lost
			}
			lastErr = err
			r.logger.Warn("eviction failed, will retry next pass",
				"path", a.Path,
				"error", err,
			)
			continue
		}
		evicted = append(evicted, a.Path)
	}

	if len(evicted) > 0 {
		r.logger.Info("retention enforced",
			"evicted", len(evicted),
			"kept", policy.MaxCount,
		)
	}
	if lastErr != nil {
		return evicted, NewStorageError("evict", r.dir, lastErr)
	}
	return evicted, nil
}

// filesIdentical reports whether two files have identical content.
func filesIdentical(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, 64<<10)
	bufB := make([]byte, 64<<10)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		if errA == io.EOF || errA == io.ErrUnexpectedEOF {
			return errB == io.EOF || errB == io.ErrUnexpectedEOF, nil
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
	}
}
