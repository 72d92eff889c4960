package store

import (
	"path/filepath"
	"strings"
	"time"
)

// Artifact is one stored blob plus the metadata the retention pass needs.
type Artifact struct {
	// Path is the absolute storage path.
	Path string

	// CapturedAt is the capture instant, second resolution, UTC.
	CapturedAt time.Time

	// Size is the file size in bytes.
	Size int64

	// Pinned marks the artifact as exempt from count-based eviction.
	Pinned bool
}

// Name returns the artifact's base filename.
func (a Artifact) Name() string {
	return filepath.Base(a.Path)
}

// PinPredicate decides whether an artifact is permanently exempt from
// count-based eviction.
type PinPredicate func(Artifact) bool

// Policy is the retention policy applied to a rolling store after every
// successful capture: keep the newest MaxCount unpinned artifacts, never
// touch pinned ones.
type Policy struct {
	// MaxCount is the number of unpinned artifacts to keep. Must be positive.
	MaxCount int

	// Pin exempts matching artifacts from eviction. Nil pins nothing.
	Pin PinPredicate
}

// PinNamePrefix returns a predicate pinning artifacts whose filename carries
// the given prefix. Renaming a capture to "keep-<name>" is how an operator
// marks it permanent.
func PinNamePrefix(prefix string) PinPredicate {
	return func(a Artifact) bool {
		return prefix != "" && strings.HasPrefix(a.Name(), prefix)
	}
}

const captureStampLayout = "20060102-150405"
