package scheduler

import (
	"context"
	"log/slog"
	"os"
	"time"

	"stratus-hq/skywatch/pkg/acquire"
	"stratus-hq/skywatch/pkg/notify"
	"stratus-hq/skywatch/pkg/store"
	"stratus-hq/skywatch/pkg/timealign"
)

// TileCycle builds the cycle for the remote-tile loop: fetch the tile for
// the aligned index, then atomically replace the latest snapshot. The store
// is only touched on validated success, so a failed or empty fetch can never
// disturb a good prior snapshot.
func TileCycle(fetcher *acquire.TileFetcher, latest *store.Latest) CycleFunc {
	return func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
		data, err := fetcher.Fetch(ctx, idx)
		if err != nil {
			return CycleResult{}, err
		}
		if err := latest.Put(data); err != nil {
			return CycleResult{}, err
		}
		return CycleResult{
			Path: latest.Path(),
			Size: int64(len(data)),
		}, nil
	}
}

// Capturer grabs one frame into the given output path. *acquire.CommandCapturer
// is the production implementation.
type Capturer interface {
	Capture(ctx context.Context, outputPath string) error
}

// CameraCycle builds the cycle for the local-camera loop: capture a frame to
// a staging file, ingest it into the rolling store under its capture instant,
// enforce retention, and announce the new artifact. Event emission is
// advisory; its failure never fails the cycle.
func CameraCycle(capturer Capturer, rolling *store.Rolling, emitter notify.Emitter) CycleFunc {
	logger := slog.Default().With("component", "scheduler.camera")
	if emitter == nil {
		emitter = notify.Nop{}
	}

	return func(ctx context.Context, idx timealign.Index) (CycleResult, error) {
		staging, err := os.CreateTemp(rolling.Dir(), ".capture-tmp-*")
		if err != nil {
			return CycleResult{}, store.NewStorageError("put_rolling", rolling.Dir(), err)
		}
		stagingPath := staging.Name()
		staging.Close()

		capturedAt := time.Now().UTC().Truncate(time.Second)
		if err := capturer.Capture(ctx, stagingPath); err != nil {
			os.Remove(stagingPath)
			return CycleResult{}, err
		}

		path, err := rolling.Ingest(stagingPath, capturedAt)
		if err != nil {
			return CycleResult{}, err
		}
		info, statErr := os.Stat(path)
		var size int64
		if statErr == nil {
			size = info.Size()
		}

		evicted, err := rolling.EnforceRetention()
		if err != nil {
			// Best-effort: the artifact is safely stored, the next pass
			// retries whatever could not be evicted.
			logger.Warn("retention pass incomplete", "error", err)
		}

		if err := emitter.Emit(ctx, notify.NewEvent(path, capturedAt)); err != nil {
			logger.Warn("artifact event not delivered", "path", path, "error", err)
		}

		return CycleResult{
			Path:       path,
			Size:       size,
			CapturedAt: capturedAt,
			Evicted:    len(evicted),
		}, nil
	}
}
