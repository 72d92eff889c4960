package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(Config{Path: filepath.Join(t.TempDir(), "journal.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// TestJournal_RecordAndRecent tests the basic record/query round trip.
func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Loop: "tile", Index: "202406011000", Outcome: "stored", Path: "data/tiles/latest.png", SizeBytes: 1024, Duration: 300 * time.Millisecond, At: base},
		{Loop: "tile", Index: "202406011015", Outcome: "not_yet_published", Duration: 120 * time.Millisecond, At: base.Add(15 * time.Minute)},
		{Loop: "camera", Outcome: "skipped_closed", At: base.Add(20 * time.Minute)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, "tile", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(tile) = %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].Outcome != "not_yet_published" || got[1].Outcome != "stored" {
		t.Errorf("order = [%s, %s], want [not_yet_published, stored]", got[0].Outcome, got[1].Outcome)
	}
	if got[1].SizeBytes != 1024 || got[1].Duration != 300*time.Millisecond {
		t.Errorf("stored entry round trip = %+v", got[1])
	}

	all, err := j.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Recent(all) = %d entries, want 3", len(all))
	}
}

// TestJournal_LastSuccess tests the readiness query.
func TestJournal_LastSuccess(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if e, err := j.LastSuccess(ctx, "tile"); err != nil || e != nil {
		t.Fatalf("LastSuccess(empty) = %v, %v; want nil, nil", e, err)
	}

	j.Record(ctx, Entry{Loop: "tile", Index: "202406011000", Outcome: "stored", At: base})
	j.Record(ctx, Entry{Loop: "tile", Index: "202406011015", Outcome: "unavailable", At: base.Add(15 * time.Minute)})

	e, err := j.LastSuccess(ctx, "tile")
	if err != nil {
		t.Fatalf("LastSuccess: %v", err)
	}
	if e == nil || e.Index != "202406011000" {
		t.Errorf("LastSuccess = %+v, want index 202406011000", e)
	}
}

// TestJournal_Prune tests age-based journal pruning.
func TestJournal_Prune(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		j.Record(ctx, Entry{Loop: "tile", Outcome: "stored", At: base.Add(time.Duration(i) * time.Hour)})
	}

	deleted, err := j.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune deleted %d, want 2", deleted)
	}

	remaining, _ := j.Recent(ctx, "", 10)
	if len(remaining) != 3 {
		t.Errorf("remaining = %d entries, want 3", len(remaining))
	}
}

// TestJournal_RecordFillsTimestamp tests the zero-At default.
func TestJournal_RecordFillsTimestamp(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Record(ctx, Entry{Loop: "tile", Outcome: "stored"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, _ := j.Recent(ctx, "tile", 1)
	if len(got) != 1 || got[0].At.IsZero() {
		t.Errorf("recorded entry has zero timestamp: %+v", got)
	}
}

// TestOpen_CreatesParentDirectory tests database bootstrap under a fresh dir.
func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "journal.db")
	j, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	if err := j.Record(context.Background(), Entry{Loop: "tile", Outcome: "stored"}); err != nil {
		t.Errorf("Record after bootstrap: %v", err)
	}
}
