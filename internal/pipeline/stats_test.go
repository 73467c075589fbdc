package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/mdchunk/internal/chunker"
)

func TestRepairStatsSnapshotPercentiles(t *testing.T) {
	stats := NewRepairStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, chunker.Report{})
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestRepairStatsSumsReports(t *testing.T) {
	stats := NewRepairStats(time.Hour)

	var r1 chunker.Report
	r1.Headers.Moved = 2
	r1.Headers.Merged = 1
	r1.Split.Split = 1
	r1.Split.Fragments = 3
	var r2 chunker.Report
	r2.Headers.Moved = 5
	r2.Headers.Unfixable = 1
	r2.Headers.BudgetExhausted = true

	stats.Record(time.Millisecond, r1)
	stats.Record(time.Millisecond, r2)

	snap := stats.Snapshot()
	if snap.HeadersMoved != 7 || snap.HeadersMerged != 1 || snap.Unfixable != 1 {
		t.Fatalf("unexpected header totals: %+v", snap)
	}
	if snap.BudgetExhausted != 1 {
		t.Fatalf("expected 1 exhausted run, got %d", snap.BudgetExhausted)
	}
	if snap.ChunksSplit != 1 || snap.Fragments != 3 {
		t.Fatalf("unexpected split totals: %+v", snap)
	}
}

func TestRepairStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewRepairStats(10 * time.Millisecond)
	stats.Record(100*time.Millisecond, chunker.Report{})
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, chunker.Report{})
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestRepairStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewRepairStats(time.Hour)
	stats.Record(-10*time.Millisecond, chunker.Report{})
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestRepairStatsNilIsNoop(t *testing.T) {
	var stats *RepairStats
	stats.Record(time.Second, chunker.Report{})
}
