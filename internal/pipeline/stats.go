package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/mdchunk/internal/chunker"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	report     chunker.Report
}

// StatsSnapshot aggregates the repair runs inside the rolling window.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`

	HeadersMoved    int `json:"headers_moved"`
	HeadersMerged   int `json:"headers_merged"`
	Unfixable       int `json:"unfixable"`
	BudgetExhausted int `json:"budget_exhausted"`
	ChunksSplit     int `json:"chunks_split"`
	Fragments       int `json:"fragments"`
}

// RepairStats tracks recent repair runs within a rolling window.
type RepairStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewRepairStats(maxAge time.Duration) *RepairStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &RepairStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one repair run. A nil receiver is a no-op.
func (s *RepairStats) Record(d time.Duration, report chunker.Report) {
	if s == nil {
		return
	}
	durationMs := d.Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
		report:     report,
	})
}

func (s *RepairStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	var snap StatsSnapshot
	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs

		snap.HeadersMoved += sm.report.Headers.Moved
		snap.HeadersMerged += sm.report.Headers.Merged
		snap.Unfixable += sm.report.Headers.Unfixable
		if sm.report.Headers.BudgetExhausted {
			snap.BudgetExhausted++
		}
		snap.ChunksSplit += sm.report.Split.Split
		snap.Fragments += sm.report.Split.Fragments
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *RepairStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile interpolates linearly between the closest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
