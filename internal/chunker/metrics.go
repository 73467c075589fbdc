package chunker

import (
	"math"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// Metrics summarizes a chunk sequence for quality monitoring.
type Metrics struct {
	TotalChunks     int     `json:"total_chunks"`
	AvgChunkSize    float64 `json:"avg_chunk_size"`
	StdDevSize      float64 `json:"std_dev_size"`
	MinSize         int     `json:"min_size"`
	MaxSize         int     `json:"max_size"`
	UndersizeCount  int     `json:"undersize_count"`
	OversizeCount   int     `json:"oversize_count"`
	AllowedOversize int     `json:"allowed_oversize"`
	EstimatedTokens int     `json:"estimated_tokens"`
}

// ComputeMetrics measures chunk sizes in characters. Chunks below minSize
// count as undersize and chunks above maxSize as oversize; a non-positive
// bound disables that count.
func ComputeMetrics(chunks []chunk.Chunk, minSize, maxSize int) Metrics {
	m := Metrics{TotalChunks: len(chunks)}
	if len(chunks) == 0 {
		return m
	}

	sizes := make([]int, len(chunks))
	total := 0
	m.MinSize = math.MaxInt
	for i, c := range chunks {
		n := c.Size()
		sizes[i] = n
		total += n
		m.MinSize = min(m.MinSize, n)
		m.MaxSize = max(m.MaxSize, n)
		m.EstimatedTokens += EstimateTokens(c.Content)

		if minSize > 0 && n < minSize {
			m.UndersizeCount++
		}
		if maxSize > 0 && n > maxSize {
			m.OversizeCount++
			if c.Metadata.AllowOversize() {
				m.AllowedOversize++
			}
		}
	}

	m.AvgChunkSize = float64(total) / float64(len(chunks))
	var sq float64
	for _, n := range sizes {
		d := float64(n) - m.AvgChunkSize
		sq += d * d
	}
	m.StdDevSize = math.Sqrt(sq / float64(len(sizes)))
	return m
}
