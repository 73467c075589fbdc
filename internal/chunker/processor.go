package chunker

import (
	"log/slog"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// HeaderReport summarizes a PreventDanglingHeaders run.
type HeaderReport struct {
	Iterations      int  `json:"iterations"`
	Moved           int  `json:"moved"`
	Merged          int  `json:"merged"`
	Unfixable       int  `json:"unfixable"` // Headers left in place because no repair fit.
	Remaining       int  `json:"remaining"` // Dangling headers still present on return.
	BudgetExhausted bool `json:"budget_exhausted"`
}

// HeaderProcessor keeps headers attached to the content they introduce.
type HeaderProcessor struct {
	cfg Config
	log *slog.Logger
}

func NewHeaderProcessor(cfg Config, log *slog.Logger) (*HeaderProcessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HeaderProcessor{cfg: cfg, log: orDiscard(log)}, nil
}

// PreventDanglingHeaders repeatedly detects dangling headers and repairs the
// first one that can be repaired, re-scanning after every change because
// indices shift. At most MaxHeaderIterations repairs are made. Leftovers are
// logged and reported, never treated as errors.
//
// The input slice is not modified.
func (p *HeaderProcessor) PreventDanglingHeaders(chunks []chunk.Chunk) ([]chunk.Chunk, HeaderReport) {
	var report HeaderReport
	result := make([]chunk.Chunk, len(chunks))
	copy(result, chunks)
	if len(result) <= 1 {
		return result, report
	}

	warned := make(map[string]bool)
	for report.Iterations < MaxHeaderIterations {
		dangling := DetectDanglingHeaders(result)
		if len(dangling) == 0 {
			break
		}

		repaired := false
		for _, idx := range dangling {
			fix, err := FixDanglingHeader(result, idx, p.cfg.MaxChunkSize)
			if err != nil {
				p.log.Error("dangling header repair failed", "index", idx, "error", err)
				continue
			}
			if fix.Action == FixSkipped {
				key := result[idx].Metadata.ChunkID() + "\x00" + fix.Header
				if !warned[key] {
					warned[key] = true
					report.Unfixable++
					p.log.Warn("cannot fix dangling header without exceeding size limit",
						"chunk_id", chunkIDOrUnknown(result[idx]),
						"header", truncate(fix.Header, 50),
						"max_chunk_size", p.cfg.MaxChunkSize,
					)
				}
				continue
			}

			if fix.Action == FixMoved {
				report.Moved++
			} else {
				report.Merged++
			}
			result = fix.Chunks
			repaired = true
			break
		}
		if !repaired {
			break
		}
		report.Iterations++
	}

	report.Remaining = len(DetectDanglingHeaders(result))
	if report.Remaining > 0 && report.Iterations >= MaxHeaderIterations {
		report.BudgetExhausted = true
		p.log.Warn("reached maximum iterations for dangling header fixes",
			"max_iterations", MaxHeaderIterations,
			"remaining", report.Remaining,
		)
	}
	return result, report
}

// UpdateHeaderPaths flags every repaired chunk so that header_path metadata
// is recomputed downstream. It does not compute paths itself.
func (p *HeaderProcessor) UpdateHeaderPaths(chunks []chunk.Chunk) []chunk.Chunk {
	out := make([]chunk.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Metadata.DanglingHeaderFixed() {
			c = c.WithMetadata(c.Metadata.WithHeaderPathNeedsUpdate(true))
		}
		out[i] = c
	}
	return out
}

func chunkIDOrUnknown(c chunk.Chunk) string {
	if id := c.Metadata.ChunkID(); id != "" {
		return id
	}
	return "unknown"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
