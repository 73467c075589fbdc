package chunker

import (
	"log/slog"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// SplitReport summarizes a SplitOversizeSections run.
type SplitReport struct {
	Split          int `json:"split"`           // Oversize chunks replaced by fragments.
	Fragments      int `json:"fragments"`       // Fragments produced.
	MarkedOversize int `json:"marked_oversize"` // Chunks or fragments accepted as oversize.
}

// SectionSplitter breaks oversize prose and list chunks into fragments that
// repeat their header stack. It must run after HeaderProcessor so headers are
// already attached to the right chunk.
type SectionSplitter struct {
	cfg Config
	log *slog.Logger
}

func NewSectionSplitter(cfg Config, log *slog.Logger) (*SectionSplitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SectionSplitter{cfg: cfg, log: orDiscard(log)}, nil
}

// SplitOversizeSections returns a new slice where every oversize, non-atomic,
// unprotected chunk is replaced in place by its fragments.
func (s *SectionSplitter) SplitOversizeSections(chunks []chunk.Chunk) ([]chunk.Chunk, SplitReport) {
	var report SplitReport
	out := make([]chunk.Chunk, 0, len(chunks))

	for _, c := range chunks {
		if !s.needsSplitting(c) {
			out = append(out, c)
			continue
		}

		stack, body := ExtractHeaderStack(c.Content)
		segments := Segment(body)
		if len(segments) <= 1 {
			report.MarkedOversize++
			s.log.Debug("oversize chunk cannot be segmented",
				"chunk_id", chunkIDOrUnknown(c),
				"size", c.Size(),
			)
			out = append(out, c.WithMetadata(c.Metadata.WithOversize(chunk.ReasonListItemIntegrity)))
			continue
		}

		fragments := Pack(c, stack, segments, s.cfg.MaxChunkSize)
		report.Split++
		report.Fragments += len(fragments)
		for _, f := range fragments {
			if f.Metadata.AllowOversize() {
				report.MarkedOversize++
			}
		}
		s.log.Debug("split oversize chunk",
			"chunk_id", chunkIDOrUnknown(c),
			"size", c.Size(),
			"segments", len(segments),
			"fragments", len(fragments),
		)
		out = append(out, fragments...)
	}
	return out, report
}

func (s *SectionSplitter) needsSplitting(c chunk.Chunk) bool {
	if c.Size() <= s.cfg.MaxChunkSize {
		return false
	}
	return !IsAtomic(c) && !IsProtected(c)
}
