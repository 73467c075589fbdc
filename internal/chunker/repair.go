package chunker

import (
	"log/slog"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// Report combines the diagnostics of both repair stages.
type Report struct {
	Headers HeaderReport `json:"headers"`
	Split   SplitReport  `json:"split"`
}

// Result is the repaired sequence plus what was done to it.
type Result struct {
	Chunks []chunk.Chunk `json:"chunks"`
	Report Report        `json:"report"`
}

// Repair runs the full repair pipeline: dangling-header prevention, header
// path flagging, then oversize splitting. Order is preserved throughout.
func Repair(chunks []chunk.Chunk, cfg Config, log *slog.Logger) (Result, error) {
	hp, err := NewHeaderProcessor(cfg, log)
	if err != nil {
		return Result{}, err
	}
	ss, err := NewSectionSplitter(cfg, log)
	if err != nil {
		return Result{}, err
	}

	var res Result
	repaired, hr := hp.PreventDanglingHeaders(chunks)
	repaired = hp.UpdateHeaderPaths(repaired)
	res.Chunks, res.Report.Split = ss.SplitOversizeSections(repaired)
	res.Report.Headers = hr
	return res, nil
}
