package pipeline

import (
	"log/slog"
	"time"

	"github.com/dgallion1/mdchunk/internal/chunk"
	"github.com/dgallion1/mdchunk/internal/chunker"
	"github.com/dgallion1/mdchunk/internal/doctree"
)

// Output is a finished chunk sequence with its diagnostics.
type Output struct {
	Title   string          `json:"title,omitempty"`
	Chunks  []chunk.Chunk   `json:"chunks"`
	Report  chunker.Report  `json:"report"`
	Metrics chunker.Metrics `json:"metrics"`
}

// Chunker runs structural chunking, repair and finalization with the
// service-wide limits, recording every repair run in stats.
type Chunker struct {
	cfg   chunker.Config
	stats *RepairStats
	log   *slog.Logger
}

func NewChunker(cfg chunker.Config, stats *RepairStats, log *slog.Logger) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Chunker{cfg: cfg, stats: stats, log: log}, nil
}

// Config returns the service config with MaxChunkSize replaced by
// maxChunkSize when positive. MinChunkSize is lowered to fit if needed.
func (c *Chunker) Config(maxChunkSize int) chunker.Config {
	cfg := c.cfg
	if maxChunkSize > 0 {
		cfg.MaxChunkSize = maxChunkSize
		cfg.MinChunkSize = min(cfg.MinChunkSize, maxChunkSize)
	}
	return cfg
}

// Stats exposes the rolling repair statistics.
func (c *Chunker) Stats() *RepairStats {
	return c.stats
}

// ChunkTree turns a parsed document into a repaired, finalized chunk sequence.
func (c *Chunker) ChunkTree(tree *doctree.DocTree, cfg chunker.Config) (*Output, error) {
	out, err := c.Repair(chunker.ChunkTree(tree, cfg), cfg)
	if err != nil {
		return nil, err
	}
	out.Title = tree.Title
	return out, nil
}

// Repair runs only the repair and finalization stages on chunks produced
// elsewhere.
func (c *Chunker) Repair(chunks []chunk.Chunk, cfg chunker.Config) (*Output, error) {
	start := time.Now()
	res, err := chunker.Repair(chunks, cfg, c.log)
	if err != nil {
		return nil, err
	}
	c.stats.Record(time.Since(start), res.Report)

	final := chunker.Finalize(res.Chunks)
	if v := chunker.ValidateChunks(final, cfg.MaxChunkSize); len(v) > 0 {
		c.log.Debug("chunk sequence has residual violations", "count", len(v), "first", v[0].String())
	}
	return &Output{
		Chunks:  final,
		Report:  res.Report,
		Metrics: chunker.ComputeMetrics(final, cfg.MinChunkSize, cfg.MaxChunkSize),
	}, nil
}
