package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/mdchunk/internal/parser"
)

// Worker processes a single document job.
type Worker struct {
	chunker   *Chunker
	publisher *Publisher
	parseOpts parser.Options
	log       *slog.Logger
}

// NewWorker builds a worker. publisher may be nil, in which case jobs end
// after chunking.
func NewWorker(c *Chunker, publisher *Publisher, opts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		chunker:   c,
		publisher: publisher,
		parseOpts: opts,
		log:       log,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}
	job.setContentHash(ContentHashHex([]byte(tree.Text())))

	// Phase 1.5: Dedup check
	if w.publisher != nil {
		existing, found, err := w.publisher.FindDuplicate(ctx, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if found {
			log.Info("duplicate document, skipping", "existing_doc_id", existing)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Chunk and repair
	job.SetStatus(StatusChunking, "chunking")
	out, err := w.chunker.ChunkTree(tree, w.chunker.Config(job.MaxChunkSize))
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(fmt.Sprintf("chunk: %s", err))
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	job.SetOutput(out)
	log.Info("chunked document",
		"chunks", len(out.Chunks),
		"headers_moved", out.Report.Headers.Moved,
		"headers_merged", out.Report.Headers.Merged,
		"split", out.Report.Split.Split,
	)

	if len(out.Chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	if w.publisher == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Publish
	job.SetStatus(StatusPublishing, "publishing")
	stored, errs := w.publisher.Publish(ctx, DocumentMeta{
		DocID:       job.DocID,
		Filename:    job.Filename,
		Title:       out.Title,
		ContentHash: job.ContentHash,
		TotalChunks: len(out.Chunks),
		Metrics:     out.Metrics,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}, out.Chunks, job.IncrChunksPublished)
	for _, err := range errs {
		log.Error("publish failed", "error", err)
		job.AddError(err.Error())
	}
	log.Info("publish complete", "stored", stored, "total", len(out.Chunks))

	switch {
	case len(errs) > 0 && stored > 0:
		job.SetStatus(StatusPartial, "done")
	case len(errs) > 0:
		job.SetStatus(StatusFailed, "publishing")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}
