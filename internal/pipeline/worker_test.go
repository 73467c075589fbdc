package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/mdchunk/internal/chunker"
	"github.com/dgallion1/mdchunk/internal/parser"
)

const guide = "# Guide\n\nIntro paragraph.\n\n#### Setup\n\n```sh\nmake install\n```\n"

func newTestChunker(t *testing.T) *Chunker {
	t.Helper()
	c, err := NewChunker(chunker.DefaultConfig(), NewRepairStats(0), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestWorker_ProcessWithoutPublisher(t *testing.T) {
	c := newTestChunker(t)
	w := NewWorker(c, nil, parser.Options{}, discardLogger())
	job := NewJob("guide.md", "", []byte(guide))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Title != "" || job.Output().Title != "guide" {
		t.Errorf("expected title from filename, got %q", job.Output().Title)
	}
	if job.FileData() != nil {
		t.Error("expected file data released after parsing")
	}
	if snap.ContentHash == "" {
		t.Error("expected content hash")
	}

	chunks := job.Chunks()
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	var setup string
	for i, ch := range chunks {
		if ch.Metadata.ChunkIndex() != i {
			t.Errorf("chunk %d has index %d", i, ch.Metadata.ChunkIndex())
		}
		if strings.Contains(ch.Content, "make install") {
			setup = ch.Content
		}
	}
	if !strings.HasPrefix(setup, "#### Setup") {
		t.Errorf("expected the setup header to travel with its code block, got %q", setup)
	}
	if c.Stats().Snapshot().Count != 1 {
		t.Errorf("expected one recorded repair run")
	}
}

func TestWorker_ProcessPublishesAndSkipsDuplicates(t *testing.T) {
	store := newMemStore()
	w := NewWorker(newTestChunker(t), newTestPublisher(store), parser.Options{}, discardLogger())

	first := NewJob("guide.md", "Guide", []byte(guide))
	w.Process(context.Background(), first)

	snap := first.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.ChunksPublished != snap.Progress.TotalChunks {
		t.Errorf("expected all %d chunks published, got %d", snap.Progress.TotalChunks, snap.Progress.ChunksPublished)
	}
	if !store.has("documents/" + first.DocID + "/meta") {
		t.Error("expected document meta")
	}

	second := NewJob("copy.md", "", []byte(guide))
	w.Process(context.Background(), second)
	if got := second.Snapshot().Status; got != StatusDupSkipped {
		t.Errorf("expected duplicate_skipped, got %q", got)
	}
}

func TestWorker_ProcessPartialPublish(t *testing.T) {
	store := newMemStore()
	w := NewWorker(newTestChunker(t), newTestPublisher(store), parser.Options{}, discardLogger())
	job := NewJob("guide.md", "", []byte("# A\n\nalpha\n\n# B\n\nbeta\n"))
	key := chunkKey(job.DocID, 1)
	store.fail[key] = []error{rejected(key)}

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("expected partial, got %q", snap.Status)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected one error, got %v", snap.Progress.Errors)
	}
}

func TestWorker_ProcessHonorsJobChunkSize(t *testing.T) {
	w := NewWorker(newTestChunker(t), nil, parser.Options{}, discardLogger())
	body := strings.Repeat("Sentence number one is here. ", 20)
	job := NewJob("long.md", "", []byte("# Long\n\n"+body+"\n"))
	job.MaxChunkSize = 200

	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusCompleted {
		t.Fatalf("expected completed, got %q", got)
	}
	chunks := job.Chunks()
	if len(chunks) < 2 {
		t.Fatalf("expected the body to be split, got %d chunks", len(chunks))
	}
	for _, ch := range chunks {
		if !strings.HasPrefix(ch.Content, "# Long") {
			t.Errorf("expected every fragment to repeat the header, got %q", ch.Content)
		}
	}
}

func TestWorker_ProcessFailures(t *testing.T) {
	w := NewWorker(newTestChunker(t), nil, parser.Options{}, discardLogger())

	unsupported := NewJob("image.png", "", []byte("x"))
	w.Process(context.Background(), unsupported)
	if got := unsupported.Snapshot(); got.Status != StatusFailed || got.Phase != "parsing" {
		t.Errorf("expected failed parsing, got %q/%q", got.Status, got.Phase)
	}

	empty := NewJob("empty.md", "", []byte("\n\n"))
	w.Process(context.Background(), empty)
	if got := empty.Snapshot(); got.Status != StatusFailed || got.Phase != "chunking" {
		t.Errorf("expected failed chunking, got %q/%q", got.Status, got.Phase)
	}
}

func TestChunker_ConfigOverride(t *testing.T) {
	c := newTestChunker(t)

	if got := c.Config(0); got != chunker.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", got)
	}
	got := c.Config(100)
	if got.MaxChunkSize != 100 || got.MinChunkSize != 100 {
		t.Errorf("expected max=min=100, got %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("override should validate: %v", err)
	}
}
