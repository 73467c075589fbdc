// Command mdchunk chunks a document, or repairs an existing chunk sequence,
// and prints the result as JSON.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/mdchunk/internal/chunk"
	"github.com/dgallion1/mdchunk/internal/chunker"
	"github.com/dgallion1/mdchunk/internal/parser"
	"github.com/dgallion1/mdchunk/internal/pipeline"
)

var (
	maxSize   = flag.Int("max", chunker.DefaultConfig().MaxChunkSize, "Maximum chunk size in characters")
	minSize   = flag.Int("min", chunker.DefaultConfig().MinChunkSize, "Minimum chunk size used for metrics")
	repair    = flag.Bool("repair", false, "Read a JSON array of chunks and run only the repair stages")
	validate  = flag.Bool("validate", false, "Print invariant violations to stderr and exit 1 if any")
	pdftotext = flag.Bool("pdftotext", true, "Fall back to pdftotext for PDFs without extractable text")
	verbose   = flag.Bool("v", false, "Log repair decisions to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: mdchunk [flags] <file | ->\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(flag.Arg(0), log); err != nil {
		fmt.Fprintln(os.Stderr, "mdchunk:", err)
		os.Exit(1)
	}
}

func run(path string, log *slog.Logger) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	cfg := chunker.Config{MaxChunkSize: *maxSize, MinChunkSize: min(*minSize, *maxSize)}
	c, err := pipeline.NewChunker(cfg, nil, log)
	if err != nil {
		return err
	}

	var out *pipeline.Output
	if *repair {
		var chunks []chunk.Chunk
		if err := json.Unmarshal(data, &chunks); err != nil {
			return fmt.Errorf("decode chunks: %w", err)
		}
		out, err = c.Repair(chunks, cfg)
	} else {
		if path == "-" {
			return fmt.Errorf("reading a document from stdin needs -repair")
		}
		p, perr := parser.ForFile(path, parser.Options{FallbackPdftotext: *pdftotext})
		if perr != nil {
			return perr
		}
		tree, perr := p.Parse(bytes.NewReader(data), path)
		if perr != nil {
			return fmt.Errorf("parse: %w", perr)
		}
		out, err = c.ChunkTree(tree, cfg)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if *validate {
		violations := chunker.ValidateChunks(out.Chunks, cfg.MaxChunkSize)
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v.String())
		}
		if len(violations) > 0 {
			return fmt.Errorf("%d invariant violations", len(violations))
		}
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
