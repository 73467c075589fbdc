package chunker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// MaxHeaderIterations bounds the dangling-header fix-point loop.
const MaxHeaderIterations = 5

var (
	ErrInvalidMaxChunkSize = errors.New("max chunk size must be positive")
	ErrIndexOutOfRange     = errors.New("chunk index out of range")
)

// Config controls chunking and repair. Sizes are in characters.
type Config struct {
	MaxChunkSize int // Hard size budget for non-atomic chunks.
	MinChunkSize int // Chunks below this are reported as undersize in Metrics.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize: 4096,
		MinChunkSize: 512,
	}
}

// Validate rejects configurations the repair stages cannot work with.
func (c Config) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxChunkSize, c.MaxChunkSize)
	}
	return nil
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
