package ocr

import (
	"context"
	"image"
	"strings"
)

// Engine is the external recognition engine at its interface boundary:
// a conditioned image in, ordered text lines out. No retries, no caching,
// no interpretation of the text happens at this layer.
//
// Implementations must treat Recognize as a pure function of the image.
// Callers running extractions concurrently need an engine that is safe
// for concurrent use, or one engine per goroutine.
type Engine interface {
	// Recognize extracts the raw text lines from a conditioned image, in
	// top-to-bottom order as the engine segmented them.
	Recognize(ctx context.Context, img image.Image) ([]string, error)

	// Close releases any native resources held by the engine.
	Close() error
}

// SplitLines breaks an engine's raw text dump into its lines, keeping
// blank lines. The classifier relies on seeing the dump exactly as the
// engine segmented it.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
