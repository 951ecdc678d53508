package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig selects how the Tesseract engine is set up.
type TesseractConfig struct {
	// Language is the Tesseract language code, e.g. "eng". The matching
	// traineddata must be installed. Empty defaults to "eng".
	Language string

	// TessdataPrefix overrides the traineddata directory when set.
	TessdataPrefix string

	// Whitelist restricts recognition to the given characters when set.
	Whitelist string
}

// Tesseract wraps a gosseract client behind the Engine interface.
//
// A gosseract client is not safe for concurrent use, so Recognize is
// serialized with a mutex. Callers wanting parallel extractions should
// pool engines instead of sharing one.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a Tesseract-backed engine.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	client := gosseract.NewClient()

	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	return &Tesseract{client: client}, nil
}

// Recognize runs Tesseract over an in-memory image and returns its raw
// text lines.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for recognition: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}

	return SplitLines(text), nil
}

// Close releases the underlying Tesseract client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
