package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultMaxDownloadBytes caps screenshot downloads when the caller does
// not supply a limit. Phone screenshots compress well under this.
const DefaultMaxDownloadBytes = 20 << 20

// LoadScreenshot decodes a screenshot from the local filesystem.
// PNG, JPEG, and GIF are supported.
func LoadScreenshot(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return img, nil
}

// FetchScreenshot downloads and decodes a screenshot from an HTTP URL.
//
// The response body is capped at maxBytes (DefaultMaxDownloadBytes when
// maxBytes <= 0). Error messages are deliberately terse: they may be
// echoed back to whoever submitted the URL, and must not leak request
// internals.
func FetchScreenshot(ctx context.Context, url string, client *http.Client, maxBytes int64) (image.Image, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownloadBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error while downloading image: %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while downloading image: %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error while downloading image: %s", url)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("error while decoding image: %s", url)
	}
	return img, nil
}

// SavePNG writes an image to disk as PNG. Used for diagnostic output.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// ResolveScreenshot loads a screenshot from either a local path or an
// HTTP(S) URL, picked by scheme prefix.
func ResolveScreenshot(ctx context.Context, source string, client *http.Client, maxBytes int64) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return FetchScreenshot(ctx, source, client, maxBytes)
	}
	return LoadScreenshot(source)
}

// ScreenshotCache provides thread-safe caching of decoded screenshots so
// repeated tool calls against the same source skip re-fetching.
//
// Screenshots are keyed by the exact source string (path or URL). Cached
// images remain in memory until Evict or Clear; long-running servers
// handling many screenshots should clear periodically.
type ScreenshotCache struct {
	mu       sync.RWMutex
	images   map[string]image.Image
	client   *http.Client
	maxBytes int64
}

// NewScreenshotCache creates an empty cache. The HTTP client and size
// cap apply to URL sources; nil and zero select safe defaults.
func NewScreenshotCache(client *http.Client, maxBytes int64) *ScreenshotCache {
	return &ScreenshotCache{
		images:   make(map[string]image.Image),
		client:   client,
		maxBytes: maxBytes,
	}
}

// Load returns the decoded screenshot for a path or URL, resolving and
// caching it on first use.
func (c *ScreenshotCache) Load(ctx context.Context, source string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[source]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := ResolveScreenshot(ctx, source, c.client, c.maxBytes)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[source] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes one source from the cache. Unknown sources are ignored.
func (c *ScreenshotCache) Evict(source string) {
	c.mu.Lock()
	delete(c.images, source)
	c.mu.Unlock()
}

// Clear drops every cached screenshot.
func (c *ScreenshotCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}
