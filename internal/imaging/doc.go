// Package imaging provides the pixel-level plumbing of the extraction
// pipeline: screenshot loading, region conditioning, and the diagnostic
// image helpers.
//
// Conditioning turns a region crop into the black-text-on-white bitmap
// the recognizer expects (grayscale, invert, intensity band mask, invert
// again), and AmplifyTopRow applies the latch-on transform that tiles
// the top-left label block across sparse stats panels to anchor the
// recognizer's line segmentation. Every transform here is deterministic;
// byte-identical input produces byte-identical output.
//
// # Thread Safety
//
// ScreenshotCache is safe for concurrent use. The remaining functions
// are stateless and never mutate their input images.
//
// # Error Handling
//
// Loading returns errors for missing or undecodable files; URL fetch
// errors are deliberately terse because they may be surfaced to whoever
// submitted the URL. Conditioning only fails on an empty crop, which
// region validation upstream prevents.
package imaging
