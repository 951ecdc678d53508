// Package detection locates the regions of interest inside a vision card
// screenshot.
//
// A card screenshot splits into a left half carrying the stats panel and
// name band, and a right half carrying artwork. Locate finds the stats
// panel as the largest bright connected component of the thresholded left
// half, then derives the name band from it at fixed proportional offsets.
// The layout is resolution independent: every derived coordinate is a
// ratio of the located panel, never an absolute pixel count.
//
// # Coordinate System
//
// All boxes use 0-based pixel coordinates relative to the full
// screenshot, with (0,0) at the top-left corner, X increasing rightward
// and Y increasing downward.
//
// # Error Handling
//
// Locate fails with ErrNoRegionFound when the thresholded image contains
// no bright pixels at all, and with ErrInvalidRegion when a located or
// derived box has no usable area. Both are fatal to the extraction that
// requested them; there is nothing to recognize without a region.
package detection
