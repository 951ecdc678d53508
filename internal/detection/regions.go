package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Fatal location errors. Either one means there is nothing usable to
// recognize and the extraction must stop before any OCR runs.
var (
	// ErrNoRegionFound reports that the thresholded screenshot contains no
	// bright component at all (blank or fully uniform input).
	ErrNoRegionFound = errors.New("no card region found in screenshot")

	// ErrInvalidRegion reports a located or derived box with no usable
	// area.
	ErrInvalidRegion = errors.New("invalid card region")
)

// Box is a rectangular region of the screenshot in pixel coordinates,
// with (X, Y) as the top-left corner.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box area in square pixels.
func (b Box) Area() int {
	return b.Width * b.Height
}

// Empty reports whether the box has no usable area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Rect converts the box to a standard image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// LocateResult carries the two regions of interest found in a screenshot.
type LocateResult struct {
	// Stats is the stats panel: the largest bright component in the left
	// half of the screenshot.
	Stats Box `json:"stats"`

	// Info is the band above the stats panel holding the card name,
	// derived from Stats at fixed proportional offsets.
	Info Box `json:"info"`
}

// Stages retains the intermediate images produced while locating regions.
// They are kept only when the caller wants diagnostics; the pipeline
// itself never reads them back.
type Stages struct {
	Gray        image.Image
	Blurred     image.Image
	Thresholded image.Image
}

// Locate finds the stats panel and the derived info band in a screenshot.
//
// The right half of the screenshot is always artwork and is dropped
// before analysis. The left half is grayscaled, blurred, and thresholded,
// then the bright pixels are grouped into 8-connected components; the
// component with the largest bounding box becomes the stats panel.
//
// The info band is derived from the stats panel: the card name is
// vertically anchored to the top of the card, the rarity logo occupies a
// fixed ~18% of the panel width on the left, and long names can overflow
// the panel out to the center of the screen. All returned coordinates are
// relative to the full screenshot.
//
// Returns ErrNoRegionFound when the thresholded image has no bright
// component, and ErrInvalidRegion when the derived info band has no
// usable area (the panel sits at the very top of the screenshot).
func Locate(img image.Image) (*LocateResult, *Stages, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 2 || height < 1 {
		return nil, nil, fmt.Errorf("%w: screenshot is %dx%d", ErrInvalidRegion, width, height)
	}

	left := imaging.Crop(img, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+width/2, bounds.Max.Y))
	gray := imaging.Grayscale(left)
	blurred := blur.Gaussian(gray, 2.0)
	thresholded := segment.Threshold(blurred, 70)

	stats, ok := largestComponent(thresholded)
	if !ok {
		return nil, nil, ErrNoRegionFound
	}

	info := Box{
		X: stats.X + int(0.18*float64(stats.Width)),
		Y: int(0.33 * float64(stats.Y)),
	}
	info.Width = width/2 - info.X
	info.Height = int(0.67 * float64(stats.Y))
	if stats.Empty() {
		return nil, nil, fmt.Errorf("%w: stats panel %dx%d", ErrInvalidRegion, stats.Width, stats.Height)
	}
	if info.Empty() {
		return nil, nil, fmt.Errorf("%w: info band %dx%d", ErrInvalidRegion, info.Width, info.Height)
	}

	stages := &Stages{Gray: gray, Blurred: blurred, Thresholded: thresholded}
	return &LocateResult{Stats: stats, Info: info}, stages, nil
}

// largestComponent groups the white pixels of a binary image into
// 8-connected components and returns the bounding box with the largest
// area. The second return is false when the image has no white pixel.
func largestComponent(bin *image.Gray) (Box, bool) {
	bounds := bin.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	visited := make([]bool, width*height)
	white := func(x, y int) bool {
		return bin.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y >= 128
	}

	var best Box
	found := false

	for sy := 0; sy < height; sy++ {
		for sx := 0; sx < width; sx++ {
			if visited[sy*width+sx] || !white(sx, sy) {
				continue
			}

			// Stack-based flood fill; recursion overflows on large panels.
			minX, minY, maxX, maxY := sx, sy, sx, sy
			stack := []image.Point{{X: sx, Y: sy}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
					continue
				}
				if visited[p.Y*width+p.X] || !white(p.X, p.Y) {
					continue
				}
				visited[p.Y*width+p.X] = true

				if p.X < minX {
					minX = p.X
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.Y > maxY {
					maxY = p.Y
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
					}
				}
			}

			box := Box{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
			if !found || box.Area() > best.Area() {
				best = box
				found = true
			}
		}
	}

	return best, found
}
