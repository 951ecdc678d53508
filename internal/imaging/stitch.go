package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Stitch concatenates images horizontally onto one black canvas, each
// aligned to the top edge. The canvas is as wide as the sum of the
// widths and as tall as the tallest input.
//
// Used to merge the intermediate conditioning images into a single
// diagnostic strip; the stage order is the paste order.
func Stitch(images []image.Image) image.Image {
	totalWidth := 0
	maxHeight := 0
	for _, img := range images {
		if img == nil {
			continue
		}
		b := img.Bounds()
		totalWidth += b.Dx()
		if b.Dy() > maxHeight {
			maxHeight = b.Dy()
		}
	}
	if totalWidth == 0 || maxHeight == 0 {
		return imaging.New(1, 1, color.NRGBA{A: 255})
	}

	canvas := imaging.New(totalWidth, maxHeight, color.NRGBA{A: 255})
	leftPad := 0
	for _, img := range images {
		if img == nil {
			continue
		}
		canvas = imaging.Paste(canvas, img, image.Pt(leftPad, 0))
		leftPad += img.Bounds().Dx()
	}
	return canvas
}
