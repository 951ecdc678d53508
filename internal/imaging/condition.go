package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Intensity band, on the inverted grayscale crop, that is kept as text.
// The card renders its text in near-white; after inversion it lands in
// the darkest band while the level gauge, icons and background fall
// outside and are masked away. Empirically fixed, not adaptive.
const (
	textBandLow  = 0
	textBandHigh = 80
)

// Latch-on block proportions: the "Cost ##" chunk at the top-left of the
// stats panel spans just under the left third of the panel and about the
// top 15.5% of its height.
const (
	latchOnWidthRatio  = 0.3333
	latchOnHeightRatio = 0.155
)

// ConditionResult holds the conditioned region together with the
// intermediate images the transform passed through, in order. The
// intermediates exist only for diagnostics.
type ConditionResult struct {
	// Gray is the grayscale crop the conditioning started from.
	Gray image.Image

	// Inverted is the bitwise-inverted grayscale crop.
	Inverted image.Image

	// Mask is the final black-text-on-white bitmap handed to the
	// recognizer.
	Mask image.Image
}

// Condition normalizes one region crop into the black-on-white bitmap
// the recognizer expects.
//
// Fixed steps: grayscale, invert, keep only the darkest intensity band
// of the inverted image, and invert that mask so the surviving text is
// dark on light. The transform is purely deterministic; identical input
// yields an identical bitmap.
//
// A zero-size crop cannot be conditioned and returns an error; region
// validation upstream makes that unreachable in the normal pipeline.
func Condition(crop image.Image) (*ConditionResult, error) {
	bounds := crop.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("cannot condition empty %dx%d crop", bounds.Dx(), bounds.Dy())
	}

	gray := imaging.Grayscale(crop)
	inverted := imaging.Invert(gray)

	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	ib := inverted.Bounds()
	for y := 0; y < ib.Dy(); y++ {
		for x := 0; x < ib.Dx(); x++ {
			v := color.GrayModel.Convert(inverted.At(ib.Min.X+x, ib.Min.Y+y)).(color.Gray).Y
			if v >= textBandLow && v <= textBandHigh {
				// In the text band: render as black text.
				mask.SetGray(x, y, color.Gray{Y: 0})
			} else {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return &ConditionResult{Gray: gray, Inverted: inverted, Mask: mask}, nil
}

// AmplifyTopRow tiles the top-left label block of a conditioned stats
// mask twice to the right, tripling the apparent text density of the
// first row.
//
// Sparse cards leave most of the stats panel blank, which can keep the
// recognizer from segmenting the panel into lines at all. The "Cost ##"
// block at the top-left is present on every card and, after masking,
// everything to its right on the same row is empty, so two pasted copies
// anchor line detection without touching any other content.
func AmplifyTopRow(mask image.Image) image.Image {
	bounds := mask.Bounds()
	blockW := int(float64(bounds.Dx()) * latchOnWidthRatio)
	blockH := int(float64(bounds.Dy()) * latchOnHeightRatio)
	if blockW <= 0 || blockH <= 0 {
		return mask
	}

	block := imaging.Crop(mask, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+blockW, bounds.Min.Y+blockH))
	out := imaging.Paste(mask, block, image.Pt(blockW, 0))
	out = imaging.Paste(out, block, image.Pt(blockW*2, 0))
	return out
}

// CropBox crops a rectangle out of an image, failing on a degenerate
// rectangle instead of silently producing an empty image.
func CropBox(img image.Image, r image.Rectangle) (image.Image, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("crop region %v has no area", r)
	}
	return imaging.Crop(img, r), nil
}
