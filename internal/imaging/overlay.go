package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
)

// Accent hues cycled through when outlining regions. Picked for contrast
// against both the dark card background and the white stats panel.
var regionAccents = []string{
	"#E64980", // pink
	"#4DABF7", // blue
	"#69DB7C", // green
	"#FFA94D", // orange
}

// DrawRegions returns a copy of the screenshot with each rectangle
// outlined in a distinct accent color. The input image is not modified.
//
// Saved alongside the diagnostic montage so a human can see exactly
// which areas the locator picked before blaming the recognizer.
func DrawRegions(img image.Image, regions ...image.Rectangle) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for i, r := range regions {
		accent := regionAccents[i%len(regionAccents)]
		c, err := colorful.Hex(accent)
		if err != nil {
			continue
		}
		cr, cg, cb := c.RGB255()
		drawOutline(out, r.Intersect(bounds), color.RGBA{R: cr, G: cg, B: cb, A: 255})
	}
	return out
}

// drawOutline draws a 2-pixel rectangle outline clipped to the image.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	for t := 0; t < 2; t++ {
		top := r.Min.Y + t
		bottom := r.Max.Y - 1 - t
		for x := r.Min.X; x < r.Max.X; x++ {
			if top < r.Max.Y {
				img.SetRGBA(x, top, c)
			}
			if bottom >= r.Min.Y {
				img.SetRGBA(x, bottom, c)
			}
		}
		left := r.Min.X + t
		right := r.Max.X - 1 - t
		for y := r.Min.Y; y < r.Max.Y; y++ {
			if left < r.Max.X {
				img.SetRGBA(left, y, c)
			}
			if right >= r.Min.X {
				img.SetRGBA(right, y, c)
			}
		}
	}
}
