package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawRegions(t *testing.T) {
	img := solidImage(100, 100, color.Black)
	region := image.Rect(20, 20, 60, 60)

	out := DrawRegions(img, region)

	// Outline pixels take the accent color.
	r, g, b, _ := out.At(20, 40).RGBA()
	if r == 0 && g == 0 && b == 0 {
		t.Error("left outline edge not drawn")
	}
	r, g, b, _ = out.At(40, 20).RGBA()
	if r == 0 && g == 0 && b == 0 {
		t.Error("top outline edge not drawn")
	}

	// Interior stays untouched.
	r, g, b, _ = out.At(40, 40).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Error("region interior was modified")
	}

	// The source image is never mutated.
	r, g, b, _ = img.At(20, 40).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Error("DrawRegions mutated its input")
	}
}

func TestDrawRegions_DistinctAccents(t *testing.T) {
	img := solidImage(100, 100, color.Black)
	out := DrawRegions(img, image.Rect(5, 5, 30, 30), image.Rect(50, 50, 90, 90))

	r1, g1, b1, _ := out.At(5, 15).RGBA()
	r2, g2, b2, _ := out.At(50, 70).RGBA()
	if r1 == r2 && g1 == g2 && b1 == b2 {
		t.Error("expected different accents for different regions")
	}
}

func TestDrawRegions_ClipsToImage(t *testing.T) {
	img := solidImage(50, 50, color.Black)
	// A region partially outside the image must not panic.
	out := DrawRegions(img, image.Rect(40, 40, 120, 120))
	if out == nil {
		t.Fatal("expected image")
	}
}
