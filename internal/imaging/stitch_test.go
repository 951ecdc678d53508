package imaging

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestStitch(t *testing.T) {
	a := solidImage(10, 20, color.RGBA{R: 255, A: 255})
	b := solidImage(15, 30, color.RGBA{G: 255, A: 255})
	c := solidImage(5, 10, color.RGBA{B: 255, A: 255})

	out := Stitch([]image.Image{a, b, c})

	bounds := out.Bounds()
	if bounds.Dx() != 30 || bounds.Dy() != 30 {
		t.Fatalf("stitched size = %dx%d, want 30x30", bounds.Dx(), bounds.Dy())
	}

	// Each input pastes at the running width offset, top aligned.
	r, _, _, _ := out.At(5, 5).RGBA()
	if r>>8 != 255 {
		t.Error("first image not at left edge")
	}
	_, g, _, _ := out.At(12, 25).RGBA()
	if g>>8 != 255 {
		t.Error("second image not after the first")
	}
	_, _, bl, _ := out.At(27, 5).RGBA()
	if bl>>8 != 255 {
		t.Error("third image not after the second")
	}

	// Below a short image the canvas stays black.
	r, g, bl, _ = out.At(27, 25).RGBA()
	if r != 0 || g != 0 || bl != 0 {
		t.Error("canvas below short image should be black")
	}
}

func TestStitch_SkipsNil(t *testing.T) {
	a := solidImage(10, 10, color.White)
	out := Stitch([]image.Image{nil, a, nil})
	if b := out.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("stitched size = %dx%d, want 10x10", b.Dx(), b.Dy())
	}
}

func TestStitch_Empty(t *testing.T) {
	out := Stitch(nil)
	if out == nil {
		t.Fatal("expected non-nil canvas for empty input")
	}
}
