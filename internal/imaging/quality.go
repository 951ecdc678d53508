package imaging

import (
	"image"
	"math"
)

// Sharpness scores how crisp a screenshot is, from 0.0 (flat) to 1.0.
//
// The score is the mean Sobel gradient magnitude over the luminance
// plane, normalized by the largest magnitude the operator can produce.
// It never gates the pipeline; it is reported with diagnostics so a
// human can tell a blurry resubmission-worthy screenshot apart from a
// recognizer failure on a sharp one.
func Sharpness(img image.Image) float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	lum := make([][]float64, height)
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			lum[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}

	sobelX := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	var total float64
	var count int
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					gx += lum[y+ky][x+kx] * sobelX[ky+1][kx+1]
					gy += lum[y+ky][x+kx] * sobelY[ky+1][kx+1]
				}
			}
			total += math.Sqrt(gx*gx + gy*gy)
			count++
		}
	}
	if count == 0 {
		return 0
	}

	// 4*sqrt(2) is the magnitude of a full-contrast edge under Sobel.
	score := (total / float64(count)) / (4 * math.Sqrt2)
	return math.Min(score, 1.0)
}
