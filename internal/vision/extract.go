package vision

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/wotvtools/cardscan/internal/detection"
	"github.com/wotvtools/cardscan/internal/imaging"
	"github.com/wotvtools/cardscan/internal/ocr"
)

// Options selects per-extraction behavior.
type Options struct {
	// Diagnostics retains every intermediate image, the raw recognition
	// text, the located regions, and a sharpness score on the result.
	Diagnostics bool
}

// Diagnostics carries the intermediate artifacts of one extraction, in
// pipeline order. Populated only when Options.Diagnostics was set.
type Diagnostics struct {
	// Regions are the boxes the locator picked.
	Regions detection.LocateResult

	// Shared locate stages over the left half of the screenshot.
	Gray        image.Image
	Blurred     image.Image
	Thresholded image.Image

	// Per-region conditioning stages. The conditioned stats image
	// includes the latch-on tiling, exactly as handed to the recognizer.
	StatsGray        image.Image
	StatsInverted    image.Image
	StatsConditioned image.Image
	InfoGray         image.Image
	InfoInverted     image.Image
	InfoConditioned  image.Image

	// Raw pre-classification text from both regions.
	StatsText []string
	InfoText  []string

	// Sharpness is the screenshot quality score in [0, 1].
	Sharpness float64
}

// Montage concatenates the nine intermediate images side by side into
// one diagnostic strip, in pipeline order.
func (d *Diagnostics) Montage() image.Image {
	return imaging.Stitch([]image.Image{
		d.Gray, d.Blurred, d.Thresholded,
		d.StatsGray, d.StatsInverted, d.StatsConditioned,
		d.InfoGray, d.InfoInverted, d.InfoConditioned,
	})
}

// Extract runs the full screenshot-to-card pipeline: locate the stats
// panel and name band, condition both crops, recognize them, and parse
// the raw text into a structured card.
//
// No error escapes: every fatal condition is converted into a message on
// the result and Success is false. The partially populated card is
// always returned, so a caller can still show whatever name and stats
// were recovered before the failing stage.
//
// Extract is a pure function of its input image. It holds no state
// between calls; callers may run one extraction per goroutine as long
// as the engine is safe for concurrent use or pooled.
func Extract(ctx context.Context, engine ocr.Engine, img image.Image, opts Options) *ExtractionResult {
	result := &ExtractionResult{}
	var diag *Diagnostics
	if opts.Diagnostics {
		diag = &Diagnostics{Sharpness: imaging.Sharpness(img)}
		result.Diagnostics = diag
	}

	regions, stages, err := detection.Locate(img)
	if err != nil {
		return result.finish(err.Error())
	}
	if diag != nil {
		diag.Regions = *regions
		diag.Gray = stages.Gray
		diag.Blurred = stages.Blurred
		diag.Thresholded = stages.Thresholded
	}

	// Both crops come from the left-half grayscale; the located boxes
	// are relative to the full screenshot but the left half starts at
	// the same origin.
	statsCrop, err := imaging.CropBox(stages.Gray, regions.Stats.Rect())
	if err != nil {
		return result.finish(err.Error())
	}
	infoCrop, err := imaging.CropBox(stages.Gray, regions.Info.Rect())
	if err != nil {
		return result.finish(err.Error())
	}

	statsCond, err := imaging.Condition(statsCrop)
	if err != nil {
		return result.finish(err.Error())
	}
	infoCond, err := imaging.Condition(infoCrop)
	if err != nil {
		return result.finish(err.Error())
	}
	statsInput := imaging.AmplifyTopRow(statsCond.Mask)
	infoInput := infoCond.Mask

	if diag != nil {
		diag.StatsGray = statsCond.Gray
		diag.StatsInverted = statsCond.Inverted
		diag.StatsConditioned = statsInput
		diag.InfoGray = infoCond.Gray
		diag.InfoInverted = infoCond.Inverted
		diag.InfoConditioned = infoInput
	}

	statsLines, err := engine.Recognize(ctx, statsInput)
	if err != nil {
		return result.finish(fmt.Sprintf("%v: %v", ErrRecognitionEngine, err))
	}
	infoLines, err := engine.Recognize(ctx, infoInput)
	if err != nil {
		return result.finish(fmt.Sprintf("%v: %v", ErrRecognitionEngine, err))
	}
	if diag != nil {
		diag.StatsText = statsLines
		diag.InfoText = infoLines
	}

	// The card name is the first line of the info band, whatever else
	// the recognizer found below it.
	if len(infoLines) == 0 {
		result.fail("no text recognized in card info region")
	} else {
		result.Name = CoerceCardName(strings.TrimSpace(infoLines[0]))
	}

	classifyStatsText(statsLines, result)

	result.Success = len(result.Errors) == 0
	return result
}

// fail records one fatal error message on the result.
func (r *ExtractionResult) fail(message string) {
	r.Errors = append(r.Errors, message)
	r.Success = false
}

// finish records a fatal message and returns the partial result.
func (r *ExtractionResult) finish(message string) *ExtractionResult {
	r.fail(message)
	return r
}
