package queue

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/wotvtools/cardscan/internal/imaging"
	"github.com/wotvtools/cardscan/internal/library"
	"github.com/wotvtools/cardscan/internal/ocr"
)

// fakeEngine replays canned line dumps in call order, stats region
// first, then info region.
type fakeEngine struct {
	responses [][]string
	err       error
	calls     int
}

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.responses) {
		return nil, nil
	}
	lines := f.responses[f.calls]
	f.calls++
	return lines, nil
}

func (f *fakeEngine) Close() error { return nil }

func cannedResponses() [][]string {
	return [][]string{
		{
			"Cost 50",
			"HP 211 DEF -",
			"Party Ability Cau",
			"",
			"ATK Up 30%",
			"",
			"Bestowed Effects",
			"",
			"Acquired JP Up 50%",
		},
		{"Sterne Leonis"},
	}
}

// writeScreenshot writes a screenshot-shaped PNG: dark background with
// a bright stats panel in the left half.
func writeScreenshot(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 20, B: 20, A: 255})
		}
	}
	for y := 80; y < 180; y++ {
		for x := 20; x < 140; x++ {
			img.Set(x, y, color.White)
		}
	}

	path := filepath.Join(t.TempDir(), "card.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create screenshot: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode screenshot: %v", err)
	}
	return path
}

func newTestWorker(t *testing.T, engine ocr.Engine) (*Worker, *library.Store) {
	t.Helper()
	store, err := library.Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	w, err := NewWorker(WorkerConfig{
		Engine:      func(language string) (ocr.Engine, error) { return engine, nil },
		Screenshots: imaging.NewScreenshotCache(nil, 0),
		Library:     store,
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewWorker failed: %v", err)
	}
	return w, store
}

func extractTask(t *testing.T, payload ExtractionPayload) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return asynq.NewTask(TypeCardExtract, body)
}

func TestHandleExtract_StoresCard(t *testing.T) {
	w, store := newTestWorker(t, &fakeEngine{responses: cannedResponses()})
	task := extractTask(t, ExtractionPayload{
		SubmissionID: "sub-1",
		Source:       writeScreenshot(t),
		Store:        true,
	})

	if err := w.handleExtract(context.Background(), task); err != nil {
		t.Fatalf("handleExtract failed: %v", err)
	}

	card, err := store.FindByName(context.Background(), "Sterne Leonis")
	if err != nil {
		t.Fatalf("card not stored: %v", err)
	}
	if card.Cost == nil || *card.Cost != 50 {
		t.Errorf("stored Cost = %v, want 50", card.Cost)
	}
}

func TestHandleExtract_NoStoreLeavesLibraryEmpty(t *testing.T) {
	w, store := newTestWorker(t, &fakeEngine{responses: cannedResponses()})
	task := extractTask(t, ExtractionPayload{Source: writeScreenshot(t)})

	if err := w.handleExtract(context.Background(), task); err != nil {
		t.Fatalf("handleExtract failed: %v", err)
	}

	cards, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("library holds %d cards without storage requested", len(cards))
	}
}

func TestHandleExtract_ExtractionFailureConsumesTask(t *testing.T) {
	// A screenshot the pipeline cannot parse is not retryable; the
	// handler logs and consumes it.
	w, store := newTestWorker(t, &fakeEngine{err: errors.New("tesseract exploded")})
	task := extractTask(t, ExtractionPayload{Source: writeScreenshot(t), Store: true})

	if err := w.handleExtract(context.Background(), task); err != nil {
		t.Fatalf("handleExtract returned %v, want nil for unparseable screenshot", err)
	}

	cards, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("failed extraction stored %d cards", len(cards))
	}
}

func TestHandleExtract_MissingScreenshotRetries(t *testing.T) {
	w, _ := newTestWorker(t, &fakeEngine{responses: cannedResponses()})
	task := extractTask(t, ExtractionPayload{Source: filepath.Join(t.TempDir(), "missing.png")})

	err := w.handleExtract(context.Background(), task)
	if err == nil {
		t.Fatal("expected error for missing screenshot")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Error("missing screenshot should stay retryable")
	}
}

func TestHandleExtract_BadPayloadSkipsRetry(t *testing.T) {
	w, _ := newTestWorker(t, &fakeEngine{responses: cannedResponses()})

	err := w.handleExtract(context.Background(), asynq.NewTask(TypeCardExtract, []byte("{broken")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("error = %v, want SkipRetry for undecodable payload", err)
	}

	err = w.handleExtract(context.Background(), extractTask(t, ExtractionPayload{Source: "  "}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("error = %v, want SkipRetry for empty source", err)
	}
}

func TestNewWorker_Validation(t *testing.T) {
	if _, err := NewWorker(WorkerConfig{Screenshots: imaging.NewScreenshotCache(nil, 0)}); err == nil {
		t.Error("expected error without engine factory")
	}
	engine := func(language string) (ocr.Engine, error) { return &fakeEngine{}, nil }
	if _, err := NewWorker(WorkerConfig{Engine: engine}); err == nil {
		t.Error("expected error without screenshot cache")
	}
}

func TestEnqueueExtraction_RequiresSource(t *testing.T) {
	c := NewClient("127.0.0.1:0")
	defer c.Close()
	if _, err := c.EnqueueExtraction(context.Background(), ExtractionPayload{}); err == nil {
		t.Fatal("expected error for empty source")
	}
}
