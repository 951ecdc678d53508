package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wotvtools/cardscan/internal/imaging"
	"github.com/wotvtools/cardscan/internal/library"
	"github.com/wotvtools/cardscan/internal/ocr"
)

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

func newTestServer(t *testing.T) (*Server, *fakeEngine) {
	t.Helper()
	store, err := library.Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := &fakeEngine{responses: cannedResponses()}
	s, err := New(Config{
		Engine:      func(language string) (ocr.Engine, error) { return engine, nil },
		Screenshots: imaging.NewScreenshotCache(nil, 0),
		Library:     store,
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, engine
}

// callTool runs one tools/call round trip and decodes the JSON payload
// out of the MCP content wrapper.
func callTool(t *testing.T, s *Server, name string, args string) map[string]interface{} {
	t.Helper()
	resp := callToolRaw(t, s, name, args)
	if resp.Error != nil {
		t.Fatalf("tool %s failed: %+v", name, resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content wrapper: %+v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text missing")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("tool %s returned invalid JSON: %v", name, err)
	}
	return payload
}

func callToolRaw(t *testing.T, s *Server, name string, args string) *MCPResponse {
	t.Helper()
	params := fmt.Sprintf(`{"name":%q,"arguments":%s}`, name, args)
	return s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(params),
	})
}

func TestCardExtract(t *testing.T) {
	s, _ := newTestServer(t)
	source := writeScreenshot(t)

	payload := callTool(t, s, "card_extract", fmt.Sprintf(`{"source":%q}`, source))

	if payload["success"] != true {
		t.Fatalf("success = %v, errors: %v", payload["success"], payload["errors"])
	}
	if payload["name"] != "Sterne Leonis" {
		t.Errorf("name = %v", payload["name"])
	}
	if payload["cost"] != float64(50) {
		t.Errorf("cost = %v, want 50", payload["cost"])
	}
	if _, present := payload["diagnostics"]; present {
		t.Error("diagnostics present without being requested")
	}
}

func TestCardExtract_Diagnostics(t *testing.T) {
	s, _ := newTestServer(t)
	source := writeScreenshot(t)

	payload := callTool(t, s, "card_extract", fmt.Sprintf(`{"source":%q,"diagnostics":true}`, source))

	diag, ok := payload["diagnostics"].(map[string]interface{})
	if !ok {
		t.Fatal("diagnostics missing from response")
	}
	montage, ok := diag["montage_png"].(string)
	if !ok || montage == "" {
		t.Fatal("montage_png missing")
	}
	raw, err := base64.StdEncoding.DecodeString(montage)
	if err != nil {
		t.Fatalf("montage is not valid base64: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(raw))); err != nil {
		t.Fatalf("montage is not a valid PNG: %v", err)
	}
	if sharpness, ok := diag["sharpness"].(float64); !ok || sharpness <= 0 {
		t.Errorf("sharpness = %v, want > 0", diag["sharpness"])
	}
	if _, ok := diag["stats_text"].([]interface{}); !ok {
		t.Error("stats_text missing")
	}
}

func TestCardExtract_MissingSource(t *testing.T) {
	s, _ := newTestServer(t)

	resp := callToolRaw(t, s, "card_extract", `{}`)
	if resp.Error == nil {
		t.Fatal("expected error for missing source")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code = %d, want -32000", resp.Error.Code)
	}
}

func TestCardStore_ThenGet(t *testing.T) {
	s, _ := newTestServer(t)
	source := writeScreenshot(t)

	payload := callTool(t, s, "card_store", fmt.Sprintf(`{"source":%q}`, source))
	stored, ok := payload["stored"].(map[string]interface{})
	if !ok {
		t.Fatalf("stored card missing from response: %v", payload)
	}
	if stored["id"] == "" {
		t.Error("stored card has no id")
	}

	got := callTool(t, s, "card_get", `{"name":"sterne"}`)
	if got["name"] != "Sterne Leonis" {
		t.Errorf("card_get name = %v", got["name"])
	}
	if got["hp"] != float64(211) {
		t.Errorf("card_get hp = %v, want 211", got["hp"])
	}
}

func TestCardGet_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	resp := callToolRaw(t, s, "card_get", `{"name":"Nonexistent"}`)
	if resp.Error == nil {
		t.Fatal("expected error for unknown card")
	}
	data, _ := resp.Error.Data.(string)
	if !strings.Contains(data, "not found") {
		t.Errorf("error data = %q, want not-found message", data)
	}
}

func TestCardSearchAbility(t *testing.T) {
	s, _ := newTestServer(t)
	callTool(t, s, "card_store", fmt.Sprintf(`{"source":%q}`, writeScreenshot(t)))

	payload := callTool(t, s, "card_search_ability", `{"query":"jp up"}`)
	if payload["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", payload["count"])
	}

	payload = callTool(t, s, "card_search_ability", `{"query":"thunder"}`)
	if payload["count"] != float64(0) {
		t.Errorf("count = %v, want 0", payload["count"])
	}
}

func TestCardList(t *testing.T) {
	s, _ := newTestServer(t)

	payload := callTool(t, s, "card_list", `{}`)
	if payload["count"] != float64(0) {
		t.Fatalf("count = %v, want 0 for empty library", payload["count"])
	}

	callTool(t, s, "card_store", fmt.Sprintf(`{"source":%q}`, writeScreenshot(t)))

	payload = callTool(t, s, "card_list", `{}`)
	if payload["count"] != float64(1) {
		t.Errorf("count = %v, want 1", payload["count"])
	}
}

func TestExecuteTool_Unknown(t *testing.T) {
	s, _ := newTestServer(t)

	resp := callToolRaw(t, s, "card_transmute", `{}`)
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code = %d, want -32000", resp.Error.Code)
	}
}

func TestLibraryTools_RequireLibrary(t *testing.T) {
	s := newBareServer(t)

	for _, tool := range []string{"card_get", "card_search_ability", "card_list"} {
		resp := callToolRaw(t, s, tool, `{"name":"x","query":"x"}`)
		if resp.Error == nil {
			t.Errorf("tool %s should fail without a library", tool)
		}
	}
}
