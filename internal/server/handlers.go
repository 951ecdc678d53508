package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"

	"github.com/wotvtools/cardscan/internal/detection"
	"github.com/wotvtools/cardscan/internal/library"
	"github.com/wotvtools/cardscan/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "card_extract", "card_get").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Extraction
	case "card_extract":
		return s.handleCardExtract(args)
	case "card_store":
		return s.handleCardStore(args)

	// Library
	case "card_get":
		return s.handleCardGet(args)
	case "card_search_ability":
		return s.handleCardSearchAbility(args)
	case "card_list":
		return s.handleCardList(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Extraction Handlers ===

type cardExtractArgs struct {
	Source      string `json:"source"`
	Language    string `json:"language"`
	Diagnostics bool   `json:"diagnostics"`
}

// extractResponse is the card_extract tool result. Diagnostics is
// present only when the caller asked for it.
type extractResponse struct {
	*vision.ExtractionResult
	Diagnostics *diagnosticsPayload `json:"diagnostics,omitempty"`
}

// diagnosticsPayload is the wire form of the pipeline's intermediate
// artifacts: the nine-image strip flattened into one base64 PNG.
type diagnosticsPayload struct {
	Regions    detection.LocateResult `json:"regions"`
	Sharpness  float64                `json:"sharpness"`
	StatsText  []string               `json:"stats_text"`
	InfoText   []string               `json:"info_text"`
	MontagePNG string                 `json:"montage_png"`
}

func (s *Server) handleCardExtract(args json.RawMessage) (interface{}, error) {
	var a cardExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	result, err := s.extract(a.Source, a.Language, a.Diagnostics)
	if err != nil {
		return nil, err
	}

	resp := &extractResponse{ExtractionResult: result}
	if a.Diagnostics && result.Diagnostics != nil {
		payload, err := encodeDiagnostics(result.Diagnostics)
		if err != nil {
			return nil, err
		}
		resp.Diagnostics = payload
	}
	return resp, nil
}

type cardStoreArgs struct {
	Source   string `json:"source"`
	Language string `json:"language"`
}

// storeResponse is the card_store tool result: the extraction plus the
// stored card's identity when extraction succeeded.
type storeResponse struct {
	*vision.ExtractionResult
	Stored *library.StoredCard `json:"stored,omitempty"`
}

func (s *Server) handleCardStore(args json.RawMessage) (interface{}, error) {
	var a cardStoreArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.cfg.Library == nil {
		return nil, fmt.Errorf("no card library configured")
	}

	result, err := s.extract(a.Source, a.Language, false)
	if err != nil {
		return nil, err
	}

	resp := &storeResponse{ExtractionResult: result}
	if result.Success {
		stored, err := s.cfg.Library.Upsert(context.Background(), result.Card)
		if err != nil {
			return nil, fmt.Errorf("store card: %w", err)
		}
		resp.Stored = stored
	}
	return resp, nil
}

// extract runs the pipeline against one screenshot source.
func (s *Server) extract(source, language string, diagnostics bool) (*vision.ExtractionResult, error) {
	if source == "" {
		return nil, fmt.Errorf("screenshot source is required")
	}
	if language == "" {
		language = s.cfg.DefaultLanguage
	}

	img, err := s.cfg.Screenshots.Load(context.Background(), source)
	if err != nil {
		return nil, err
	}

	engine, err := s.cfg.Engine(language)
	if err != nil {
		return nil, fmt.Errorf("create recognition engine: %w", err)
	}
	defer engine.Close()

	result := vision.Extract(context.Background(), engine, img, vision.Options{Diagnostics: diagnostics})
	s.cfg.Logger.Debug().
		Str("source", source).
		Bool("success", result.Success).
		Str("card", result.Name).
		Msg("extraction finished")
	return result, nil
}

// encodeDiagnostics flattens the diagnostic images into one base64 PNG
// montage alongside the raw recognition text.
func encodeDiagnostics(diag *vision.Diagnostics) (*diagnosticsPayload, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, diag.Montage()); err != nil {
		return nil, fmt.Errorf("encode diagnostic montage: %w", err)
	}
	return &diagnosticsPayload{
		Regions:    diag.Regions,
		Sharpness:  diag.Sharpness,
		StatsText:  diag.StatsText,
		InfoText:   diag.InfoText,
		MontagePNG: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// === Library Handlers ===

type cardGetArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleCardGet(args json.RawMessage) (interface{}, error) {
	var a cardGetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.cfg.Library == nil {
		return nil, fmt.Errorf("no card library configured")
	}
	return s.cfg.Library.FindByName(context.Background(), a.Name)
}

type cardSearchAbilityArgs struct {
	Query string `json:"query"`
}

func (s *Server) handleCardSearchAbility(args json.RawMessage) (interface{}, error) {
	var a cardSearchAbilityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.cfg.Library == nil {
		return nil, fmt.Errorf("no card library configured")
	}
	matches, err := s.cfg.Library.SearchByAbility(context.Background(), a.Query)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	}, nil
}

func (s *Server) handleCardList(args json.RawMessage) (interface{}, error) {
	if s.cfg.Library == nil {
		return nil, fmt.Errorf("no card library configured")
	}
	cards, err := s.cfg.Library.List(context.Background())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"count": len(cards),
		"cards": cards,
	}, nil
}
