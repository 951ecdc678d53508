package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Extraction
		{
			Name:        "card_extract",
			Description: "Extract a vision card's name, stats, party ability, and bestowed effects from a game screenshot. Accepts a local file path or an http(s) URL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Screenshot file path or http(s) URL",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Recognition language hint (default 'eng')",
						"default":     "eng",
					},
					"diagnostics": map[string]interface{}{
						"type":        "boolean",
						"description": "Include intermediate pipeline images as a base64 PNG montage, plus raw recognition text and a sharpness score",
						"default":     false,
					},
				},
				"required": []string{"source"},
			},
		},
		{
			Name:        "card_store",
			Description: "Extract a vision card from a screenshot and store it in the card library. Replaces an existing card with the same name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Screenshot file path or http(s) URL",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Recognition language hint (default 'eng')",
						"default":     "eng",
					},
				},
				"required": []string{"source"},
			},
		},

		// Library
		{
			Name:        "card_get",
			Description: "Look a stored card up by name. Matches exactly first, then by unique prefix, then by unique substring.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Card name or a unique fragment of it",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "card_search_ability",
			Description: "Find stored cards whose party ability or bestowed effects contain the query (case-insensitive).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Ability text to search for, e.g. 'JP Up'",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "card_list",
			Description: "List every card in the library, ordered by name.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
