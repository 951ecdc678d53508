// Package server implements the MCP (Model Context Protocol) server
// exposing card extraction and the card library as tools.
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line. Five
// tools are exposed: card_extract and card_store run the extraction
// pipeline against a screenshot; card_get, card_search_ability, and
// card_list answer lookups against the stored library.
package server
