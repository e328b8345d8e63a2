package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/tagsuggest/suggest"
)

// Tool names exposed by the server.
const (
	ToolSuggestTags = "suggest_tags"
	ToolReloadIndex = "reload_index"
	ToolIndexStats  = "index_stats"
)

// ServerInfo describes this MCP server for the initialize response.
type ServerInfo struct {
	Name    string
	Version string
}

// Config configures a Server.
type Config struct {
	ServerInfo ServerInfo
}

// Server exposes a suggestion engine as an MCP tool server. The toolset
// is fixed: suggest_tags, reload_index, and index_stats.
type Server struct {
	engine *suggest.Engine
	info   ServerInfo
}

// New creates a Server around an engine.
func New(engine *suggest.Engine, cfg Config) *Server {
	info := cfg.ServerInfo
	if info.Name == "" {
		info.Name = "tagsuggest"
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return &Server{engine: engine, info: info}
}

// Tools returns the MCP tool definitions the server exposes.
func (s *Server) Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolSuggestTags,
			Description: "Suggest taxonomy tags for a piece of text",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text":      map[string]any{"type": "string", "description": "Text to suggest tags for"},
					"limit":     map[string]any{"type": "integer", "description": "Page size (default 5)"},
					"min_score": map[string]any{"type": "number", "description": "Minimum score threshold (default 0.2)"},
					"rerank":    map[string]any{"type": "boolean", "description": "Override the server rerank default"},
					"cursor":    map[string]any{"type": "string", "description": "Continuation token from a previous page"},
					"offset":    map[string]any{"type": "integer", "description": "Window start when no cursor is given"},
					"exclude":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Slugs to omit"},
					"widen":     map[string]any{"type": "boolean", "description": "Relax the threshold to avoid empty results"},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        ToolReloadIndex,
			Description: "Rebuild the tag index from the catalog source",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        ToolIndexStats,
			Description: "Report the published tag index",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

// suggestParams mirrors the suggest_tags input schema.
type suggestParams struct {
	Text     string   `json:"text"`
	Limit    int      `json:"limit"`
	MinScore *float64 `json:"min_score"`
	Rerank   *bool    `json:"rerank"`
	Cursor   string   `json:"cursor"`
	Offset   int      `json:"offset"`
	Exclude  []string `json:"exclude"`
	Widen    bool     `json:"widen"`
}

// Execute runs a tool by name with the given arguments.
func (s *Server) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolSuggestTags:
		var params suggestParams
		if err := decodeArgs(args, &params); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if params.Text == "" {
			return nil, fmt.Errorf("%w: text is required", ErrInvalidRequest)
		}
		return s.engine.Suggest(ctx, suggest.Request{
			Text:     params.Text,
			Limit:    params.Limit,
			MinScore: params.MinScore,
			Rerank:   params.Rerank,
			Cursor:   params.Cursor,
			Offset:   params.Offset,
			Exclude:  params.Exclude,
			Widen:    params.Widen,
		})

	case ToolReloadIndex:
		return s.engine.Reload(ctx)

	case ToolIndexStats:
		return s.engine.Stats()

	default:
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
}

// decodeArgs maps loosely typed tool arguments onto a params struct.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
