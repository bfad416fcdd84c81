// CLAUDE:SUMMARY MCP tool surface for the service — sift file/text, profile and format listing, plus the pipeline's extraction tools.
package tamis

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/tamis/docpipe"
	"github.com/hazyhaar/tamis/internal/mcpkit"
)

// RegisterMCP registers all tamis tools on an MCP server, including the
// extraction tools of the underlying pipeline.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerSiftFile(srv)
	svc.registerSiftText(srv)
	svc.registerProfiles(srv)
	svc.registerFormats(srv)
	svc.pipe.RegisterMCP(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (svc *Service) registerSiftFile(srv *mcp.Server) {
	type req struct {
		Path    string `json:"path"`
		Profile string `json:"profile"`
	}

	tool := &mcp.Tool{
		Name:        "tamis_sift_file",
		Description: "Extract paragraphs from a document on disk and keep the prompt-like ones",
		InputSchema: inputSchema(map[string]any{
			"path":    map[string]any{"type": "string", "description": "Path to a .docx, .odt, .pdf, .md, .txt or .html file"},
			"profile": map[string]any{"type": "string", "description": "Profile name (default profile when empty)"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.SiftFile(ctx, p.Path, p.Profile, Overrides{})
	}

	decode := func(r *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &mcpkit.DecodeResult{Request: &p}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerSiftText(srv *mcp.Server) {
	type req struct {
		Paragraphs     []string `json:"paragraphs"`
		Profile        string   `json:"profile"`
		MinLength      *int     `json:"min_length"`
		MinASCIIRatio  *float64 `json:"min_ascii_ratio"`
		MinKeywordHits *int     `json:"min_keyword_hits"`
		MaxPunctuation *int     `json:"max_punctuation"`
		RequireEnglish *bool    `json:"require_english"`
		Fallback       *bool    `json:"fallback"`
		Keywords       []string `json:"keywords"`
	}

	tool := &mcp.Tool{
		Name:        "tamis_sift_text",
		Description: "Keep the prompt-like paragraphs from raw text, with optional threshold overrides",
		InputSchema: inputSchema(map[string]any{
			"paragraphs":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Paragraphs to classify"},
			"profile":          map[string]any{"type": "string", "description": "Profile name (default profile when empty)"},
			"min_length":       map[string]any{"type": "integer", "description": "Minimum paragraph length in characters"},
			"min_ascii_ratio":  map[string]any{"type": "number", "description": "Minimum ASCII character ratio, 0 to 1"},
			"min_keyword_hits": map[string]any{"type": "integer", "description": "Distinct keywords required per paragraph"},
			"max_punctuation":  map[string]any{"type": "integer", "description": "Maximum sentence punctuation marks per paragraph"},
			"require_english":  map[string]any{"type": "boolean", "description": "Require English text"},
			"fallback":         map[string]any{"type": "boolean", "description": "Enable the relaxed second pass"},
			"keywords":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Replace the profile keyword list"},
		}, []string{"paragraphs"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		over := Overrides{
			MinLength:      p.MinLength,
			MinASCIIRatio:  p.MinASCIIRatio,
			MinKeywordHits: p.MinKeywordHits,
			MaxPunctuation: p.MaxPunctuation,
			RequireEnglish: p.RequireEnglish,
			Fallback:       p.Fallback,
			Keywords:       p.Keywords,
		}
		return svc.SiftParagraphs(ctx, p.Paragraphs, p.Profile, over)
	}

	decode := func(r *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &mcpkit.DecodeResult{Request: &p}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerProfiles(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tamis_profiles",
		Description: "List the configured sift profiles and their thresholds",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{
			"default":  svc.cfg.DefaultProfile,
			"profiles": svc.cfg.Profiles,
		}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		return &mcpkit.DecodeResult{Request: nil}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerFormats(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tamis_formats",
		Description: "List the document formats tamis can extract",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"formats": docpipe.SupportedFormats()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		return &mcpkit.DecodeResult{Request: nil}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}
