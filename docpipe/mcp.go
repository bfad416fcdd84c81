package docpipe

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/tamis/internal/mcpkit"
)

// RegisterMCP registers docpipe tools on an MCP server. The format listing
// lives at the service level; this surface is extraction only.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerExtractTool(srv)
	p.registerDetectTool(srv)
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

// --- extract ---

type extractReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_extract",
		Description: "Extract the paragraphs of a document file (docx, odt, pdf, md, txt, html)",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to extract"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*extractReq)
		return p.ExtractFile(ctx, r.Path)
	}

	decode := func(req *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &mcpkit.DecodeResult{Request: &r}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}

// --- detect ---

type detectReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_detect",
		Description: "Detect the format of a document file from its extension",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to detect"},
		}, []string{"path"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*detectReq)
		format, err := p.Detect(r.Path)
		if err != nil {
			return nil, err
		}
		return map[string]any{"format": string(format)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		var r detectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &mcpkit.DecodeResult{Request: &r}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}
