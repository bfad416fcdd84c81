package docpipe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "docpipe-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	pipe := New(Config{})
	srv := mcp.NewServer(testMCPImpl, nil)
	pipe.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_Detect(t *testing.T) {
	session := mcpSession(t)

	tests := []struct {
		path   string
		format string
	}{
		{"report.docx", "docx"},
		{"readme.md", "md"},
		{"data.txt", "txt"},
		{"page.html", "html"},
		{"manual.pdf", "pdf"},
		{"document.odt", "odt"},
	}
	for _, tt := range tests {
		text := mcpCallTool(t, session, "docpipe_detect", map[string]any{"path": tt.path})
		var resp struct {
			Format string `json:"format"`
		}
		if err := json.Unmarshal([]byte(text), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Format != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, resp.Format, tt.format)
		}
	}
}

func TestMCP_DetectUnsupported(t *testing.T) {
	// WHAT: An unsupported extension comes back as a tool error.
	// WHY: Agents read isError results; a protocol error would drop the session.
	session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "docpipe_detect",
		Arguments: map[string]any{"path": "archive.rar"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unsupported extension")
	}
}

func TestMCP_Extract(t *testing.T) {
	session := mcpSession(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("First paragraph.\n\nSecond paragraph."), 0o644); err != nil {
		t.Fatal(err)
	}

	text := mcpCallTool(t, session, "docpipe_extract", map[string]any{"path": path})

	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Format != FormatTXT {
		t.Errorf("format = %q, want %q", doc.Format, FormatTXT)
	}
	if len(doc.Paragraphs) != 2 {
		t.Errorf("paragraphs = %d, want 2: %q", len(doc.Paragraphs), doc.Paragraphs)
	}
	if doc.Name != "notes.txt" {
		t.Errorf("name = %q, want notes.txt", doc.Name)
	}
}

func TestMCP_ExtractMissingFile(t *testing.T) {
	session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "docpipe_extract",
		Arguments: map[string]any{"path": filepath.Join(t.TempDir(), "absent.txt")},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing file")
	}
}
