package mcptoolset

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestExposedToolNameNamespacing(t *testing.T) {
	if got := exposedToolName("maps", "search-places"); got != "maps__search_places" {
		t.Fatalf("unexpected tool name %q", got)
	}
	if got := exposedToolName("", "search"); got != "mcp__search" {
		t.Fatalf("unexpected tool name %q", got)
	}
	if got := exposedToolName("Google Maps", "Find.Places"); got != "google_maps__find_places" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}

func TestExposedToolNameLength(t *testing.T) {
	name := exposedToolName("very-long-server-name-0123456789-abcdef", "tool-name-0123456789-abcdef-0123456789")
	if len(name) > 64 {
		t.Fatalf("tool name too long: %d (%q)", len(name), name)
	}
	if !strings.Contains(name, "__") {
		t.Fatalf("expected namespaced tool name, got %q", name)
	}
}

func TestNewManagerValidatesServers(t *testing.T) {
	if _, err := NewManager(Config{Servers: []ServerConfig{{}}}); err == nil {
		t.Fatalf("expected error for missing server name")
	}
	if _, err := NewManager(Config{Servers: []ServerConfig{{
		Name:      "demo",
		Transport: TransportStdio,
	}}}); err == nil {
		t.Fatalf("expected error for stdio server without command")
	}
	if _, err := NewManager(Config{Servers: []ServerConfig{{
		Name:      "demo",
		Transport: TransportSSE,
	}}}); err == nil {
		t.Fatalf("expected error for sse server without url")
	}
	manager, err := NewManager(Config{Servers: []ServerConfig{{
		Name: "demo",
		URL:  "http://127.0.0.1:8787/sse",
	}}})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer manager.Close()
}

func TestNormalizeSchemaFallback(t *testing.T) {
	got := normalizeSchema(struct {
		Type string `json:"type"`
	}{
		Type: "object",
	})
	if got["type"] != "object" {
		t.Fatalf("unexpected schema: %#v", got)
	}
	got = normalizeSchema(nil)
	if got["type"] != "object" {
		t.Fatalf("expected object fallback, got %#v", got)
	}
}

func TestMCPToolRunSuccess(t *testing.T) {
	session, cleanup := setupClientSession(t, "search_places", func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, map[string]any, error) {
		_ = ctx
		_ = req
		return nil, map[string]any{
			"places": args["query"],
		}, nil
	})
	defer cleanup()

	tool := &mcpTool{
		name:         "maps__search_places",
		originalName: "search_places",
		serverName:   "maps",
		description:  "[MCP:maps/search_places]",
		parameters:   map[string]any{"type": "object"},
		getSession: func(context.Context) (*mcp.ClientSession, error) {
			return session, nil
		},
	}
	out, err := tool.Run(context.Background(), map[string]any{"query": "pierogi"})
	if err != nil {
		t.Fatalf("run tool: %v", err)
	}
	if out["places"] != "pierogi" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestMCPToolRunError(t *testing.T) {
	session, cleanup := setupClientSession(t, "boom", func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, map[string]any, error) {
		_ = ctx
		_ = req
		_ = args
		return nil, nil, fmt.Errorf("boom")
	})
	defer cleanup()

	tool := &mcpTool{
		name:         "maps__boom",
		originalName: "boom",
		serverName:   "maps",
		description:  "[MCP:maps/boom]",
		parameters:   map[string]any{"type": "object"},
		getSession: func(context.Context) (*mcp.ClientSession, error) {
			return session, nil
		},
	}
	_, err := tool.Run(context.Background(), map[string]any{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "boom") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func setupClientSession(
	t *testing.T,
	toolName string,
	handler func(context.Context, *mcp.CallToolRequest, map[string]any) (*mcp.CallToolResult, map[string]any, error),
) (*mcp.ClientSession, func()) {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-server",
		Version: "v0.0.1",
	}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name: toolName,
		InputSchema: map[string]any{
			"type": "object",
		},
	}, handler)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(context.Background(), serverTransport, nil)
	if err != nil {
		t.Fatalf("connect server: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "v0.0.1",
	}, nil)
	clientSession, err := client.Connect(context.Background(), clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return clientSession, func() {
		_ = clientSession.Close()
		_ = serverSession.Wait()
	}
}
