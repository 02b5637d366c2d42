package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMCPToolManager_NotFoundPath(t *testing.T) {
	manager, err := loadMCPToolManager(filepath.Join(t.TempDir(), "mcp_servers.json"))
	if err != nil {
		t.Fatalf("load manager: %v", err)
	}
	if manager != nil {
		t.Fatalf("expected nil manager")
	}
}

func TestLoadMCPToolManager_EmptyPathMeansNoRemoteTools(t *testing.T) {
	manager, err := loadMCPToolManager("  ")
	if err != nil {
		t.Fatalf("load manager: %v", err)
	}
	if manager != nil {
		t.Fatalf("expected nil manager for blank path")
	}
}

func TestLoadMCPToolManager_ParseServers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mcp_servers.json")
	content := `{
  "cache_ttl_seconds": 60,
  "mcpServers": {
    "maps": {
      "transport": "streamable",
      "url": "http://127.0.0.1:8787/mcp",
      "include_tools": ["search_places"]
    },
    "local": {
      "command": "npx",
      "args": ["-y", "some-mcp-server"]
    }
  }
}`
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	manager, err := loadMCPToolManager(cfgPath)
	if err != nil {
		t.Fatalf("load manager: %v", err)
	}
	if manager == nil {
		t.Fatalf("expected non-nil manager")
	}
	_ = manager.Close()
}

func TestLoadMCPToolManager_EmptyServersMap(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mcp_servers.json")
	if err := os.WriteFile(cfgPath, []byte(`{"mcpServers": {}}`), 0o600); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	manager, err := loadMCPToolManager(cfgPath)
	if err != nil {
		t.Fatalf("load manager: %v", err)
	}
	if manager != nil {
		t.Fatalf("expected nil manager for empty mcpServers")
	}
}

func TestLoadMCPToolManager_BadJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mcp_servers.json")
	if err := os.WriteFile(cfgPath, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	if _, err := loadMCPToolManager(cfgPath); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolvePathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := resolvePath("~/mcp_servers.json")
	if err != nil {
		t.Fatalf("resolve path: %v", err)
	}
	if got != filepath.Join(home, "mcp_servers.json") {
		t.Fatalf("unexpected resolved path %q", got)
	}
}
