package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	modelproviders "github.com/astepien/roam/kernel/model/providers"
)

func TestAppConfig_SeedsDefaultsOnFirstRun(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := loadOrInitAppConfig("demo-app")
	if err != nil {
		t.Fatal(err)
	}
	if store.DefaultModel() != "openai" {
		t.Fatalf("unexpected default model: %q", store.DefaultModel())
	}

	cfgPath, err := configPath("demo-app")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	configs := store.ProviderConfigs()
	if len(configs) != 2 {
		t.Fatalf("expected 2 seeded providers, got %d", len(configs))
	}
	byAlias := map[string]modelproviders.Config{}
	for _, cfg := range configs {
		byAlias[cfg.Alias] = cfg
	}
	openai, ok := byAlias["openai"]
	if !ok {
		t.Fatalf("missing openai provider: %v", configs)
	}
	if openai.API != modelproviders.APIOpenAI || openai.Auth.TokenEnv != "OPENAI_API_KEY" {
		t.Fatalf("unexpected openai config %+v", openai)
	}
	ollama, ok := byAlias["ollama"]
	if !ok {
		t.Fatalf("missing ollama provider: %v", configs)
	}
	if ollama.API != modelproviders.APIOpenAICompatible || ollama.BaseURL != "http://localhost:11434/v1" {
		t.Fatalf("unexpected ollama config %+v", ollama)
	}
}

func TestAppConfig_LoadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfgDir := filepath.Join(home, ".demo-app")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{
  "version": 1,
  "default_model": "Claude",
  "providers": [
    {
      "alias": "claude",
      "provider": "anthropic",
      "api": "anthropic",
      "model": "claude-sonnet-4",
      "base_url": "https://api.anthropic.com/v1",
      "timeout_seconds": 90,
      "max_output_tokens": 2048,
      "auth": {"token_env": "ANTHROPIC_API_KEY"}
    }
  ]
}`
	if err := os.WriteFile(filepath.Join(cfgDir, "demo-app_config.json"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := loadOrInitAppConfig("demo-app")
	if err != nil {
		t.Fatal(err)
	}
	if store.DefaultModel() != "claude" {
		t.Fatalf("unexpected default model: %q", store.DefaultModel())
	}
	configs := store.ProviderConfigs()
	if len(configs) != 1 {
		t.Fatalf("expected 1 provider, got %d", len(configs))
	}
	cfg := configs[0]
	if cfg.Alias != "claude" || cfg.API != modelproviders.APIAnthropic {
		t.Fatalf("unexpected provider config %+v", cfg)
	}
	if cfg.Timeout != 90*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.MaxOutputTok != 2048 {
		t.Fatalf("unexpected max output tokens %d", cfg.MaxOutputTok)
	}
	if cfg.Auth.TokenEnv != "ANTHROPIC_API_KEY" {
		t.Fatalf("unexpected auth %+v", cfg.Auth)
	}
}

func TestAppConfig_RejectsMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfgDir := filepath.Join(home, ".demo-app")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "demo-app_config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadOrInitAppConfig("demo-app"); err == nil {
		t.Fatalf("expected parse error for malformed config")
	}
}
