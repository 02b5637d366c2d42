package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	modelproviders "github.com/astepien/roam/kernel/model/providers"
)

const (
	configVersion = 1
	defaultAlias  = "openai"
)

type appConfig struct {
	Version      int              `json:"version"`
	DefaultModel string           `json:"default_model"`
	Providers    []providerRecord `json:"providers,omitempty"`
}

type providerRecord struct {
	Alias          string     `json:"alias"`
	Provider       string     `json:"provider"`
	API            string     `json:"api"`
	Model          string     `json:"model"`
	BaseURL        string     `json:"base_url,omitempty"`
	TimeoutSeconds int        `json:"timeout_seconds,omitempty"`
	MaxOutputTok   int        `json:"max_output_tokens,omitempty"`
	Auth           authRecord `json:"auth"`
}

type authRecord struct {
	TokenEnv string `json:"token_env,omitempty"`
	Token    string `json:"token,omitempty"`
}

type appConfigStore struct {
	path string
	data appConfig
}

// loadOrInitAppConfig reads ~/.{app}/{app}_config.json, seeding the
// default config on first run.
func loadOrInitAppConfig(appName string) (*appConfigStore, error) {
	path, err := configPath(appName)
	if err != nil {
		return nil, err
	}
	store := &appConfigStore{
		path: path,
		data: defaultAppConfig(),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := store.save(); err != nil {
			return nil, err
		}
		return store, nil
	}

	var loaded appConfig
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if loaded.Version == 0 {
		loaded.Version = configVersion
	}
	if strings.TrimSpace(loaded.DefaultModel) == "" {
		loaded.DefaultModel = defaultAlias
	}
	if len(loaded.Providers) == 0 {
		loaded.Providers = defaultAppConfig().Providers
	}
	store.data = loaded
	return store, nil
}

func defaultAppConfig() appConfig {
	return appConfig{
		Version:      configVersion,
		DefaultModel: defaultAlias,
		Providers: []providerRecord{
			{
				Alias:    "openai",
				Provider: "openai",
				API:      string(modelproviders.APIOpenAI),
				Model:    "gpt-5-mini",
				Auth:     authRecord{TokenEnv: "OPENAI_API_KEY"},
			},
			{
				Alias:    "ollama",
				Provider: "ollama",
				API:      string(modelproviders.APIOpenAICompatible),
				Model:    "llama3.2",
				BaseURL:  "http://localhost:11434/v1",
			},
		},
	}
}

func (s *appConfigStore) DefaultModel() string {
	if s == nil {
		return defaultAlias
	}
	value := strings.TrimSpace(s.data.DefaultModel)
	if value == "" {
		return defaultAlias
	}
	return strings.ToLower(value)
}

// ProviderConfigs converts stored provider records into factory configs.
func (s *appConfigStore) ProviderConfigs() []modelproviders.Config {
	if s == nil || len(s.data.Providers) == 0 {
		return nil
	}
	out := make([]modelproviders.Config, 0, len(s.data.Providers))
	for _, rec := range s.data.Providers {
		alias := strings.TrimSpace(strings.ToLower(rec.Alias))
		if alias == "" {
			continue
		}
		cfg := modelproviders.Config{
			Alias:        alias,
			Provider:     strings.TrimSpace(rec.Provider),
			API:          modelproviders.APIType(strings.TrimSpace(strings.ToLower(rec.API))),
			Model:        strings.TrimSpace(rec.Model),
			BaseURL:      strings.TrimSpace(rec.BaseURL),
			MaxOutputTok: rec.MaxOutputTok,
			Auth: modelproviders.AuthConfig{
				TokenEnv: strings.TrimSpace(rec.Auth.TokenEnv),
				Token:    strings.TrimSpace(rec.Auth.Token),
			},
		}
		if rec.TimeoutSeconds > 0 {
			cfg.Timeout = time.Duration(rec.TimeoutSeconds) * time.Second
		}
		out = append(out, cfg)
	}
	return out
}

func (s *appConfigStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("config: write %q: %w", s.path, err)
	}
	return nil
}

func configPath(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, "."+appName, appName+"_config.json"), nil
}

func dataPath(appName, file string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, "."+appName, file), nil
}
