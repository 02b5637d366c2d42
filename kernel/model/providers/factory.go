package providers

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/astepien/roam/kernel/model"
)

// Factory builds model providers from alias configs.
type Factory struct {
	configs map[string]Config
}

// NewFactory returns an empty provider factory.
func NewFactory() *Factory {
	return &Factory{configs: map[string]Config{}}
}

// Register adds or overwrites one alias config.
func (f *Factory) Register(cfg Config) error {
	if f == nil {
		return fmt.Errorf("providers: factory is nil")
	}
	alias := strings.ToLower(strings.TrimSpace(cfg.Alias))
	if alias == "" {
		return fmt.Errorf("providers: alias is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return fmt.Errorf("providers: model is required for alias %q", alias)
	}
	switch cfg.API {
	case APIOpenAI, APIOpenAICompatible, APIAnthropic:
	default:
		return fmt.Errorf("providers: unsupported api type %q", cfg.API)
	}
	cfg.Alias = alias
	f.configs[alias] = cfg
	return nil
}

// NewByAlias creates a model provider by alias.
func (f *Factory) NewByAlias(alias string) (model.LLM, error) {
	if f == nil {
		return nil, fmt.Errorf("providers: factory is nil")
	}
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return nil, fmt.Errorf("providers: model alias is required")
	}
	cfg, ok := f.configs[alias]
	if !ok {
		return nil, fmt.Errorf("providers: unknown model alias %q", alias)
	}
	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.API {
	case APIOpenAI, APIOpenAICompatible:
		return newOpenAICompat(cfg, token), nil
	case APIAnthropic:
		return newAnthropic(cfg, token), nil
	default:
		return nil, fmt.Errorf("providers: unsupported api type %q", cfg.API)
	}
}

// ListModels returns registered aliases in sorted order.
func (f *Factory) ListModels() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.configs))
	for k := range f.configs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resolveToken(cfg Config) (string, error) {
	token := strings.TrimSpace(cfg.Auth.Token)
	if token == "" && strings.TrimSpace(cfg.Auth.TokenEnv) != "" {
		token = strings.TrimSpace(os.Getenv(cfg.Auth.TokenEnv))
		if token == "" {
			return "", fmt.Errorf("providers: env %s is empty for alias %q", cfg.Auth.TokenEnv, cfg.Alias)
		}
	}
	// Hosted APIs require a key. The compatible dialect also serves local
	// servers (Ollama) where auth is optional.
	if token == "" && cfg.API != APIOpenAICompatible {
		return "", fmt.Errorf("providers: auth token is required for alias %q", cfg.Alias)
	}
	return token, nil
}
