// Package provider builds an llm.Completer for a configured provider.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/shelf/pkg/credentials"
	"github.com/papercomputeco/shelf/pkg/llm"
	"github.com/papercomputeco/shelf/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/shelf/pkg/llm/provider/gemini"
	"github.com/papercomputeco/shelf/pkg/llm/provider/ollama"
	"github.com/papercomputeco/shelf/pkg/llm/provider/openai"
)

// Config holds configuration for creating a completer.
type Config struct {
	Provider string               // "openai", "anthropic", "ollama" or "gemini"
	Model    string               // empty selects the provider default
	APIKey   string               // explicit API key (highest priority)
	BaseURL  string               // override base URL
	CredMgr  *credentials.Manager // credentials from shelf auth
	Logger   *slog.Logger
}

// ResolveAPIKey returns the API key for the config's provider.
// Resolution order:
//  1. Explicit APIKey in config
//  2. credentials.Manager (from shelf auth)
//  3. Environment variable (OPENAI_API_KEY / ANTHROPIC_API_KEY / GEMINI_API_KEY)
func ResolveAPIKey(cfg Config) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	return cfg.CredMgr.ResolveKey(strings.ToLower(cfg.Provider))
}

// New creates a Completer for the configured provider. An empty provider
// selects OpenAI.
func New(ctx context.Context, cfg Config) (llm.Completer, error) {
	name := strings.ToLower(cfg.Provider)
	if name == "" {
		name = OpenAI
		cfg.Provider = OpenAI
	}

	switch name {
	case OpenAI:
		return openai.New(openai.Config{
			APIKey:  ResolveAPIKey(cfg),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}, cfg.Logger)

	case Anthropic:
		return anthropic.New(anthropic.Config{
			APIKey:  ResolveAPIKey(cfg),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}, cfg.Logger)

	case Ollama:
		return ollama.New(ollama.Config{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}, cfg.Logger), nil

	case Gemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  ResolveAPIKey(cfg),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}, cfg.Logger)

	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", cfg.Provider, SupportedProviders())
	}
}
